// SPDX-License-Identifier: Apache-2.0

package models

import (
	"strings"

	"github.com/joomcode/errorx"
)

// Manager names a package-management backend.
type Manager string

const (
	ManagerNpm      Manager = "npm"
	ManagerHomebrew Manager = "homebrew"
	ManagerPip      Manager = "pip"
	ManagerApt      Manager = "apt"
)

var displayNames = map[Manager]string{
	ManagerNpm:      "npm",
	ManagerHomebrew: "Homebrew",
	ManagerPip:      "pip",
	ManagerApt:      "APT",
}

// AllManagers returns every supported manager in presentation order.
func AllManagers() []Manager {
	return []Manager{ManagerNpm, ManagerHomebrew, ManagerPip, ManagerApt}
}

func (m Manager) String() string {
	return string(m)
}

// DisplayName returns the human readable label of the manager.
func (m Manager) DisplayName() string {
	if n, ok := displayNames[m]; ok {
		return n
	}
	return string(m)
}

// ParseManager resolves a manager name case-insensitively. "brew" is accepted for homebrew.
func ParseManager(s string) (Manager, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "brew" {
		return ManagerHomebrew, nil
	}

	for _, m := range AllManagers() {
		if string(m) == v {
			return m, nil
		}
	}

	return "", errorx.IllegalArgument.New("unsupported package manager %q, expected one of %s", s, AllManagers()).
		WithProperty(errorx.PropertyPayload(), s)
}

// ParseManagers resolves a list of manager names, dropping duplicates while keeping order.
func ParseManagers(names []string) ([]Manager, error) {
	seen := make(map[Manager]bool, len(names))
	result := make([]Manager, 0, len(names))
	for _, n := range names {
		m, err := ParseManager(n)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		result = append(result, m)
	}
	return result, nil
}
