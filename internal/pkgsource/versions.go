// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// SortVersions orders version strings ascending. Strings that parse as semantic versions are compared
// semantically; anything else (e.g. Homebrew revisions like "8.2.0_1") uses a natural comparison in which
// runs of digits are compared by numeric value.
func SortVersions(versions []string) []string {
	sorted := append([]string(nil), versions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return CompareVersions(sorted[i], sorted[j]) < 0
	})
	return sorted
}

// LatestVersion returns the greatest version of the list, or an empty string when the list is empty.
func LatestVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	sorted := SortVersions(versions)
	return sorted[len(sorted)-1]
}

// CompareVersions returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		if c := va.Compare(vb); c != 0 {
			return c
		}
	}
	return naturalCompare(a, b)
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ca, cb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			na, restA := leadingDigits(a)
			nb, restB := leadingDigits(b)
			if c := compareNumeric(na, nb); c != 0 {
				return c
			}
			a, b = restA, restB
			continue
		}

		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func leadingDigits(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
