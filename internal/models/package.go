// SPDX-License-Identifier: Apache-2.0

package models

import (
	"fmt"
	"strings"
	"time"
)

// Identity uniquely identifies a package across all managers.
type Identity struct {
	Manager Manager `yaml:"manager" json:"manager" toml:"manager"`
	Name    string  `yaml:"name" json:"name" toml:"name"`
}

// NewIdentity builds an identity, trimming surrounding whitespace from the name.
func NewIdentity(m Manager, name string) Identity {
	return Identity{Manager: m, Name: strings.TrimSpace(name)}
}

// String renders the identity as "<manager>/<name>", e.g. "npm/typescript".
func (id Identity) String() string {
	return fmt.Sprintf("%s/%s", id.Manager, id.Name)
}

// Package is the record of one installed package as reported by its manager.
//
// Optional fields use their zero value for "absent". LatestVersion is empty until a version check succeeds.
type Package struct {
	ID               Identity   `yaml:"id" json:"id" toml:"id"`
	DisplayName      string     `yaml:"displayName" json:"displayName" toml:"displayName"`
	Description      string     `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
	InstalledVersion string     `yaml:"installedVersion,omitempty" json:"installedVersion,omitempty" toml:"installedVersion,omitempty"`
	LatestVersion    string     `yaml:"latestVersion,omitempty" json:"latestVersion,omitempty" toml:"latestVersion,omitempty"`
	InstallPath      string     `yaml:"installPath,omitempty" json:"installPath,omitempty" toml:"installPath,omitempty"`
	InstallationDate *time.Time `yaml:"installationDate,omitempty" json:"installationDate,omitempty" toml:"installationDate,omitempty"`
	Size             int64      `yaml:"size,omitempty" json:"size,omitempty" toml:"size,omitempty"`
	SizeText         string     `yaml:"sizeText,omitempty" json:"sizeText,omitempty" toml:"sizeText,omitempty"`

	CheckInProgress  bool `yaml:"-" json:"-" toml:"-"`
	UpdateInProgress bool `yaml:"-" json:"-" toml:"-"`
}

// NewPackage creates a package record whose display name defaults to its name.
func NewPackage(m Manager, name, installedVersion, installPath string) *Package {
	id := NewIdentity(m, name)
	return &Package{
		ID:               id,
		DisplayName:      id.Name,
		InstalledVersion: strings.TrimSpace(installedVersion),
		InstallPath:      installPath,
	}
}

func (p *Package) Name() string {
	return p.ID.Name
}

func (p *Package) Manager() Manager {
	return p.ID.Manager
}

// UpdateAvailable reports whether a latest version is known and differs from the installed one.
// The comparison is textual; no version ordering is implied.
func (p *Package) UpdateAvailable() bool {
	return p.LatestVersion != "" &&
		p.InstalledVersion != "" &&
		p.LatestVersion != p.InstalledVersion
}

// Clone returns a copy that shares no mutable state with p.
func (p *Package) Clone() *Package {
	c := *p
	if p.InstallationDate != nil {
		d := *p.InstallationDate
		c.InstallationDate = &d
	}
	return &c
}
