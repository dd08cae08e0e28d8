// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ui models the page chrome controllers (side menu and dropdown).
// Each controller owns an explicit open/closed flag and derives its styles
// from it; the embedded browser script mirrors the same flag in a data-open
// attribute instead of reading rendered style values back.
package ui

// Element ids shared between the page templates and the browser script.
const (
	IDMenuToggleOutside = "menu-toggle-outside"
	IDMenuToggleInside  = "menu-toggle-inside"
	IDSideMenu          = "side-menu"
	IDOverlay           = "overlay"
	IDDropdownButton    = "dropdown-button"
	IDDropdownMenu      = "dropdown-menu"
	IDButtonCamera      = "button-camera"
	IDRealCamera        = "real-camera"
	IDButtonInput       = "button-input"
	IDRealInput         = "real-input"
	IDUploadContainer   = "upload-container"
	IDButtonProcess     = "button-process"
	IDTextResult        = "text-result"
	IDTextExplain       = "text-explain"
)

// Layout records which element ids a page renders. Controllers whose
// elements are not all present are simply not wired.
type Layout struct {
	ids map[string]bool
}

// NewLayout returns a layout containing the given element ids.
func NewLayout(ids ...string) Layout {
	l := Layout{ids: make(map[string]bool, len(ids))}
	for _, id := range ids {
		l.ids[id] = true
	}
	return l
}

// Has reports whether the page renders the element.
func (l Layout) Has(id string) bool {
	return l.ids[id]
}

func (l Layout) hasAll(ids ...string) bool {
	for _, id := range ids {
		if !l.ids[id] {
			return false
		}
	}
	return true
}

// HasMenu reports whether every element the side menu needs is present.
func (l Layout) HasMenu() bool {
	return l.hasAll(IDMenuToggleOutside, IDMenuToggleInside, IDSideMenu, IDOverlay)
}

// HasDropdown reports whether the dropdown trigger and panel are present.
func (l Layout) HasDropdown() bool {
	return l.hasAll(IDDropdownButton, IDDropdownMenu)
}

// HasProcess reports whether the process action can be wired.
func (l Layout) HasProcess() bool {
	return l.hasAll(IDButtonProcess, IDRealCamera, IDUploadContainer, IDTextResult, IDTextExplain)
}

// MenuFor returns a closed menu when the layout can host one, nil otherwise.
func (l Layout) MenuFor() *Menu {
	if !l.HasMenu() {
		return nil
	}
	return &Menu{}
}

// DropdownFor returns a closed dropdown when the layout can host one.
func (l Layout) DropdownFor() *Dropdown {
	if !l.HasDropdown() {
		return nil
	}
	return &Dropdown{}
}
