// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ui

// DropdownHeight is the expanded height of the dropdown panel.
const DropdownHeight = "100px"

// Dropdown is a trigger button with a collapsible panel below it.
type Dropdown struct {
	open bool
}

// Open reports whether the panel is expanded.
func (d *Dropdown) Open() bool { return d.open }

// Toggle flips the trigger's active state and the panel together.
func (d *Dropdown) Toggle() { d.open = !d.open }

// ButtonClass is the extra class on the trigger ("active" while open).
func (d *Dropdown) ButtonClass() string {
	if d.open {
		return "active"
	}
	return ""
}

// PanelStyle is the inline style for the panel.
func (d *Dropdown) PanelStyle() string {
	if d.open {
		return "height: " + DropdownHeight + "; display: flex; flex-direction: column; border: black 1px solid"
	}
	return "height: 0; border: none"
}
