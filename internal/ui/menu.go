// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ui

import "fmt"

// MenuWidth is the expanded width of the side panel.
const MenuWidth = "250px"

// Menu is the slide-out side panel and its overlay. Both always change
// together.
type Menu struct {
	open bool
}

// Open reports whether the panel is expanded.
func (m *Menu) Open() bool { return m.open }

// Toggle flips the panel between collapsed and expanded.
func (m *Menu) Toggle() { m.open = !m.open }

// PanelWidth is the panel's CSS width.
func (m *Menu) PanelWidth() string {
	if m.open {
		return MenuWidth
	}
	return "0"
}

// OverlayDisplay is the overlay's CSS display value.
func (m *Menu) OverlayDisplay() string {
	if m.open {
		return "block"
	}
	return "none"
}

// PanelStyle is the inline style for the side panel.
func (m *Menu) PanelStyle() string {
	return fmt.Sprintf("width: %s", m.PanelWidth())
}

// OverlayStyle is the inline style for the overlay.
func (m *Menu) OverlayStyle() string {
	return fmt.Sprintf("display: %s", m.OverlayDisplay())
}
