// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ui

import "testing"

func TestMenuToggle(t *testing.T) {
	m := &Menu{}
	if m.PanelWidth() != "0" || m.OverlayDisplay() != "none" {
		t.Fatalf("closed menu: width %q overlay %q", m.PanelWidth(), m.OverlayDisplay())
	}

	m.Toggle()
	if !m.Open() {
		t.Fatal("menu should be open after one toggle")
	}
	if m.PanelWidth() != "250px" {
		t.Errorf("width: got %q, want 250px", m.PanelWidth())
	}
	if m.OverlayDisplay() != "block" {
		t.Errorf("overlay: got %q, want block", m.OverlayDisplay())
	}
}

func TestMenuTogglePairwise(t *testing.T) {
	m := &Menu{}
	for _, start := range []bool{false, true} {
		m.open = start
		panel, overlay := m.PanelStyle(), m.OverlayStyle()
		m.Toggle()
		m.Toggle()
		if m.PanelStyle() != panel || m.OverlayStyle() != overlay {
			t.Errorf("start=%v: two toggles changed style to %q / %q", start, m.PanelStyle(), m.OverlayStyle())
		}
	}
}

func TestDropdownTogglePairwise(t *testing.T) {
	d := &Dropdown{}
	closedStyle, closedClass := d.PanelStyle(), d.ButtonClass()

	d.Toggle()
	if d.ButtonClass() != "active" {
		t.Errorf("class: got %q, want active", d.ButtonClass())
	}
	if d.PanelStyle() == closedStyle {
		t.Error("open panel should differ from closed panel")
	}

	d.Toggle()
	if d.PanelStyle() != closedStyle || d.ButtonClass() != closedClass {
		t.Errorf("two toggles: got %q/%q, want %q/%q", d.PanelStyle(), d.ButtonClass(), closedStyle, closedClass)
	}
}

func TestLayoutGracefulAbsence(t *testing.T) {
	full := NewLayout(IDMenuToggleOutside, IDMenuToggleInside, IDSideMenu, IDOverlay, IDDropdownButton, IDDropdownMenu)
	if full.MenuFor() == nil {
		t.Error("full layout should host a menu")
	}
	if full.DropdownFor() == nil {
		t.Error("full layout should host a dropdown")
	}

	partial := NewLayout(IDMenuToggleOutside, IDSideMenu, IDDropdownButton)
	if partial.MenuFor() != nil {
		t.Error("menu with a missing toggle should not be wired")
	}
	if partial.DropdownFor() != nil {
		t.Error("dropdown without its panel should not be wired")
	}
	if partial.HasProcess() {
		t.Error("process action needs its buttons and outputs")
	}

	var empty Layout
	if empty.Has(IDOverlay) || empty.HasMenu() {
		t.Error("zero layout has no elements")
	}
}
