// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scanner

import (
	"fmt"
	"html/template"
)

// PreviewSize is the fixed edge length of the preview image in pixels.
const PreviewSize = 300

// Preview owns at most one displayed image reference. Replacing or closing
// it hands the previous reference to the release callback exactly once.
type Preview struct {
	ref     string
	release func(ref string)
}

// NewPreview creates an empty preview. release may be nil.
func NewPreview(release func(ref string)) *Preview {
	return &Preview{release: release}
}

// Show displays ref, releasing whatever was shown before.
func (p *Preview) Show(ref string) {
	if ref == p.ref {
		return
	}
	p.drop()
	p.ref = ref
}

// Current returns the displayed reference, or "".
func (p *Preview) Current() string { return p.ref }

// Close releases the displayed reference.
func (p *Preview) Close() { p.drop() }

func (p *Preview) drop() {
	if p.ref != "" && p.release != nil {
		p.release(p.ref)
	}
	p.ref = ""
}

// HTML renders the preview image, or nothing when empty.
func (p *Preview) HTML() template.HTML {
	if p.ref == "" {
		return ""
	}
	return template.HTML(fmt.Sprintf(
		`<img src="%s" alt="" style="width: %dpx; height: %dpx;">`,
		template.HTMLEscapeString(p.ref), PreviewSize, PreviewSize,
	))
}
