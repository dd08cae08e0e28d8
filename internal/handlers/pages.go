// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"shapecount/internal/content"
	"shapecount/internal/explain"
	"shapecount/internal/render"
	"shapecount/internal/ui"
)

// chromeIDs are rendered by the base layout on every page.
var chromeIDs = []string{
	ui.IDMenuToggleOutside, ui.IDMenuToggleInside, ui.IDSideMenu, ui.IDOverlay,
	ui.IDDropdownButton, ui.IDDropdownMenu,
}

// Per-page layouts. Keep in sync with templates/public.
var (
	homeLayout    = ui.NewLayout(chromeIDs...)
	topicLayout   = ui.NewLayout(append(chromeIDs, content.MountTopic)...)
	exampleLayout = ui.NewLayout(append(chromeIDs, content.MountExample)...)
	scannerLayout = ui.NewLayout(append(chromeIDs,
		ui.IDButtonCamera, ui.IDRealCamera, ui.IDButtonInput, ui.IDRealInput,
		ui.IDUploadContainer, ui.IDButtonProcess, ui.IDTextResult, ui.IDTextExplain,
	)...)
)

// Pages groups handlers for the four rendered pages.
type Pages struct {
	renderer *render.Renderer
	content  *content.Renderer
}

// NewPages creates a new Pages handler group.
func NewPages(renderer *render.Renderer, contentRenderer *content.Renderer) *Pages {
	return &Pages{renderer: renderer, content: contentRenderer}
}

// Home renders the landing page.
func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "index", render.NewPageData("หน้าแรก", "home", homeLayout))
}

// Topic renders the lesson document.
func (p *Pages) Topic(w http.ResponseWriter, r *http.Request) {
	p.lesson(w, r, "topic", "เนื้อหา", topicLayout)
}

// Example renders the worked example document.
func (p *Pages) Example(w http.ResponseWriter, r *http.Request) {
	p.lesson(w, r, "example", "ตัวอย่าง", exampleLayout)
}

// Scanner renders the upload page. The failure texts ride along so the
// script can show them when /solve never answers with a fragment.
func (p *Pages) Scanner(w http.ResponseWriter, r *http.Request) {
	data := render.NewPageData("สแกนโจทย์", "scanner", scannerLayout)
	data.Data = map[string]any{
		"FailureResult":  explain.FailureResult,
		"FailureExplain": explain.FailureExplain,
	}
	p.renderer.Page(w, r, "scanner", data)
}

func (p *Pages) lesson(w http.ResponseWriter, r *http.Request, name, title string, layout ui.Layout) {
	doc, err := content.Load(name)
	if err != nil {
		slog.Error("load document failed", "document", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := render.NewPageData(title, name, layout)
	html, _, err := p.content.Render(r.Context(), layout, doc)
	if err != nil {
		slog.Error("render document failed", "document", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data.Content = html
	p.renderer.Page(w, r, name, data)
}
