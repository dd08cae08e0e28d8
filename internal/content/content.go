// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content holds the embedded lesson documents and renders them into
// the mount points of a page. Math typesetting happens in the browser once
// the page has loaded; nothing on the server waits for it.
package content

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"sort"

	"shapecount/internal/markdown"
	"shapecount/internal/ui"
)

//go:embed docs/*.md
var docsFS embed.FS

// Mount points used by the lesson pages.
const (
	MountTopic   = "paragraph"
	MountExample = "triangle-text"
)

// Document is a Markdown lesson and the element it renders into.
type Document struct {
	Name   string
	Mount  string
	Source string
}

var documents = map[string]string{
	"topic":   MountTopic,
	"example": MountExample,
}

// Load returns the named embedded document.
func Load(name string) (Document, error) {
	mount, ok := documents[name]
	if !ok {
		return Document{}, fmt.Errorf("content: unknown document %q", name)
	}
	src, err := docsFS.ReadFile("docs/" + name + ".md")
	if err != nil {
		return Document{}, fmt.Errorf("content: read %s: %w", name, err)
	}
	return Document{Name: name, Mount: mount, Source: string(src)}, nil
}

// Names lists the embedded document names in sorted order.
func Names() []string {
	names := make([]string, 0, len(documents))
	for n := range documents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FragmentCache stores rendered HTML fragments. *cache.PageCache satisfies it.
type FragmentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
}

// FragmentKey is the cache key of a rendered document.
func FragmentKey(name string) string {
	return "content:" + name
}

// Renderer converts documents to HTML, optionally caching the result.
type Renderer struct {
	cache FragmentCache
}

// NewRenderer creates a Renderer. cache may be nil.
func NewRenderer(cache FragmentCache) *Renderer {
	return &Renderer{cache: cache}
}

// Render converts doc to HTML for its mount point. When the layout does not
// contain the mount the call is a no-op and reports false.
func (r *Renderer) Render(ctx context.Context, layout ui.Layout, doc Document) (template.HTML, bool, error) {
	if !layout.Has(doc.Mount) {
		return "", false, nil
	}

	key := FragmentKey(doc.Name)
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, key); ok {
			return template.HTML(cached), true, nil
		}
	}

	out, err := markdown.ToHTML(doc.Source)
	if err != nil {
		return "", false, fmt.Errorf("render %s: %w", doc.Name, err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, key, []byte(out))
	}
	slog.Debug("content rendered", "document", doc.Name, "mount", doc.Mount, "bytes", len(out))

	// Lesson documents are embedded at build time and trusted.
	return template.HTML(out), true, nil
}
