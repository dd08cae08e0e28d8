// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shapecount/internal/content"
)

func TestPages(t *testing.T) {
	p := NewPages(testRenderer(t), content.NewRenderer(nil))

	tests := []struct {
		name    string
		handler http.HandlerFunc
		path    string
		want    []string
	}{
		{"home", p.Home, "/", []string{`href="/scanner"`, `id="side-menu"`}},
		{"topic", p.Topic, "/topic", []string{`id="paragraph"`, "<strong>", `\binom`}},
		{"example", p.Example, "/example", []string{`id="triangle-text"`, "30"}},
		{"scanner", p.Scanner, "/scanner", []string{`id="real-camera"`, `id="button-process"`, `hx-post="/solve"`,
			`data-failure-result="ไม่สามารถหาคำตอบได้"`, `data-failure-explain="ขออภัย ปัญหานี้อาจอยู่นอกขอบเขตที่เราแก้ได้"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", w.Code)
			}
			body := w.Body.String()
			if !strings.Contains(body, "<!DOCTYPE html>") {
				t.Error("expected a full page")
			}
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}

func TestTopicHTMXPartial(t *testing.T) {
	p := NewPages(testRenderer(t), content.NewRenderer(nil))
	req := httptest.NewRequest(http.MethodGet, "/topic", nil)
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	p.Topic(w, req)

	body := w.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("HTMX request should get the content block only")
	}
	if !strings.Contains(body, `id="paragraph"`) {
		t.Error("content block missing the lesson mount")
	}
}
