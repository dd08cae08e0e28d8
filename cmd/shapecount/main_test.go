// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shapecount/internal/config"
	"shapecount/internal/content"
	"shapecount/internal/models"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	explainType, explainCounts = "", nil
	configForce = false
	historyLimit = 20
	flushResults, flushPages, flushDocs = false, false, nil
	cfgFile = config.DefaultPath

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExplainFlags(t *testing.T) {
	out, err := run(t, "", "explain", "--type", "triangle", "--counts", "4,4,4")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.Contains(out, "คำตอบ คือ 18 รูป") {
		t.Errorf("missing answer line in %q", out)
	}
	if strings.Count(out, `\binom{ 4 }{2}`) != 3 {
		t.Errorf("expected three binomial steps in %q", out)
	}
}

func TestExplainStdin(t *testing.T) {
	body := `{"image_type":"rectangle","answer":5,"arr_info":[5,2,3],"ret_image_url":null}`
	out, err := run(t, body, "explain")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.Contains(out, "คำตอบ คือ 5 รูป") {
		t.Errorf("missing answer line in %q", out)
	}
}

func TestExplainRejects(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"bad type", "", []string{"explain", "--type", "circle"}},
		{"failed response", `{"image_type":null}`, []string{"explain"}},
		{"not json", "nope", []string{"explain"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.stdin, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRender(t *testing.T) {
	out, err := run(t, "", "render", "topic")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<strong>") || !strings.Contains(out, `\binom{n}{r}`) {
		t.Errorf("unexpected render output: %.200q", out)
	}

	if _, err := run(t, "", "render", "missing"); err == nil {
		t.Error("expected error for unknown document")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapecount.yml")

	if _, err := run(t, "", "config", "init", "--config", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port: got %q", cfg.Server.Port)
	}

	if _, err := run(t, "", "config", "init", "--config", path); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := run(t, "", "config", "init", "--config", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestSolveMissingFile(t *testing.T) {
	if _, err := run(t, "", "solve", filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

type fakeHistory struct {
	solves []models.Solve
	counts map[models.ImageType]int
	limit  int
	err    error
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]models.Solve, error) {
	f.limit = limit
	return f.solves, f.err
}

func (f *fakeHistory) CountByType(context.Context) (map[models.ImageType]int, error) {
	return f.counts, f.err
}

func TestPrintHistory(t *testing.T) {
	h := &fakeHistory{
		solves: []models.Solve{
			{ImageType: models.ImageTypeRectangle, Answer: 5, ArrInfo: []int{5, 2, 3}, ResultKey: "grid-1a2b3c4d_gen.png", CreatedAt: time.Now()},
			{ImageType: models.ImageTypeTriangle, Answer: 18, ArrInfo: []int{4, 4, 4}, ResultKey: "tri-5e6f7a8b_gen.png", CreatedAt: time.Now()},
		},
		counts: map[models.ImageType]int{models.ImageTypeTriangle: 7, models.ImageTypeRectangle: 3},
	}

	var out bytes.Buffer
	if err := printHistory(context.Background(), &out, h, 5); err != nil {
		t.Fatalf("printHistory: %v", err)
	}
	if h.limit != 5 {
		t.Errorf("limit: got %d, want 5", h.limit)
	}
	for _, want := range []string{"triangle: 7  rectangle: 3", "5,2,3", "grid-1a2b3c4d_gen.png", "18", "4,4,4"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestPrintHistoryError(t *testing.T) {
	h := &fakeHistory{err: errors.New("db down")}
	if err := printHistory(context.Background(), &bytes.Buffer{}, h, 5); err == nil {
		t.Error("expected error")
	}
}

func TestHistoryRequiresDatabase(t *testing.T) {
	t.Setenv("SHAPECOUNT_POSTGRES_DSN", "")
	_, err := run(t, "", "history")
	if err == nil || !strings.Contains(err.Error(), "postgres.dsn") {
		t.Errorf("err: got %v, want postgres.dsn not configured", err)
	}
}

type fakeCaches struct {
	flushed        int
	invalidated    []string
	invalidatedAll int
}

func (f *fakeCaches) Flush(context.Context) int {
	f.flushed++
	return 4
}

func (f *fakeCaches) Invalidate(_ context.Context, key string) {
	f.invalidated = append(f.invalidated, key)
}

func (f *fakeCaches) InvalidateAll(context.Context) int {
	f.invalidatedAll++
	return 2
}

func TestFlushCaches(t *testing.T) {
	tests := []struct {
		name        string
		results     bool
		pages       bool
		docs        []string
		wantFlush   int
		wantAll     int
		wantKeys    []string
		wantMessage string
	}{
		{"both by default", false, false, nil, 1, 1, nil, "cleared 4 cached results"},
		{"results only", true, false, nil, 1, 0, nil, "cleared 4 cached results"},
		{"pages only", false, true, nil, 0, 1, nil, "cleared 2 cached lessons"},
		{"single lesson", false, false, []string{"topic"}, 0, 0, []string{content.FragmentKey("topic")}, "cleared lesson topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCaches{}
			var out bytes.Buffer
			flushCaches(context.Background(), &out, f, f, tt.results, tt.pages, tt.docs)

			if f.flushed != tt.wantFlush {
				t.Errorf("Flush calls: got %d, want %d", f.flushed, tt.wantFlush)
			}
			if f.invalidatedAll != tt.wantAll {
				t.Errorf("InvalidateAll calls: got %d, want %d", f.invalidatedAll, tt.wantAll)
			}
			if strings.Join(f.invalidated, ",") != strings.Join(tt.wantKeys, ",") {
				t.Errorf("Invalidate keys: got %v, want %v", f.invalidated, tt.wantKeys)
			}
			if !strings.Contains(out.String(), tt.wantMessage) {
				t.Errorf("output: got %q, want %q", out.String(), tt.wantMessage)
			}
		})
	}
}

func TestCacheFlushRequiresValkey(t *testing.T) {
	t.Setenv("SHAPECOUNT_VALKEY_HOST", "")
	_, err := run(t, "", "cache", "flush")
	if err == nil || !strings.Contains(err.Error(), "valkey.host") {
		t.Errorf("err: got %v, want valkey.host not configured", err)
	}

	if _, err := run(t, "", "cache", "flush", "--doc", "missing"); err == nil {
		t.Error("expected error for unknown lesson")
	}
}

func TestMain(m *testing.M) {
	// Keep a developer's shapecount.yml out of the tests.
	dir, err := os.MkdirTemp("", "shapecount-cmd")
	if err == nil {
		os.Chdir(dir)
	}
	code := m.Run()
	if dir != "" {
		os.RemoveAll(dir)
	}
	os.Exit(code)
}
