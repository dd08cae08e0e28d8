// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scanner

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// uploadServer mocks POST /upload, answering with body and counting calls.
func uploadServer(t *testing.T, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/upload" {
			http.NotFound(w, r)
			return
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			http.Error(w, `{"error":"No file uploaded"}`, http.StatusBadRequest)
			return
		}
		io.Copy(io.Discard, file)
		file.Close()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProcessSuccess(t *testing.T) {
	var calls int32
	srv := uploadServer(t, `{"image_type":"rectangle","answer":30,"arr_info":[5,2,3],"ret_image_url":"x.png"}`, &calls)

	var released []string
	preview := NewPreview(func(ref string) { released = append(released, ref) })
	preview.Show("blob:local-photo")

	c := NewController(NewHTTPUploader(srv.URL, nil), preview)
	out, ok := c.Process(context.Background(), Selection{
		Picker: &Image{Name: "grid.png", ContentType: "image/png", Data: []byte("png")},
	})
	if !ok {
		t.Fatal("expected the action to run")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("upload calls: got %d, want 1", calls)
	}
	if out.Failed || out.Color() != "black" {
		t.Errorf("expected success in black, got %+v", out)
	}
	if !strings.HasPrefix(string(out.Result), "คำตอบ คือ 30 รูป") {
		t.Errorf("result: got %q", out.Result)
	}

	explainHTML := string(out.Explain)
	for _, want := range []string{
		"เส้นที่ 1 สร้างได้",
		`\binom{ 2 }{2}`,
		`\binom{ 3 }{2}`,
		"= 4 รูป",
		"= 1 รูป",
		"= 0 รูป",
		"(ไม่นับรูปซ้ำ)",
	} {
		if !strings.Contains(explainHTML, want) {
			t.Errorf("explanation missing %q", want)
		}
	}

	if preview.Current() != "x.png" {
		t.Errorf("preview: got %q, want x.png", preview.Current())
	}
	if len(released) != 1 || released[0] != "blob:local-photo" {
		t.Errorf("released: got %v", released)
	}
}

func TestProcessSuccessWithoutAnswerOrImage(t *testing.T) {
	var calls int32
	srv := uploadServer(t, `{"image_type":"triangle","answer":null,"arr_info":[4],"ret_image_url":null}`, &calls)

	var released []string
	preview := NewPreview(func(ref string) { released = append(released, ref) })
	preview.Show("blob:photo")

	c := NewController(NewHTTPUploader(srv.URL, nil), preview)
	out, ok := c.Process(context.Background(), Selection{
		Picker: &Image{Name: "tri.png", ContentType: "image/png", Data: []byte("png")},
	})
	if !ok {
		t.Fatal("expected the action to run")
	}
	if out.Failed {
		t.Fatalf("a recognized type should not fail: %+v", out)
	}
	if got := string(out.Result); got != "คำตอบ คือ  รูป<br><br>" {
		t.Errorf("result: got %q, want an empty answer", got)
	}
	if !strings.Contains(string(out.Explain), `\binom{ 4 }{2}`) {
		t.Errorf("explanation should still be derived: %q", out.Explain)
	}
	if preview.Current() != "blob:photo" {
		t.Errorf("preview: got %q, want the photo kept", preview.Current())
	}
	if len(released) != 0 {
		t.Errorf("released: got %v, want nothing", released)
	}
}

func TestProcessFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"all nulls", `{"image_type":null,"answer":null,"arr_info":null,"ret_image_url":null}`},
		{"empty type", `{"image_type":""}`},
		{"not json", `<html>502</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := uploadServer(t, tt.body, &calls)

			preview := NewPreview(nil)
			preview.Show("blob:keep-me")

			c := NewController(NewHTTPUploader(srv.URL, nil), preview)
			out, ok := c.Process(context.Background(), Selection{Camera: &Image{Name: "c.jpg", Data: []byte("jpg")}})
			if !ok {
				t.Fatal("expected the action to run")
			}
			if !out.Failed || out.Color() != "red" {
				t.Errorf("expected failure in red, got %+v", out)
			}
			if string(out.Result) != "ไม่สามารถหาคำตอบได้" {
				t.Errorf("result: got %q", out.Result)
			}
			if string(out.Explain) != "ขออภัย ปัญหานี้อาจอยู่นอกขอบเขตที่เราแก้ได้" {
				t.Errorf("explain: got %q", out.Explain)
			}
			if preview.Current() != "blob:keep-me" {
				t.Errorf("preview changed on failure: %q", preview.Current())
			}
		})
	}
}

func TestProcessTransportFailure(t *testing.T) {
	c := NewController(NewHTTPUploader("http://127.0.0.1:1", nil), nil)
	out, ok := c.Process(context.Background(), Selection{Picker: &Image{Name: "a.png", Data: []byte("a")}})
	if !ok || !out.Failed {
		t.Errorf("got (%+v, %v), want failure", out, ok)
	}
}

func TestProcessWithoutFileMakesNoCall(t *testing.T) {
	var calls int32
	srv := uploadServer(t, `{}`, &calls)

	c := NewController(NewHTTPUploader(srv.URL, nil), nil)
	for _, sel := range []Selection{
		{},
		{Camera: &Image{Name: "empty.jpg"}},
	} {
		out, ok := c.Process(context.Background(), sel)
		if ok {
			t.Errorf("Process(%+v): expected no-op", sel)
		}
		if out != (Outcome{}) {
			t.Errorf("Process(%+v): outcome should be zero, got %+v", sel, out)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("upload calls: got %d, want 0", calls)
	}
}

func TestSelectionPrefersCamera(t *testing.T) {
	cam := &Image{Name: "cam.jpg", Data: []byte("c")}
	pick := &Image{Name: "pick.png", Data: []byte("p")}

	got, ok := Selection{Camera: cam, Picker: pick}.Current()
	if !ok || got != cam {
		t.Errorf("got %v, want camera image", got)
	}
	got, ok = Selection{Picker: pick}.Current()
	if !ok || got != pick {
		t.Errorf("got %v, want picker image", got)
	}
}

func TestPreviewReleasesPrevious(t *testing.T) {
	var released []string
	p := NewPreview(func(ref string) { released = append(released, ref) })

	p.Show("blob:1")
	p.Show("blob:2")
	p.Show("blob:3")
	p.Close()
	p.Close()

	want := []string{"blob:1", "blob:2", "blob:3"}
	if strings.Join(released, ",") != strings.Join(want, ",") {
		t.Errorf("released: got %v, want %v", released, want)
	}
	if p.Current() != "" || p.HTML() != "" {
		t.Error("closed preview should be empty")
	}
}

func TestPreviewHTML(t *testing.T) {
	p := NewPreview(nil)
	p.Show(`/generated/a_gen.png?v=1&x="y"`)
	html := string(p.HTML())
	if !strings.Contains(html, "width: 300px; height: 300px;") {
		t.Errorf("size missing: %s", html)
	}
	if strings.Contains(html, `"y"`) {
		t.Errorf("src not escaped: %s", html)
	}
}
