// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shapecount/internal/classify"
	"shapecount/internal/models"
	"shapecount/internal/render"
	"shapecount/internal/solver"
)

// stubSolver records the last upload and answers with a fixed response.
type stubSolver struct {
	resp  models.UploadResponse
	err   error
	last  *solver.Upload
	calls int
}

func (s *stubSolver) Solve(_ context.Context, up solver.Upload) (models.UploadResponse, error) {
	s.calls++
	s.last = &up
	return s.resp, s.err
}

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	rn, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return rn
}

// multipartBody builds a form with the given file fields (field -> name/body).
func multipartBody(t *testing.T, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, f := range files {
		part, err := w.CreateFormFile(field, f[0])
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte(f[1]))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestUploadSuccess(t *testing.T) {
	s := &stubSolver{resp: models.NewUploadResponse(models.ImageTypeTriangle, 18, []int{4, 4, 4}, "/generated/tri-1234abcd_gen.png?v=1")}
	h := NewUpload(s, testRenderer(t))

	body, ct := multipartBody(t, map[string][2]string{"image": {"../../tri angle.png", "\x89PNG\r\n\x1a\nrest"}})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q", got)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["image_type"] != "triangle" || resp["answer"] != 18.0 {
		t.Errorf("response: got %v", resp)
	}
	if s.last.Filename != "tri_angle.png" {
		t.Errorf("filename: got %q, want sanitised", s.last.Filename)
	}
	if s.last.ContentType != "image/png" {
		t.Errorf("content type: got %q", s.last.ContentType)
	}
}

func TestUploadMissingField(t *testing.T) {
	tests := []struct {
		name  string
		files map[string][2]string
	}{
		{"no fields", map[string][2]string{}},
		{"wrong field", map[string][2]string{"file": {"a.png", "x"}}},
		{"empty file", map[string][2]string{"image": {"a.png", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubSolver{}
			h := NewUpload(s, testRenderer(t))

			body, ct := multipartBody(t, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			h.Upload(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", w.Code)
			}
			if strings.TrimSpace(w.Body.String()) != `{"error":"No file uploaded"}` {
				t.Errorf("body: got %s", w.Body.String())
			}
			if s.calls != 0 {
				t.Error("solver should not be called")
			}
		})
	}
}

func TestUploadNotMultipart(t *testing.T) {
	h := NewUpload(&stubSolver{}, testRenderer(t))
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Upload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestUploadFailureIsAllNulls(t *testing.T) {
	s := &stubSolver{resp: models.FailedUpload(), err: classify.ErrUnrecognized}
	h := NewUpload(s, testRenderer(t))

	body, ct := multipartBody(t, map[string][2]string{"image": {"blank.png", "pixels"}})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	want := `{"image_type":null,"answer":null,"arr_info":null,"ret_image_url":null}`
	if strings.TrimSpace(w.Body.String()) != want {
		t.Errorf("body: got %s, want %s", w.Body.String(), want)
	}
}

func TestSolveFragment(t *testing.T) {
	s := &stubSolver{resp: models.NewUploadResponse(models.ImageTypeRectangle, 5, []int{5, 2, 3}, "/generated/grid_gen.png?v=9")}
	h := NewUpload(s, testRenderer(t))

	body, ct := multipartBody(t, map[string][2]string{
		"camera": {"cam.jpg", "camera-bytes"},
		"image":  {"pick.png", "picker-bytes"},
	})
	req := httptest.NewRequest(http.MethodPost, "/solve", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	h.Solve(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if s.last.Filename != "cam.jpg" {
		t.Errorf("camera should win, solver got %q", s.last.Filename)
	}

	out := w.Body.String()
	for _, want := range []string{
		"คำตอบ คือ 5 รูป",
		`src="/generated/grid_gen.png?v=9"`,
		"color: black",
		"(ไม่นับรูปซ้ำ)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("fragment missing %q:\n%s", want, out)
		}
	}
}

func TestSolveFragmentFailure(t *testing.T) {
	s := &stubSolver{resp: models.FailedUpload(), err: errors.New("boom")}
	h := NewUpload(s, testRenderer(t))

	body, ct := multipartBody(t, map[string][2]string{"image": {"a.png", "bytes"}})
	req := httptest.NewRequest(http.MethodPost, "/solve", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h.Solve(w, req)

	out := w.Body.String()
	if !strings.Contains(out, "ไม่สามารถหาคำตอบได้") || !strings.Contains(out, "color: red") {
		t.Errorf("expected red failure fragment, got:\n%s", out)
	}
	if strings.Contains(out, "upload-container") {
		t.Error("failure must not replace the preview")
	}
}

func TestSolveWithoutFile(t *testing.T) {
	s := &stubSolver{}
	h := NewUpload(s, testRenderer(t))

	body, ct := multipartBody(t, map[string][2]string{})
	req := httptest.NewRequest(http.MethodPost, "/solve", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h.Solve(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", w.Code)
	}
	if s.calls != 0 {
		t.Error("solver should not be called without a file")
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{"i contain cool \xfcml\xe4uts.txt", "i_contain_cool_mluts.txt"},
		{"über café.png", "uber_cafe.png"},
		{"รูปสามเหลี่ยม.png", "png"},
		{"CON.png", "_CON.png"},
		{"...", ""},
	}
	for _, tt := range tests {
		if got := secureFilename(tt.in); got != tt.want {
			t.Errorf("secureFilename(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
