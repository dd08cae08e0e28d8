// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"shapecount/internal/models"
	"shapecount/internal/render"
	"shapecount/internal/scanner"
	"shapecount/internal/solver"
)

const (
	// maxUploadSize is the maximum accepted image size (20 MB).
	maxUploadSize = 20 << 20

	// multipartMemory is how much of a form is kept in memory before
	// spilling to temporary files.
	multipartMemory = 8 << 20
)

// Solver runs the upload pipeline. *solver.Service satisfies it.
type Solver interface {
	Solve(ctx context.Context, up solver.Upload) (models.UploadResponse, error)
}

// Upload groups the /upload JSON endpoint and the /solve HTMX endpoint.
type Upload struct {
	solver   Solver
	renderer *render.Renderer
}

// NewUpload creates a new Upload handler group.
func NewUpload(s Solver, renderer *render.Renderer) *Upload {
	return &Upload{solver: s, renderer: renderer}
}

// Upload handles POST /upload. A missing "image" field is a 400; every
// other failure is answered with 200 and the all-null response.
func (u *Upload) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "No file uploaded", http.StatusBadRequest)
		return
	}

	img, err := formImage(r, "image")
	if err != nil {
		slog.Warn("read upload failed", "error", err)
		writeJSON(w, http.StatusOK, models.FailedUpload())
		return
	}
	if img == nil {
		writeJSONError(w, "No file uploaded", http.StatusBadRequest)
		return
	}

	resp, err := u.solver.Solve(r.Context(), solver.Upload{
		Filename:    img.Name,
		ContentType: img.ContentType,
		Data:        img.Data,
	})
	if err != nil {
		slog.Error("solve failed", "file", img.Name, "error", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Solve handles POST /solve from the scanner page. It runs the input
// controller in-process and answers with out-of-band HTMX swaps, or 204
// when neither input holds a file.
func (u *Upload) Solve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxUploadSize+1024)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		slog.Warn("parse solve form failed", "error", err)
	}

	var sel scanner.Selection
	var err error
	if sel.Camera, err = formImage(r, "camera"); err != nil {
		slog.Warn("read camera image failed", "error", err)
	}
	if sel.Picker, err = formImage(r, "image"); err != nil {
		slog.Warn("read picked image failed", "error", err)
	}

	preview := scanner.NewPreview(nil)
	defer preview.Close()

	ctrl := scanner.NewController(inProcessUploader{solver: u.solver}, preview)
	out, ok := ctrl.Process(r.Context(), sel)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	u.renderer.Fragment(w, "solve_result", render.SolveData{
		Outcome: out,
		Preview: preview.HTML(),
	})
}

// inProcessUploader feeds the scanner controller straight into the solver
// instead of looping back over HTTP.
type inProcessUploader struct {
	solver Solver
}

func (u inProcessUploader) Upload(ctx context.Context, img *scanner.Image) (*models.UploadResponse, error) {
	resp, err := u.solver.Solve(ctx, solver.Upload{
		Filename:    img.Name,
		ContentType: img.ContentType,
		Data:        img.Data,
	})
	if err != nil {
		slog.Error("solve failed", "file", img.Name, "error", err)
	}
	return &resp, nil
}

// formImage reads a file field. It returns (nil, nil) when the field is
// absent or empty.
func formImage(r *http.Request, field string) (*scanner.Image, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("form file %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) > maxUploadSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", field, maxUploadSize)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &scanner.Image{
		Name:        secureFilename(header.Filename),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// writeJSON writes data as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeJSONError writes {"error": msg}.
func writeJSONError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
