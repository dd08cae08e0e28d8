// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"shapecount/internal/models"
)

// HTTPUploader posts images to <base>/upload as multipart field "image".
type HTTPUploader struct {
	base   string
	client *http.Client
}

// NewHTTPUploader creates an uploader for the server at base. A nil client
// uses http.DefaultClient.
func NewHTTPUploader(base string, client *http.Client) *HTTPUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{base: strings.TrimRight(base, "/"), client: client}
}

// Upload implements Uploader. The body is decoded whatever the status code,
// so an error object simply yields an unrecognised response.
func (u *HTTPUploader) Upload(ctx context.Context, img *Image) (*models.UploadResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", img.Name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.base+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post upload: %w", err)
	}
	defer resp.Body.Close()

	var out models.UploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response (status %d): %w", resp.StatusCode, err)
	}
	return &out, nil
}
