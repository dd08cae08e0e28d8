// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"shapecount/internal/models"
)

const (
	// maxResponseSize bounds the JSON body read from the remote service.
	maxResponseSize = 1 << 20

	// maxAnnotatedSize bounds the annotated image fetched back.
	maxAnnotatedSize = 20 << 20
)

// Remote forwards images to an external classification service that speaks
// the same multipart contract as POST /upload: a single "image" field in,
// {image_type, answer, arr_info, ret_image_url} out.
type Remote struct {
	endpoint *url.URL
	client   *http.Client
}

// NewRemote creates a Remote classifier posting to endpoint.
func NewRemote(endpoint string, timeout time.Duration) (*Remote, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("classify: parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("classify: remote url must be http(s), got %q", endpoint)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Remote{endpoint: u, client: &http.Client{Timeout: timeout}}, nil
}

// Name implements Classifier.
func (r *Remote) Name() string { return "remote" }

// Classify implements Classifier.
func (r *Remote) Classify(ctx context.Context, in Input) (*Result, error) {
	body, contentType, err := multipartImage(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("classify: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify: remote request: %w", err)
	}
	defer resp.Body.Close()

	var out models.UploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return nil, fmt.Errorf("classify: decode remote response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Recognized() {
		return nil, ErrUnrecognized
	}
	if !out.Kind().Valid() {
		return nil, fmt.Errorf("%w: remote returned %q", ErrUnrecognized, out.Kind())
	}

	res := &Result{
		Kind:       out.Kind(),
		LineCounts: []int(out.ArrInfo),
	}
	if out.Answer != nil {
		res.Answer = *out.Answer
	} else {
		res.Answer = answerFor(res.Kind, res.LineCounts)
	}

	if ref := out.ImageURL(); ref != "" {
		data, ct, err := r.fetch(ctx, ref)
		if err != nil {
			slog.Warn("annotated image fetch failed", "url", ref, "error", err)
		} else {
			res.Annotated, res.AnnotatedContentType = data, ct
		}
	}

	return res, nil
}

// fetch downloads the annotated image, resolving ref against the endpoint.
func (r *Remote) fetch(ctx context.Context, ref string) ([]byte, string, error) {
	u, err := r.endpoint.Parse(ref)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %q: %w", ref, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAnnotatedSize))
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}

// multipartImage encodes in as a form with a single "image" file part.
func multipartImage(in Input) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := in.Filename
	if name == "" {
		name = "image.png"
	}
	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("classify: create part: %w", err)
	}
	if _, err := part.Write(in.Data); err != nil {
		return nil, "", fmt.Errorf("classify: write part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("classify: close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
