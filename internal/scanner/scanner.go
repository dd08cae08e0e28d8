// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scanner is the input controller of the scanner page: it picks the
// image to send, uploads it to /upload and turns the response into the
// answer, the explanation and the new preview. Values in this package are
// per-request and not safe for concurrent use.
package scanner

import (
	"context"
	"html/template"
	"log/slog"

	"shapecount/internal/explain"
	"shapecount/internal/models"
)

// Image is a file chosen by the user. It is never persisted.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

func (img *Image) present() bool {
	return img != nil && len(img.Data) > 0
}

// Selection holds what the two hidden inputs currently contain.
type Selection struct {
	Camera *Image
	Picker *Image
}

// Current returns the image to process. A camera capture wins over a file
// picked from disk.
func (s Selection) Current() (*Image, bool) {
	if s.Camera.present() {
		return s.Camera, true
	}
	if s.Picker.present() {
		return s.Picker, true
	}
	return nil, false
}

// Uploader sends an image to /upload.
type Uploader interface {
	Upload(ctx context.Context, img *Image) (*models.UploadResponse, error)
}

// Outcome is what the page shows after processing.
type Outcome struct {
	Failed   bool
	Result   template.HTML
	Explain  template.HTML
	ImageURL string
}

// Color is the text colour for the result and explanation blocks.
func (o Outcome) Color() string {
	if o.Failed {
		return "red"
	}
	return "black"
}

// Failure is the outcome shown for every kind of error.
func Failure() Outcome {
	return Outcome{
		Failed:  true,
		Result:  template.HTML(explain.FailureResult),
		Explain: template.HTML(explain.FailureExplain),
	}
}

// Controller runs the process action.
type Controller struct {
	uploader Uploader
	preview  *Preview
}

// NewController creates a controller. preview may be nil when the page has
// no upload container.
func NewController(u Uploader, preview *Preview) *Controller {
	return &Controller{uploader: u, preview: preview}
}

// Process uploads the current selection. It reports false, without any
// network call, when nothing is selected. On success the preview is
// replaced by the annotated result image when one is returned; on failure
// it is left alone.
func (c *Controller) Process(ctx context.Context, sel Selection) (Outcome, bool) {
	img, ok := sel.Current()
	if !ok {
		return Outcome{}, false
	}

	resp, err := c.uploader.Upload(ctx, img)
	if err != nil {
		slog.Warn("upload failed", "file", img.Name, "error", err)
		return Failure(), true
	}
	if !resp.Recognized() {
		return Failure(), true
	}

	e := explain.Derive(resp)
	out := Outcome{
		Result:   template.HTML(e.AnswerHTML()),
		Explain:  template.HTML(e.HTML()),
		ImageURL: resp.ImageURL(),
	}
	if c.preview != nil && out.ImageURL != "" {
		c.preview.Show(out.ImageURL)
	}
	return out, true
}
