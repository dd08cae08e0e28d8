// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded photos before classification. Every
// image is decoded, scaled to a fixed working width and re-encoded as PNG
// so classifiers always see the same geometry regardless of camera size.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// WorkingWidth is the width every image is scaled to.
	WorkingWidth = 500

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// ErrEmpty is returned for zero-length input.
var ErrEmpty = errors.New("imaging: empty image")

// Normalized is a re-encoded image ready for classification.
type Normalized struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
	SourceType  string // decoder name, e.g. "jpeg"
}

// Normalize decodes src, scales it to width (keeping the aspect ratio) and
// encodes the result as PNG. width <= 0 means WorkingWidth.
func Normalize(src []byte, width int) (*Normalized, error) {
	if len(src) == 0 {
		return nil, ErrEmpty
	}
	if width <= 0 {
		width = WorkingWidth
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("imaging: image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("imaging: degenerate image %dx%d", cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	bounds := img.Bounds()
	height := int(float64(bounds.Dy()) * float64(width) / float64(bounds.Dx()))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}

	return &Normalized{
		Data:        buf.Bytes(),
		Width:       width,
		Height:      height,
		ContentType: "image/png",
		SourceType:  format,
	}, nil
}
