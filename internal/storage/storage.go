// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage keeps the annotated result images produced by /upload.
// Two backends exist: a local directory served under /generated/ and an
// S3-compatible bucket. Uploaded photos themselves are never stored.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a result image does not exist.
var ErrNotFound = errors.New("storage: not found")

// GeneratedPrefix is the path segment result images live under, both as a
// URL path and as an S3 key prefix.
const GeneratedPrefix = "generated/"

// ResultStore stores result images and sweeps old ones.
type ResultStore interface {
	// Put stores data under name and returns the public URL for it.
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)

	// Delete removes name. Deleting a missing object returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	// Sweep deletes every object last modified before cutoff and returns
	// how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}
