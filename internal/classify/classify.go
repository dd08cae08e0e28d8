// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package classify defines the boundary to the shape classifier. The
// classifier looks at a normalised photo of a counting problem, decides
// whether it shows a subdivided triangle or rectangle, and reports how many
// lines cross each horizontal line from the bottom up. The geometry itself
// is opaque to this service.
package classify

import (
	"context"
	"errors"

	"shapecount/internal/explain"
	"shapecount/internal/models"
)

var (
	// ErrUnrecognized means the image is not a triangle or rectangle problem.
	ErrUnrecognized = errors.New("classify: shape not recognized")

	// ErrUnavailable means no classifier backend is configured.
	ErrUnavailable = errors.New("classify: no classifier configured")
)

// Input is the image handed to a classifier.
type Input struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result is a successful classification.
type Result struct {
	Kind       models.ImageType
	Answer     float64
	LineCounts []int

	// Annotated is the image with the detected lines drawn in. When nil the
	// normalised input is shown instead.
	Annotated            []byte
	AnnotatedContentType string
}

// Classifier recognises counting problems in images.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, in Input) (*Result, error)
}

// answerFor computes the total for classifiers that only report line counts.
func answerFor(kind models.ImageType, counts []int) float64 {
	switch kind {
	case models.ImageTypeTriangle:
		return float64(explain.TriangleTotal(counts))
	case models.ImageTypeRectangle:
		return float64(explain.RectangleTotal(counts))
	}
	return 0
}

// Unavailable is the classifier used when nothing is configured. Every call
// fails with ErrUnavailable so /upload answers with the failure response.
type Unavailable struct{}

// Name implements Classifier.
func (Unavailable) Name() string { return "none" }

// Classify implements Classifier.
func (Unavailable) Classify(context.Context, Input) (*Result, error) {
	return nil, ErrUnavailable
}
