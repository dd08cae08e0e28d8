// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package solver runs the /upload pipeline: normalise the photo, classify
// it, store the annotated result image and build the JSON response.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"shapecount/internal/cache"
	"shapecount/internal/classify"
	"shapecount/internal/imaging"
	"shapecount/internal/models"
	"shapecount/internal/storage"
)

// ErrNoImage is returned when the upload carries no bytes.
var ErrNoImage = errors.New("solver: no image")

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ResultCache remembers responses by image digest. *cache.ResultCache
// satisfies it.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.UploadResponse, bool)
	Set(ctx context.Context, key string, resp *models.UploadResponse)
}

// History records successful solves. *store.SolveStore satisfies it.
type History interface {
	Record(ctx context.Context, solve *models.Solve)
}

// Service is safe for concurrent use as long as its collaborators are.
type Service struct {
	classifier classify.Classifier
	results    storage.ResultStore
	cache      ResultCache
	history    History
	width      int
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables response caching.
func WithCache(c ResultCache) Option { return func(s *Service) { s.cache = c } }

// WithHistory enables solve history.
func WithHistory(h History) Option { return func(s *Service) { s.history = h } }

// WithWidth overrides the normalisation width.
func WithWidth(w int) Option { return func(s *Service) { s.width = w } }

// New creates a Service.
func New(classifier classify.Classifier, results storage.ResultStore, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		results:    results,
		width:      imaging.WorkingWidth,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClassifierName reports which classifier backend is in use.
func (s *Service) ClassifierName() string { return s.classifier.Name() }

// Solve runs the pipeline. On any error it returns the all-null failure
// response together with the error, so callers can log and still answer.
func (s *Service) Solve(ctx context.Context, up Upload) (models.UploadResponse, error) {
	if len(up.Data) == 0 {
		return models.FailedUpload(), ErrNoImage
	}

	key := cache.ResultKey(up.Data)
	if s.cache != nil {
		if resp, ok := s.cache.Get(ctx, key); ok {
			slog.Debug("solve cache hit", "key", key, "image_type", resp.Kind(), "answer", resp.AnswerValue())
			return *resp, nil
		}
	}

	norm, err := imaging.Normalize(up.Data, s.width)
	if err != nil {
		return models.FailedUpload(), fmt.Errorf("normalize %s: %w", up.Filename, err)
	}

	res, err := s.classifier.Classify(ctx, classify.Input{
		Filename:    up.Filename,
		ContentType: norm.ContentType,
		Data:        norm.Data,
	})
	if err != nil {
		return models.FailedUpload(), fmt.Errorf("classify %s with %s: %w", up.Filename, s.classifier.Name(), err)
	}

	data, contentType := norm.Data, norm.ContentType
	if len(res.Annotated) > 0 {
		data, contentType = res.Annotated, res.AnnotatedContentType
	}

	name := resultName(up.Filename, contentType)
	url, err := s.results.Put(ctx, name, contentType, data)
	if err != nil {
		return models.FailedUpload(), fmt.Errorf("store result %s: %w", name, err)
	}
	url += "?v=" + strconv.FormatInt(s.now().Unix(), 10)

	resp := models.NewUploadResponse(res.Kind, res.Answer, res.LineCounts, url)

	if s.history != nil {
		s.history.Record(ctx, &models.Solve{
			ImageType: res.Kind,
			Answer:    res.Answer,
			ArrInfo:   res.LineCounts,
			ResultKey: name,
		})
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, &resp)
	}

	slog.Info("image solved",
		"image_type", res.Kind,
		"answer", res.Answer,
		"lines", len(res.LineCounts),
		"classifier", s.classifier.Name(),
	)
	return resp, nil
}

// resultName builds "<stem>-<id>_gen<ext>" from an already sanitised
// upload filename.
func resultName(filename, contentType string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" || stem == "." || strings.HasPrefix(stem, ".") || strings.ContainsAny(stem, `/\`) {
		stem = "image"
	}
	ext := ".png"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return stem + "-" + uuid.NewString()[:8] + "_gen" + ext
}
