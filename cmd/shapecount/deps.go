// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"shapecount/internal/cache"
	"shapecount/internal/classify"
	"shapecount/internal/config"
	"shapecount/internal/database"
	"shapecount/internal/solver"
	"shapecount/internal/storage"
	"shapecount/internal/store"
)

// services are the backends shared by serve and solve. Optional ones are
// nil when not configured.
type services struct {
	classifier classify.Classifier
	results    storage.ResultStore
	local      *storage.Local
	valkey     *redis.Client
	db         *sql.DB
	resultTTL  time.Duration
}

// Close releases the connections held by s.
func (s *services) Close() {
	if s.valkey != nil {
		s.valkey.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// connect builds every backend the configuration enables.
func connect(ctx context.Context, cfg *config.Config) (*services, error) {
	s := &services{resultTTL: cache.ResultTTLFor(cfg.Storage.JanitorTTL)}

	classifier, err := newClassifier(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	s.classifier = classifier
	slog.Info("classifier selected", "name", classifier.Name())

	if cfg.Storage.UseS3() {
		st := cfg.Storage
		s3store, err := storage.NewS3(st.S3Endpoint, st.S3Region, st.S3AccessKey, st.S3SecretKey, st.S3Bucket, st.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("initializing S3 storage: %w", err)
		}
		s.results = s3store
		slog.Info("s3 result storage", "endpoint", st.S3Endpoint, "bucket", st.S3Bucket)
	} else {
		local, err := storage.NewLocal(cfg.Storage.Dir, "")
		if err != nil {
			return nil, fmt.Errorf("initializing local storage: %w", err)
		}
		s.results = local
		s.local = local
		slog.Info("local result storage", "dir", local.Dir())
	}

	s.valkey, err = cache.ConnectValkey(ctx, cfg.Valkey.Host, cfg.Valkey.Port, cfg.Valkey.Password)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting to valkey: %w", err)
	}
	if s.valkey == nil {
		slog.Warn("valkey not configured, caching disabled")
	}

	if cfg.Postgres.DSN != "" {
		s.db, err = database.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(ctx, s.db); err != nil {
			s.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	} else {
		slog.Warn("postgres not configured, solve history disabled")
	}

	return s, nil
}

// newClassifier picks the remote service first, then Gemini.
func newClassifier(cfg config.ClassifierConfig) (classify.Classifier, error) {
	switch {
	case cfg.RemoteURL != "":
		r, err := classify.NewRemote(cfg.RemoteURL, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("remote classifier: %w", err)
		}
		return r, nil
	case cfg.GeminiKey != "":
		return classify.NewGemini(cfg.GeminiKey, cfg.GeminiModel), nil
	default:
		slog.Warn("no classifier configured, every upload will fail")
		return classify.Unavailable{}, nil
	}
}

// newSolver wires the solver to whichever optional backends exist.
func (s *services) newSolver() *solver.Service {
	var opts []solver.Option
	if s.valkey != nil {
		opts = append(opts, solver.WithCache(cache.NewResultCache(s.valkey, s.resultTTL)))
	}
	if s.db != nil {
		opts = append(opts, solver.WithHistory(store.NewSolveStore(s.db)))
	}
	return solver.New(s.classifier, s.results, opts...)
}
