// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// shapecount server.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"shapecount/internal/handlers"
	"shapecount/internal/middleware"
)

// Deps are the handlers and assets the router mounts.
type Deps struct {
	Pages  *handlers.Pages
	Upload *handlers.Upload

	// UploadLimiter throttles /upload and /solve. Nil disables it.
	UploadLimiter *middleware.RateLimiter

	// Generated serves locally stored result images. Nil when results live
	// in S3 and are linked directly.
	Generated http.Handler

	// Static is the embedded script and stylesheet tree.
	Static fs.FS

	// AllowedOrigins for CORS. Empty means every origin.
	AllowedOrigins []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(chimw.CleanPath)
	r.Use(chimw.Timeout(90 * time.Second))

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Current-URL", "HX-Trigger"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)

	// Pages.
	r.Get("/", d.Pages.Home)
	r.Get("/topic", d.Pages.Topic)
	r.Get("/scanner", d.Pages.Scanner)
	r.Get("/example", d.Pages.Example)

	// Upload endpoints, rate limited per client.
	r.Group(func(r chi.Router) {
		if d.UploadLimiter != nil {
			r.Use(d.UploadLimiter.Middleware)
		}
		r.Post("/upload", d.Upload.Upload)
		r.Post("/solve", d.Upload.Solve)
	})

	if d.Generated != nil {
		r.Handle("/generated/*", http.StripPrefix("/generated/", d.Generated))
	}
	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", staticHandler(d.Static)))
	}

	return r
}

// staticHandler serves the embedded assets with a short cache lifetime.
func staticHandler(fsys fs.FS) http.Handler {
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		files.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
