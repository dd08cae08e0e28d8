// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local stores result images in a directory on disk.
type Local struct {
	dir       string
	urlPrefix string
}

// NewLocal creates the directory if needed. urlPrefix is what Put prepends
// to the file name, normally "/generated/".
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if dir == "" {
		return nil, errors.New("storage: local dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	if urlPrefix == "" {
		urlPrefix = "/" + GeneratedPrefix
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Local{dir: dir, urlPrefix: urlPrefix}, nil
}

// Dir returns the backing directory.
func (l *Local) Dir() string { return l.dir }

// Put writes data to dir/name atomically.
func (l *Local) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	path, err := l.path(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(l.dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: rename %s: %w", name, err)
	}
	return l.urlPrefix + name, nil
}

// Delete removes dir/name.
func (l *Local) Delete(_ context.Context, name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// Sweep removes regular files modified before cutoff.
func (l *Local) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return 0, fmt.Errorf("storage: read %s: %w", l.dir, err)
	}

	var removed int
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("storage: sweep %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// Handler serves the stored files. Mount it with http.StripPrefix.
func (l *Local) Handler() http.Handler {
	fileServer := http.FileServer(http.Dir(l.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || strings.HasPrefix(name, ".") || strings.Contains(name, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}

// path resolves name inside dir, rejecting anything that would escape it.
func (l *Local) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("storage: invalid name %q", name)
	}
	return filepath.Join(l.dir, name), nil
}
