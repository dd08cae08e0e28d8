// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Default janitor timing.
const (
	DefaultJanitorTTL      = 24 * time.Hour
	DefaultJanitorInterval = time.Hour
)

// Janitor periodically sweeps result images older than a TTL.
type Janitor struct {
	store    ResultStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewJanitor creates a janitor. Zero durations fall back to the defaults.
func NewJanitor(store ResultStore, ttl, interval time.Duration) *Janitor {
	if ttl <= 0 {
		ttl = DefaultJanitorTTL
	}
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &Janitor{
		store:    store,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until Stop is
// called or ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-j.stop:
				return
			case <-ticker.C:
				j.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single sweep and returns the number of removed files.
func (j *Janitor) RunOnce(ctx context.Context) int {
	n, err := j.store.Sweep(ctx, j.now().Add(-j.ttl))
	if err != nil {
		slog.Warn("result sweep failed", "removed", n, "error", err)
		return n
	}
	if n > 0 {
		slog.Info("result sweep", "removed", n, "ttl", j.ttl)
	}
	return n
}

// Stop ends the loop and waits for it to exit. Safe to call more than once,
// but only after Start.
func (j *Janitor) Stop() {
	j.once.Do(func() { close(j.stop) })
	<-j.done
}
