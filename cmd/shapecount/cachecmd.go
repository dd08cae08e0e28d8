// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"shapecount/internal/cache"
	"shapecount/internal/content"
)

var (
	flushResults bool
	flushPages   bool
	flushDocs    []string
)

// resultFlusher and fragmentInvalidator are satisfied by *cache.ResultCache
// and *cache.PageCache.
type resultFlusher interface {
	Flush(ctx context.Context) int
}

type fragmentInvalidator interface {
	Invalidate(ctx context.Context, key string)
	InvalidateAll(ctx context.Context) int
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the Valkey caches",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Clear cached /upload responses and rendered lessons",
	Long: `Clears both caches by default. --results or --pages limits the flush
to one of them; --doc clears single lessons only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range flushDocs {
			if _, err := content.Load(name); err != nil {
				return err
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		client, err := cache.ConnectValkey(ctx, cfg.Valkey.Host, cfg.Valkey.Port, cfg.Valkey.Password)
		if err != nil {
			return fmt.Errorf("connecting to valkey: %w", err)
		}
		if client == nil {
			return errors.New("valkey.host is not configured, nothing is cached")
		}
		defer client.Close()

		results := cache.NewResultCache(client, 0)
		pages := cache.NewPageCache(client, cache.DefaultPageTTL)
		flushCaches(ctx, cmd.OutOrStdout(), results, pages, flushResults, flushPages, flushDocs)
		return nil
	},
}

func init() {
	cacheFlushCmd.Flags().BoolVar(&flushResults, "results", false, "clear only cached /upload responses")
	cacheFlushCmd.Flags().BoolVar(&flushPages, "pages", false, "clear only rendered lessons")
	cacheFlushCmd.Flags().StringSliceVar(&flushDocs, "doc", nil, "clear only the named lessons")
	cacheCmd.AddCommand(cacheFlushCmd)
	rootCmd.AddCommand(cacheCmd)
}

func flushCaches(ctx context.Context, w io.Writer, results resultFlusher, pages fragmentInvalidator, onlyResults, onlyPages bool, docs []string) {
	if len(docs) > 0 {
		for _, name := range docs {
			pages.Invalidate(ctx, content.FragmentKey(name))
			fmt.Fprintf(w, "cleared lesson %s\n", name)
		}
		return
	}

	all := !onlyResults && !onlyPages
	if all || onlyResults {
		fmt.Fprintf(w, "cleared %d cached results\n", results.Flush(ctx))
	}
	if all || onlyPages {
		fmt.Fprintf(w, "cleared %d cached lessons\n", pages.InvalidateAll(ctx))
	}
}
