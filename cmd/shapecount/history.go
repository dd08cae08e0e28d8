// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"shapecount/internal/database"
	"shapecount/internal/models"
	"shapecount/internal/store"
)

var historyLimit int

// solveHistory is the read side of the solve history. *store.SolveStore
// satisfies it.
type solveHistory interface {
	Recent(ctx context.Context, limit int) ([]models.Solve, error)
	CountByType(ctx context.Context) (map[models.ImageType]int, error)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent solves and totals per shape",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is not configured, no history is recorded")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		db, err := database.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		return printHistory(ctx, cmd.OutOrStdout(), store.NewSolveStore(db), historyLimit)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of solves to list")
	rootCmd.AddCommand(historyCmd)
}

func printHistory(ctx context.Context, w io.Writer, h solveHistory, limit int) error {
	totals, err := h.CountByType(ctx)
	if err != nil {
		return err
	}
	solves, err := h.Recent(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "triangle: %d  rectangle: %d\n\n",
		totals[models.ImageTypeTriangle], totals[models.ImageTypeRectangle])

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTYPE\tANSWER\tLINES\tRESULT")
	for _, s := range solves {
		lines := make([]string, len(s.ArrInfo))
		for i, n := range s.ArrInfo {
			lines[i] = fmt.Sprint(n)
		}
		fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%s\n",
			s.CreatedAt.Local().Format(time.DateTime), s.ImageType, s.Answer,
			strings.Join(lines, ","), s.ResultKey)
	}
	return tw.Flush()
}
