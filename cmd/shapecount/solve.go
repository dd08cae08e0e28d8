// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"shapecount/internal/explain"
	"shapecount/internal/models"
	"shapecount/internal/scanner"
	"shapecount/internal/solver"
)

var (
	solveServer  string
	solveExplain bool
)

var solveCmd = &cobra.Command{
	Use:   "solve <image>",
	Short: "Classify an image and print the /upload response",
	Long: `Runs the upload pipeline on a local image file. With --server the file
is posted to a running shapecount instance instead of being solved
in-process.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		img := &scanner.Image{
			Name:        filepath.Base(args[0]),
			ContentType: http.DetectContentType(data),
			Data:        data,
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		var resp *models.UploadResponse
		if solveServer != "" {
			resp, err = scanner.NewHTTPUploader(solveServer, nil).Upload(ctx, img)
		} else {
			resp, err = solveLocally(ctx, img)
		}
		if err != nil {
			return err
		}

		return printResponse(cmd.OutOrStdout(), resp, solveExplain)
	},
}

func init() {
	solveCmd.Flags().StringVar(&solveServer, "server", "", "base URL of a running shapecount server")
	solveCmd.Flags().BoolVar(&solveExplain, "explain", false, "print the step-by-step explanation after the JSON")
	rootCmd.AddCommand(solveCmd)
}

func solveLocally(ctx context.Context, img *scanner.Image) (*models.UploadResponse, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	svc, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer svc.Close()

	resp, err := svc.newSolver().Solve(ctx, solver.Upload{
		Filename:    img.Name,
		ContentType: img.ContentType,
		Data:        img.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	return &resp, nil
}

func printResponse(w io.Writer, resp *models.UploadResponse, withExplain bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	if withExplain && resp.Recognized() {
		e := explain.Derive(resp)
		fmt.Fprintln(w, e.AnswerHTML())
		fmt.Fprintln(w, e.HTML())
	}
	return nil
}
