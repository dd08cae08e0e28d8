// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shapecount/internal/explain"
	"shapecount/internal/models"
)

var (
	explainType   string
	explainCounts []int
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Render the step-by-step explanation for a response",
	Long: `Prints the answer line and explanation HTML for a classified image.
Without --type, an /upload JSON response is read from stdin.

  shapecount explain --type triangle --counts 4,4,4
  shapecount solve photo.png | shapecount explain`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp models.UploadResponse
		if explainType != "" {
			kind := models.ImageType(explainType)
			if !kind.Valid() {
				return fmt.Errorf("invalid --type %q: must be triangle or rectangle", explainType)
			}
			var answer int
			if kind == models.ImageTypeTriangle {
				answer = explain.TriangleTotal(explainCounts)
			} else {
				answer = explain.RectangleTotal(explainCounts)
			}
			resp = models.NewUploadResponse(kind, float64(answer), explainCounts, "")
		} else {
			if err := decodeResponse(cmd.InOrStdin(), &resp); err != nil {
				return err
			}
		}

		if !resp.Recognized() {
			return fmt.Errorf("response has no image_type")
		}
		e := explain.Derive(&resp)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, e.AnswerHTML())
		fmt.Fprintln(out, e.HTML())
		return nil
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainType, "type", "", "image type: triangle or rectangle")
	explainCmd.Flags().IntSliceVar(&explainCounts, "counts", nil, "per-line counts (arr_info)")
	rootCmd.AddCommand(explainCmd)
}

func decodeResponse(r io.Reader, resp *models.UploadResponse) error {
	if err := json.NewDecoder(r).Decode(resp); err != nil {
		return fmt.Errorf("decoding response from stdin: %w", err)
	}
	return nil
}
