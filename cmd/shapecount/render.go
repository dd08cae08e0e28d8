// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shapecount/internal/content"
	"shapecount/internal/markdown"
)

var renderCmd = &cobra.Command{
	Use:       "render <document>",
	Short:     "Print the HTML of an embedded lesson",
	Long:      "Renders one of the embedded Markdown lessons (" + strings.Join(content.Names(), ", ") + ") to HTML. Math is left for MathJax.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: content.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := content.Load(args[0])
		if err != nil {
			return err
		}
		html, err := markdown.ToHTML(doc.Source)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", doc.Name, err)
		}
		fmt.Fprint(cmd.OutOrStdout(), html)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
