// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package explain turns a classification result into the answer line and
// the step-by-step combination explanation shown to the student. The text
// is HTML with inline LaTeX that MathJax typesets in the browser.
package explain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// placeholder matches {{key}}. Keys cannot span lines.
var placeholder = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Render replaces every {{key}} in tmpl with the string form of values[key].
// Keys are trimmed; missing keys and nil values become "". Substitution is a
// single pass, so placeholders produced by a value are left untouched.
func Render(tmpl string, values map[string]any) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := strings.TrimSpace(match[2 : len(match)-2])
		v, ok := values[key]
		if !ok {
			return ""
		}
		return stringify(v)
	})
}

// stringify formats numbers without a trailing ".0" so that float answers
// from the classifier print as whole counts.
func stringify(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return formatFloat(n)
	case float32:
		return formatFloat(float64(n))
	case int:
		return strconv.Itoa(n)
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat prints the non-finite values with their JavaScript names.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
