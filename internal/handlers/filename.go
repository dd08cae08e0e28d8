// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// windowsDeviceNames may not be used as file names on Windows.
var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// secureFilename reduces an uploaded file name to a flat ASCII name that is
// safe to use on disk: accents are decomposed and dropped, path separators
// become underscores and anything outside [A-Za-z0-9_.-] is removed. It may
// return "" for names with no usable characters.
func secureFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r == '/' || r == '\\':
			b.WriteByte(' ')
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		}
	}

	name = strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if stem, _, _ := strings.Cut(name, "."); windowsDeviceNames[strings.ToUpper(stem)] {
		name = "_" + name
	}
	return name
}
