// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// scriptSources are the CDNs the pages load MathJax and HTMX from.
var scriptSources = []string{"https://cdn.jsdelivr.net", "https://unpkg.com"}

// contentSecurityPolicy allows the CDN scripts plus the inline MathJax
// configuration. Result images may live on an S3 host, hence https: for img-src.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' 'unsafe-inline' 'unsafe-eval' " + strings.Join(scriptSources, " "),
	"style-src 'self' 'unsafe-inline'",
	"font-src 'self' data: https://cdn.jsdelivr.net",
	"img-src 'self' data: blob: https:",
	"connect-src 'self'",
	"frame-ancestors 'self'",
}, "; ")

// SecureHeaders adds security-related HTTP headers to every response.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent the browser from MIME-sniffing the Content-Type.
		h.Set("X-Content-Type-Options", "nosniff")

		// Prevent embedding in iframes from other origins (clickjacking).
		h.Set("X-Frame-Options", "SAMEORIGIN")

		h.Set("X-XSS-Protection", "0")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// The scanner page needs the camera.
		h.Set("Permissions-Policy", "camera=(self), microphone=(), geolocation=()")

		h.Set("Content-Security-Policy", contentSecurityPolicy)

		next.ServeHTTP(w, r)
	})
}
