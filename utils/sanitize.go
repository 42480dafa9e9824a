package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizer      = bluemonday.UGCPolicy()
	plainSanitizer = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks while keeping safe markup.
func Sanitize(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}

// SanitizePlain strips all markup, for single-line fields such as titles.
func SanitizePlain(input string) string {
	return strings.TrimSpace(html.UnescapeString(plainSanitizer.Sanitize(input)))
}
