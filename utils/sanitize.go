package utils

import "github.com/microcosm-cc/bluemonday"

// Display names are plain text; strip all markup rather than allowing a safe subset.
var sanitizer = bluemonday.StrictPolicy()

// SanitizeText strips HTML from user-supplied plain-text fields to prevent stored XSS.
func SanitizeText(input string) string {
	return sanitizer.Sanitize(input)
}
