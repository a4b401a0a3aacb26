package blogservice

import "regexp"

var scriptTagRX = regexp.MustCompile(`(?is)<\s*script[^>]*>.*?<\s*/\s*script\s*>`)

// sanitizeMarkdown drops <script> blocks, including ones spanning lines.
func sanitizeMarkdown(markdown string) string {
	return scriptTagRX.ReplaceAllString(markdown, "")
}
