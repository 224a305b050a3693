package parser

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

var strippedSymbols = strings.NewReplacer("\ufeff", "", "£", "", "©", "")

// Sanitize removes the byte noise terminals are known to leave in record
// files: a BOM, ASCII control characters, pound and copyright signs, and a
// signature hash appended after the closing brace of the JSON document.
func Sanitize(content string) string {
	content = strippedSymbols.Replace(content)
	content = controlChars.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "{") {
		if end := strings.LastIndex(content, "}"); end >= 0 {
			content = content[:end+1]
		}
	}
	return content
}
