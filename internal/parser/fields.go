package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// fieldSet maps normalized key names to raw scalar values.
type fieldSet map[string]any

func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// lookup returns the first alias present, with the alias that matched.
func (f fieldSet) lookup(aliases ...string) (any, string, bool) {
	for _, a := range aliases {
		if v, ok := f[a]; ok {
			return v, a, true
		}
	}
	return nil, "", false
}

func (f fieldSet) text(aliases ...string) (string, bool) {
	v, _, ok := f.lookup(aliases...)
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	return s, s != ""
}

func (f fieldSet) setOnce(key string, v any) {
	k := normalizeKey(key)
	if k == "" {
		return
	}
	if _, exists := f[k]; !exists {
		f[k] = v
	}
}

// decodeJSON flattens a JSON object breadth first, so top-level keys win
// over nested ones with the same name. Arrays (item lines) are ignored.
func decodeJSON(content string) (fieldSet, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}

	fields := fieldSet{}
	queue := []map[string]any{root}
	for len(queue) > 0 {
		obj := queue[0]
		queue = queue[1:]
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch val := obj[k].(type) {
			case map[string]any:
				queue = append(queue, val)
			case []any:
			default:
				fields.setOnce(k, val)
			}
		}
	}
	return fields, nil
}

var (
	quotedPair = regexp.MustCompile(`"([A-Za-z_][\w]*)"\s*:\s*(?:"((?:[^"\\]|\\.)*)"|(-?[\d][\d.,]*))`)
	linePair   = regexp.MustCompile(`(?m)^\s*([A-Za-z_][\w ]*?)\s*[:=]\s*(.+?)\s*,?\s*$`)
)

// extractKeyValues recovers fields from content that is not a valid JSON
// document: truncated or hand-edited JSON, or plain "Key: value" lines.
func extractKeyValues(content string) fieldSet {
	fields := fieldSet{}
	for _, m := range quotedPair.FindAllStringSubmatch(content, -1) {
		if m[2] != "" || m[3] == "" {
			fields.setOnce(m[1], m[2])
		} else {
			fields.setOnce(m[1], m[3])
		}
	}
	for _, m := range linePair.FindAllStringSubmatch(content, -1) {
		fields.setOnce(m[1], strings.Trim(m[2], `"' `))
	}
	return fields
}
