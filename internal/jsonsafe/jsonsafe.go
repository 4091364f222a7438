// Package jsonsafe provides defensive JSON helpers for storing state inside
// Discord embeds and for salvaging JSON out of LLM replies.
package jsonsafe

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
)

// EmbedLimit is the Discord embed description character ceiling.
const EmbedLimit = 4000

var (
	fenceOpenRe  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")
	objectRe     = regexp.MustCompile(`\{[\s\S]*\}`)
	arrayRe      = regexp.MustCompile(`\[[\s\S]*\]`)
)

// Marshal serializes data compactly. Serialization failures log and yield
// "{}" rather than propagating.
func Marshal(data any) string {
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("[ERR] JSON serialization failed: %v", err)
		return "{}"
	}
	return string(b)
}

// MarshalIndent is Marshal with two-space indentation, for human-facing
// output.
func MarshalIndent(data any) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Printf("[ERR] JSON serialization failed: %v", err)
		return "{}"
	}
	return string(b)
}

// Unmarshal parses a JSON object string, cleaning markdown fences first.
// On any failure the default is returned.
func Unmarshal(jsonStr string, def map[string]any) map[string]any {
	if jsonStr == "" {
		return def
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(CleanJSONString(jsonStr)), &out); err != nil {
		log.Printf("[WARN] JSON decode error: %v", err)
		return def
	}
	return out
}

// UnmarshalInto parses a cleaned JSON string into v.
func UnmarshalInto(jsonStr string, v any) error {
	return json.Unmarshal([]byte(CleanJSONString(jsonStr)), v)
}

// CleanJSONString strips markdown code fences and surrounding whitespace.
func CleanJSONString(jsonStr string) string {
	jsonStr = strings.TrimSpace(jsonStr)
	jsonStr = fenceOpenRe.ReplaceAllString(jsonStr, "")
	jsonStr = strings.TrimSpace(jsonStr)
	jsonStr = fenceCloseRe.ReplaceAllString(jsonStr, "")
	return strings.TrimSpace(jsonStr)
}

// ExtractJSON pulls the first valid JSON object (or, failing that, array)
// out of free-form text. Returns "" when nothing parseable is found.
func ExtractJSON(text string) string {
	if text == "" {
		return ""
	}
	if m := objectRe.FindString(text); m != "" && json.Valid([]byte(m)) {
		return m
	}
	if m := arrayRe.FindString(text); m != "" && json.Valid([]byte(m)) {
		return m
	}
	return ""
}

// Merge deep-merges update into a copy of base. Nested maps merge
// recursively; any other collision takes the update value.
func Merge(base, update map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(update))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range update {
		bm, bok := result[k].(map[string]any)
		um, uok := v.(map[string]any)
		if bok && uok {
			result[k] = Merge(bm, um)
			continue
		}
		result[k] = v
	}
	return result
}

// Get walks nested maps by key path, returning def when any hop is missing
// or not a map.
func Get(data map[string]any, def any, keys ...string) any {
	var current any = data
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return def
		}
		current, ok = m[key]
		if !ok {
			return def
		}
	}
	return current
}

// Set writes a value at a nested key path, creating intermediate maps.
// Returns false if an intermediate key holds a non-map.
func Set(data map[string]any, value any, keys ...string) bool {
	if len(keys) == 0 {
		return false
	}
	current := data
	for _, key := range keys[:len(keys)-1] {
		next, exists := current[key]
		if !exists {
			m := make(map[string]any)
			current[key] = m
			current = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return false
		}
		current = m
	}
	current[keys[len(keys)-1]] = value
	return true
}

// Compress serializes data compactly after dropping nils and empty
// collections, minimizing the footprint inside the embed.
func Compress(data map[string]any) string {
	return Marshal(prune(data))
}

func prune(obj any) any {
	switch v := obj.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			if isEmpty(item) {
				continue
			}
			out[k] = prune(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, prune(item))
		}
		return out
	default:
		return obj
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// Size returns the byte size of the compact JSON form.
func Size(data any) int {
	return len(Marshal(data))
}

// FitsInEmbed reports whether data's compact JSON form fits in an embed
// description.
func FitsInEmbed(data any) bool {
	return Size(data) <= EmbedLimit
}

// Truncate cuts text to maxLength with a trailing ellipsis. Only suitable
// for display text and best-effort snapshots; truncated JSON will not parse.
func Truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return text[:maxLength-3] + "..."
}
