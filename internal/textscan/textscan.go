// Package textscan qualifies and analyzes learning log messages with
// local heuristics only. No network calls, no state, fully deterministic.
package textscan

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMinLength is the minimum cleaned length for a message to
	// count as a learning log.
	DefaultMinLength = 30

	// DuplicateThreshold is the similarity ratio above which a message
	// is treated as a repost.
	DuplicateThreshold = 0.85

	// repetitionThreshold is the prior frequency at which a concept
	// starts counting as repeated.
	repetitionThreshold = 3
)

var (
	mentionRe    = regexp.MustCompile(`<@!?\d+>`)
	channelRe    = regexp.MustCompile(`<#\d+>`)
	roleRe       = regexp.MustCompile(`<@&\d+>`)
	customEmojiRe = regexp.MustCompile(`<a?:\w+:\d+>`)
	urlRe        = regexp.MustCompile(`https?://\S+`)

	codePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(def|class|import|from|return)\b`),
		regexp.MustCompile(`\b(function|const|let|var|async)\b`),
		regexp.MustCompile(`\w+\s*\([^)]*\)`),
		regexp.MustCompile(`\w+\s*=\s*[\w\[{]`),
		regexp.MustCompile("```[\\s\\S]*?```"),
	}
)

// CleanContent strips Discord-specific markup (mentions, channel and role
// references, custom emoji) and collapses whitespace.
func CleanContent(content string) string {
	content = mentionRe.ReplaceAllString(content, "")
	content = channelRe.ReplaceAllString(content, "")
	content = roleRe.ReplaceAllString(content, "")
	content = customEmojiRe.ReplaceAllString(content, "")
	return strings.Join(strings.Fields(content), " ")
}

// Qualifies checks whether cleaned content counts as a valid learning log.
// Lengths count characters, not bytes, so non-ASCII text is measured the
// same as ASCII. The reason explains rejection; it is "Qualified" on
// success.
func Qualifies(content string, minLength int) (bool, string) {
	trimmed := strings.TrimSpace(content)
	if n := utf8.RuneCountInString(trimmed); n < minLength {
		return false, fmt.Sprintf("Too short (%d < %d chars)", n, minLength)
	}

	alphaCount := 0
	for _, r := range content {
		if unicode.IsLetter(r) {
			alphaCount++
		}
	}
	if alphaCount < minLength/2 {
		return false, "Insufficient alphabetic content"
	}

	withoutURLs := strings.TrimSpace(urlRe.ReplaceAllString(content, ""))
	if utf8.RuneCountInString(withoutURLs) < minLength/2 {
		return false, "Mostly URLs"
	}

	return true, "Qualified"
}

// Similarity returns a 0..1 ratio of how alike two texts are, computed as
// 2*matched/total over recursively found longest common substrings
// (difflib-compatible). Inputs are lowercased and trimmed first.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	matched := matchingSize(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingSize sums the sizes of matching blocks between a[alo:ahi] and
// b[blo:bhi] by finding the longest common substring and recursing on the
// pieces to its left and right.
func matchingSize(a, b []rune, alo, ahi, blo, bhi int) int {
	bestI, bestJ, bestSize := longestMatch(a, b, alo, ahi, blo, bhi)
	if bestSize == 0 {
		return 0
	}
	total := bestSize
	total += matchingSize(a, b, alo, bestI, blo, bestJ)
	total += matchingSize(a, b, bestI+bestSize, ahi, bestJ+bestSize, bhi)
	return total
}

func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (int, int, int) {
	bestI, bestJ, bestSize := alo, blo, 0
	// j2len[j] = length of the match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return bestI, bestJ, bestSize
}

// IsDuplicate reports whether content is near-identical to any of the
// existing texts.
func IsDuplicate(content string, existing []string) bool {
	for _, e := range existing {
		if Similarity(content, e) >= DuplicateThreshold {
			return true
		}
	}
	return false
}

// TechnicalDepth scores content 0-5 from technical vocabulary and code
// patterns. Returns the score and up to 10 matched terms.
func TechnicalDepth(content string) (int, []string) {
	lower := strings.ToLower(content)

	var found []string
	for _, kw := range technicalKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}

	codeScore := 0
	for _, p := range codePatterns {
		if p.MatchString(content) {
			codeScore++
		}
	}

	keywordScore := min(len(found), 10) / 2
	score := min(keywordScore+codeScore, 5)

	if len(found) > 10 {
		found = found[:10]
	}
	return score, found
}

// ClassifyTopic picks the dominant topic for content and returns per-topic
// confidences. A tie (or near-tie) between the top two topics yields
// "Mixed"; content with no topical vocabulary yields "Mixed" with flat
// confidences.
func ClassifyTopic(content string) (string, map[string]float64) {
	lower := strings.ToLower(content)

	scores := make(map[string]int, len(topicOrder))
	total := 0
	for _, topic := range topicOrder {
		n := 0
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		scores[topic] = n
		total += n
	}

	if total == 0 {
		flat := make(map[string]float64, len(topicOrder))
		for _, topic := range topicOrder {
			flat[topic] = 0.25
		}
		return "Mixed", flat
	}

	confidences := make(map[string]float64, len(topicOrder))
	primary := topicOrder[0]
	best, second := -1, -1
	for _, topic := range topicOrder {
		confidences[topic] = float64(scores[topic]) / float64(total)
		if scores[topic] > best {
			second = best
			best = scores[topic]
			primary = topic
		} else if scores[topic] > second {
			second = scores[topic]
		}
	}

	if best-second <= 1 {
		primary = "Mixed"
	}
	return primary, confidences
}

// ExtractConcepts returns up to maxConcepts technical terms found in the
// content, deduplicated in table order.
func ExtractConcepts(content string, maxConcepts int) []string {
	lower := strings.ToLower(content)
	seen := make(map[string]bool)
	var out []string
	for _, kw := range technicalKeywords {
		if seen[kw] || !strings.Contains(lower, kw) {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
		if len(out) >= maxConcepts {
			break
		}
	}
	return out
}

// RepetitionPenalty scales points down when a user keeps logging the same
// concepts. A concept counts as repeated once its prior frequency reaches 3.
// The multiplier is clamped to [0.5, 1.0]; an empty concept list is neutral.
func RepetitionPenalty(concepts []string, frequency map[string]int) (float64, []string) {
	var repeated []string
	for _, c := range concepts {
		if frequency[c] >= repetitionThreshold {
			repeated = append(repeated, c)
		}
	}

	if len(concepts) == 0 {
		return 1.0, nil
	}

	ratio := float64(len(repeated)) / float64(len(concepts))
	penalty := 1.0 - ratio*0.5
	if penalty < 0.5 {
		penalty = 0.5
	}
	return penalty, repeated
}

// SummarizeLogs joins logs with a separator for AI consumption, truncating
// at a log boundary when the combined text exceeds maxLength.
func SummarizeLogs(logs []string, maxLength int) string {
	combined := strings.Join(logs, "\n---\n")
	if len(combined) <= maxLength {
		return combined
	}

	truncated := combined[:maxLength]
	if lastBreak := strings.LastIndex(truncated, "\n---\n"); lastBreak > maxLength/2 {
		truncated = truncated[:lastBreak]
	}
	return truncated + "\n[... additional logs truncated ...]"
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime estimates reading time in minutes at the given words-per-minute
// pace, never below one minute.
func ReadingTime(text string, wpm int) int {
	minutes := WordCount(text) / wpm
	if minutes < 1 {
		return 1
	}
	return minutes
}

// FormatConcepts renders a concept list for embed display, showing at most
// maxDisplay entries.
func FormatConcepts(concepts []string, maxDisplay int) string {
	if len(concepts) == 0 {
		return "None detected"
	}

	displayed := concepts
	if len(displayed) > maxDisplay {
		displayed = displayed[:maxDisplay]
	}

	parts := make([]string, len(displayed))
	for i, c := range displayed {
		parts[i] = "`" + c + "`"
	}
	formatted := strings.Join(parts, ", ")

	if len(concepts) > maxDisplay {
		formatted += fmt.Sprintf(" +%d more", len(concepts)-maxDisplay)
	}
	return formatted
}

// Report is the composite result of analyzing a single message.
type Report struct {
	Qualifies        bool
	Reason           string
	IsDuplicate      bool
	DepthScore       int
	TechnicalTerms   []string
	PrimaryTopic     string
	TopicConfidences map[string]float64
	Concepts         []string
	WordCount        int
}

// Analyze runs the full local pipeline on a raw message: clean, qualify,
// dedupe against recent logs, score depth, classify, and extract concepts.
func Analyze(content string, existingLogs []string, minLength int) Report {
	cleaned := CleanContent(content)

	qualifies, reason := Qualifies(cleaned, minLength)
	isDup := IsDuplicate(cleaned, existingLogs)
	depth, terms := TechnicalDepth(cleaned)
	topic, confidences := ClassifyTopic(cleaned)
	concepts := ExtractConcepts(cleaned, 10)

	finalReason := reason
	if qualifies && isDup {
		finalReason = "Duplicate"
	}

	return Report{
		Qualifies:        qualifies && !isDup,
		Reason:           finalReason,
		IsDuplicate:      isDup,
		DepthScore:       depth,
		TechnicalTerms:   terms,
		PrimaryTopic:     topic,
		TopicConfidences: confidences,
		Concepts:         concepts,
		WordCount:        WordCount(cleaned),
	}
}
