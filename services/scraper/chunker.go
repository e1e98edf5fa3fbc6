package scraper

import (
	"regexp"
	"strings"
)

var (
	paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)
	sentenceEndRe    = regexp.MustCompile(`[.!?]+(\s+|$)`)
)

// Chunk splits text into passages sized for retrieval. Passages target
// maxChunkSize characters; a paragraph longer than twice that is broken at
// sentence boundaries first. A sentence or unpunctuated paragraph that alone
// exceeds the bound is kept whole rather than truncated.
func Chunk(text string, maxChunkSize int) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	if maxChunkSize <= 0 {
		maxChunkSize = 500
	}

	var paragraphs []string
	for _, p := range paragraphSplitRe.Split(text, -1) {
		// collapse whitespace runs inside the paragraph
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []string
	current := ""

	flush := func() {
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current = ""
	}

	for _, paragraph := range paragraphs {
		if len(paragraph) > maxChunkSize*2 {
			for _, sentence := range splitSentences(paragraph) {
				if len(current)+len(sentence) <= maxChunkSize {
					current += " " + sentence
				} else {
					flush()
					current = sentence
				}
			}
		} else if len(current)+len(paragraph) <= maxChunkSize {
			current += " " + paragraph
		} else {
			flush()
			current = paragraph
		}
	}
	flush()

	return chunks
}

// splitSentences breaks a paragraph at end-of-sentence punctuation followed by
// whitespace. Text without such punctuation comes back as a single element.
func splitSentences(paragraph string) []string {
	bounds := sentenceEndRe.FindAllStringIndex(paragraph, -1)
	if len(bounds) == 0 {
		return []string{paragraph}
	}

	var sentences []string
	start := 0
	for _, b := range bounds {
		s := strings.TrimSpace(paragraph[start:b[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		start = b[1]
	}
	if rest := strings.TrimSpace(paragraph[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
