package translate

import (
	"context"
	"strings"
	"unicode/utf8"
)

// splitWords splits text into chunks of at most floor(base*0.7) characters
// (the 30% margin absorbs transport/encoding expansion), never breaking
// inside a word. Words longer than the safe size become their own chunk.
func splitWords(text string, base int) []string {
	safe := int(float64(base) * 0.7)

	var chunks []string
	var current string
	for _, word := range strings.Split(text, " ") {
		test := word
		if current != "" {
			test = current + " " + word
		}
		if utf8.RuneCountInString(test) > safe && current != "" {
			chunks = append(chunks, current)
			current = word
		} else {
			current = test
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// translateChunked runs fn over each chunk in sequence and joins results
// with a single space. The first chunk failure fails the whole request;
// partial results are discarded.
func translateChunked(ctx context.Context, text, from, to string, base int, provider string,
	fn func(ctx context.Context, chunk string) (string, error)) Result {

	chunks := splitWords(text, base)
	if len(chunks) == 1 {
		out, err := fn(ctx, chunks[0])
		if err != nil {
			return failure(text, from, to, provider, err)
		}
		return success(out, from, to, provider)
	}

	translated := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out, err := fn(ctx, chunk)
		if err != nil {
			return failure(text, from, to, provider, err)
		}
		translated = append(translated, out)
	}
	return success(strings.Join(translated, " "), from, to, provider)
}
