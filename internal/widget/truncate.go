package widget

import "strings"

const (
	// DefaultWordLimit and DefaultCharLimit bound an entry's visible text.
	DefaultWordLimit = 10
	DefaultCharLimit = 50

	ellipsis = "..."
)

// Truncate shortens text for a panel entry. Text within charLimit runes is
// returned as is. Otherwise, with at most wordLimit words the first
// charLimit runes are kept; with more, the shorter of the first wordLimit
// words and the first charLimit runes is kept. An ellipsis is appended.
func Truncate(text string, wordLimit, charLimit int) string {
	runes := []rune(text)
	if len(runes) <= charLimit {
		return text
	}
	charLimited := string(runes[:charLimit])

	words := strings.Fields(text)
	if len(words) <= wordLimit {
		return charLimited + ellipsis
	}

	wordLimited := strings.Join(words[:wordLimit], " ")
	if len([]rune(wordLimited)) < charLimit {
		return wordLimited + ellipsis
	}
	return charLimited + ellipsis
}
