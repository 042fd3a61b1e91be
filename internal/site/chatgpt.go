package site

import (
	"strings"

	"github.com/hazyhaar/quickscroll/dom"
)

// NameChatGPT identifies the ChatGPT adapter.
const NameChatGPT = "chatgpt"

// DefaultTurnMarker is the screen-reader heading ChatGPT puts on user turns
// in the Vietnamese locale ("You said:").
const DefaultTurnMarker = "Bạn đã nói:"

const (
	chatgptRoot         = "main"
	chatgptAuthorRole   = `[data-message-author-role="user"]`
	chatgptTurn         = `article[data-testid^="conversation-turn-"]`
	chatgptTurnHeading  = "h5.sr-only"
	chatgptPreformatted = ".whitespace-pre-wrap"
	chatgptPresentation = `div[role="presentation"]`
)

// ChatGPT exposes user messages through two independent, sometimes
// incomplete signals: an author-role attribute and a turn heading. Both are
// queried and merged by the collector.
type ChatGPT struct {
	markers []string
}

// NewChatGPT creates the adapter. With no markers, DefaultTurnMarker is used.
func NewChatGPT(markers ...string) *ChatGPT {
	if len(markers) == 0 {
		markers = []string{DefaultTurnMarker}
	}
	return &ChatGPT{markers: markers}
}

func (c *ChatGPT) Name() string { return NameChatGPT }

func (c *ChatGPT) LocateRoot(doc dom.Document) dom.Element {
	return doc.QuerySelector(chatgptRoot)
}

func (c *ChatGPT) Strategies() []Strategy {
	return []Strategy{
		{Name: "author-role", Find: func(root dom.Element) []dom.Element {
			return root.QuerySelectorAll(chatgptAuthorRole)
		}},
		{Name: "turn-heading", Find: c.userTurns},
	}
}

func (c *ChatGPT) userTurns(root dom.Element) []dom.Element {
	var out []dom.Element
	for _, article := range root.QuerySelectorAll(chatgptTurn) {
		h := article.QuerySelector(chatgptTurnHeading)
		if h == nil {
			continue
		}
		text := h.TextContent()
		for _, m := range c.markers {
			if strings.Contains(text, m) {
				out = append(out, article)
				break
			}
		}
	}
	return out
}

// ExtractText prefers the preformatted message body and falls back to the
// whole node.
func (c *ChatGPT) ExtractText(node dom.Element) string {
	if pre := node.QuerySelector(chatgptPreformatted); pre != nil {
		if text := pre.TextContent(); text != "" {
			return strings.TrimSpace(text)
		}
	}
	return strings.TrimSpace(node.TextContent())
}

func (c *ChatGPT) ObserveTarget(root dom.Element) dom.Element {
	if p := root.QuerySelector(chatgptPresentation); p != nil {
		return p
	}
	return root
}

func (c *ChatGPT) ScrollContainer() string { return "article" }

func (c *ChatGPT) HeaderNote() string { return "" }
