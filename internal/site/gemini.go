package site

import (
	"strings"

	"github.com/hazyhaar/quickscroll/dom"
)

// NameGemini identifies the Gemini adapter.
const NameGemini = "gemini"

const (
	geminiRoot    = "#app-root > main > side-navigation-v2 > bard-sidenav-container > bard-sidenav-content"
	geminiQuery   = `[id^="user-query-content-"] div.query-text`
	geminiWrapper = ".content-wrapper"
)

// Gemini renders each user query as a div of paragraphs, one per line.
type Gemini struct{}

// NewGemini creates the adapter.
func NewGemini() *Gemini { return &Gemini{} }

func (g *Gemini) Name() string { return NameGemini }

func (g *Gemini) LocateRoot(doc dom.Document) dom.Element {
	return doc.QuerySelector(geminiRoot)
}

func (g *Gemini) Strategies() []Strategy {
	return []Strategy{
		{Name: "user-query", Find: func(root dom.Element) []dom.Element {
			return root.QuerySelectorAll(geminiQuery)
		}},
	}
}

// ExtractText keeps one line per paragraph.
func (g *Gemini) ExtractText(node dom.Element) string {
	var sb strings.Builder
	for _, p := range node.QuerySelectorAll("p") {
		sb.WriteString(strings.TrimSpace(p.TextContent()))
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}

func (g *Gemini) ObserveTarget(root dom.Element) dom.Element {
	if w := root.QuerySelector(geminiWrapper); w != nil {
		return w
	}
	return root
}

func (g *Gemini) ScrollContainer() string { return "user-query-content" }

func (g *Gemini) HeaderNote() string { return "Note: Gemini may not load all old messages." }
