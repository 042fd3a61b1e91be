// Package site holds the per-host adapters: where a chat site's messages
// live, how user-authored messages are found, and how their text is read.
//
// The selectors and marker strings below are the whole contract with the
// host sites. Nothing versions them; when a site changes its markup,
// extraction silently comes back empty or partial.
package site

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hazyhaar/quickscroll/dom"
)

// Adapter is a site-specific extraction strategy.
type Adapter interface {
	Name() string
	// LocateRoot returns the message container, or nil while it is absent.
	LocateRoot(doc dom.Document) dom.Element
	// Strategies returns the extraction strategies in priority order.
	Strategies() []Strategy
	// ExtractText returns the trimmed text of one message node.
	ExtractText(node dom.Element) string
	// ObserveTarget picks the element whose subtree is watched for changes.
	ObserveTarget(root dom.Element) dom.Element
	// ScrollContainer is the tag of the ancestor scrolled into view on jump.
	ScrollContainer() string
	// HeaderNote is an optional caveat shown under the panel title.
	HeaderNote() string
}

// Strategy finds candidate user-message nodes under the root.
type Strategy struct {
	Name string
	Find func(root dom.Element) []dom.Element
}

// ExtractMessages runs every strategy of a in order and returns the raw,
// possibly overlapping, node lists.
func ExtractMessages(a Adapter, root dom.Element) [][]dom.Element {
	if root == nil {
		return nil
	}
	strategies := a.Strategies()
	out := make([][]dom.Element, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, s.Find(root))
	}
	return out
}

// Names lists the known adapter names.
func Names() []string { return []string{NameChatGPT, NameGemini} }

// ByName returns the adapter registered under name.
func ByName(name string, opts Options) (Adapter, error) {
	switch strings.ToLower(name) {
	case NameChatGPT:
		return NewChatGPT(opts.TurnMarkers...), nil
	case NameGemini:
		return NewGemini(), nil
	default:
		return nil, fmt.Errorf("site: unknown adapter %q", name)
	}
}

// Detect selects the adapter for a page URL by hostname.
func Detect(rawURL string, opts Options) (Adapter, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil, false
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case hostIs(host, "chatgpt.com"), hostIs(host, "chat.openai.com"):
		return NewChatGPT(opts.TurnMarkers...), true
	case hostIs(host, "gemini.google.com"):
		return NewGemini(), true
	}
	return nil, false
}

// Options tunes adapter construction.
type Options struct {
	// TurnMarkers overrides the ChatGPT turn heading markers.
	TurnMarkers []string
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
