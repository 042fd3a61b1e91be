// Package collect merges the output of a site's extraction strategies into
// one ordered, duplicate-free message list.
package collect

import (
	"github.com/hazyhaar/quickscroll/dom"
	"github.com/hazyhaar/quickscroll/internal/site"
)

// Record is one user message. Text is trimmed and never empty.
type Record struct {
	Text string
	Node dom.Element
}

// Collect runs the adapter's strategies in priority order and keeps the
// first node seen for each distinct text. Order is first-seen across
// strategies: every record of the first strategy, then the novel ones of
// the next, and so on. That is not necessarily document order.
func Collect(a site.Adapter, root dom.Element) []Record {
	var out []Record
	seen := make(map[string]struct{})
	for _, nodes := range site.ExtractMessages(a, root) {
		for _, n := range nodes {
			text := a.ExtractText(n)
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			out = append(out, Record{Text: text, Node: n})
		}
	}
	return out
}

// Texts returns the record texts in order.
func Texts(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}
