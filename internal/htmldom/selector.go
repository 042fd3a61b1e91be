package htmldom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Supported CSS selector subset:
//   - tag:                 "article", "user-query-content"
//   - .class (repeatable): ".content", "div.query-text.large"
//   - #id:                 "#app-root"
//   - [attr]               "div[data-content]"
//   - [attr=val]           `[data-message-author-role="user"]`
//   - [attr^=val]          `[id^="user-query-content-"]`
//   - [attr*=val]          `[class*="turn"]`
//   - descendant (space) and child (">") combinators
//   - groups separated by ","

type combinator int

const (
	combDescendant combinator = iota
	combChild
)

type attrMatch struct {
	key string
	op  byte // 0 = presence, '=' exact, '^' prefix, '*' substring
	val string
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type step struct {
	comb combinator // relation to the previous step
	sel  compound
}

type selector []step

type selectorGroup []selector

// compile parses a selector group. Malformed input yields an error.
func compile(src string) (selectorGroup, error) {
	var group selectorGroup
	for _, part := range splitGroup(src) {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("htmldom: empty selector in %q", src)
		}
		sel, err := parseSelector(part)
		if err != nil {
			return nil, err
		}
		group = append(group, sel)
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("htmldom: empty selector")
	}
	return group, nil
}

// splitGroup splits on commas outside brackets and quotes.
func splitGroup(src string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, src[start:i])
			start = i + 1
		}
	}
	return append(parts, src[start:])
}

func parseSelector(src string) (selector, error) {
	var sel selector
	comb := combDescendant
	i := 0
	for i < len(src) {
		switch c := src[i]; {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '>':
			if len(sel) == 0 {
				return nil, fmt.Errorf("htmldom: leading combinator in %q", src)
			}
			comb = combChild
			i++
		default:
			cp, n, err := parseCompound(src[i:])
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, fmt.Errorf("htmldom: unexpected %q in %q", c, src)
			}
			sel = append(sel, step{comb: comb, sel: cp})
			comb = combDescendant
			i += n
		}
	}
	if len(sel) == 0 {
		return nil, fmt.Errorf("htmldom: empty selector %q", src)
	}
	return sel, nil
}

// parseCompound parses one compound selector and returns the bytes consumed.
func parseCompound(src string) (compound, int, error) {
	var cp compound
	i := 0
	ident := func() string {
		start := i
		for i < len(src) && isIdentByte(src[i]) {
			i++
		}
		return src[start:i]
	}

	if i < len(src) && (isIdentByte(src[i]) || src[i] == '*') {
		if src[i] == '*' {
			i++
		} else {
			cp.tag = strings.ToLower(ident())
		}
	}

	for i < len(src) {
		switch src[i] {
		case '#':
			i++
			cp.id = ident()
		case '.':
			i++
			cp.classes = append(cp.classes, ident())
		case '[':
			end := strings.IndexByte(src[i:], ']')
			if end < 0 {
				return cp, 0, fmt.Errorf("htmldom: unterminated attribute in %q", src)
			}
			am, err := parseAttr(src[i+1 : i+end])
			if err != nil {
				return cp, 0, err
			}
			cp.attrs = append(cp.attrs, am)
			i += end + 1
		default:
			return cp, i, nil
		}
	}
	return cp, i, nil
}

func parseAttr(body string) (attrMatch, error) {
	var am attrMatch
	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		am.key = strings.TrimSpace(body)
		if am.key == "" {
			return am, fmt.Errorf("htmldom: empty attribute selector")
		}
		return am, nil
	}
	key := body[:eq]
	am.op = '='
	if n := len(key); n > 0 && (key[n-1] == '^' || key[n-1] == '*') {
		am.op = key[n-1]
		key = key[:n-1]
	}
	am.key = strings.TrimSpace(key)
	am.val = strings.Trim(strings.TrimSpace(body[eq+1:]), `"'`)
	return am, nil
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

// matches reports whether n matches any selector of the group.
func (g selectorGroup) matches(n *html.Node) bool {
	for _, sel := range g {
		if sel.matchAt(n, len(sel)-1) {
			return true
		}
	}
	return false
}

func (s selector) matchAt(n *html.Node, i int) bool {
	if !matchCompound(n, s[i].sel) {
		return false
	}
	if i == 0 {
		return true
	}
	switch s[i].comb {
	case combChild:
		p := parentElement(n)
		return p != nil && s.matchAt(p, i-1)
	default:
		for p := parentElement(n); p != nil; p = parentElement(p) {
			if s.matchAt(p, i-1) {
				return true
			}
		}
		return false
	}
}

func matchCompound(n *html.Node, cp compound) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if cp.tag != "" && n.Data != cp.tag {
		return false
	}
	if cp.id != "" && getAttr(n, "id") != cp.id {
		return false
	}
	if len(cp.classes) > 0 {
		have := strings.Fields(getAttr(n, "class"))
		for _, want := range cp.classes {
			if !containsString(have, want) {
				return false
			}
		}
	}
	for _, am := range cp.attrs {
		val, ok := lookupAttr(n, am.key)
		if !ok {
			return false
		}
		switch am.op {
		case '=':
			if val != am.val {
				return false
			}
		case '^':
			if !strings.HasPrefix(val, am.val) {
				return false
			}
		case '*':
			if !strings.Contains(val, am.val) {
				return false
			}
		}
	}
	return true
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

// getAttr returns the value of an attribute on a node.
func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
