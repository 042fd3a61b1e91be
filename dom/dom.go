// Package dom defines the narrow document contract the quickscroll engine
// needs from a host page. Two backends implement it: a live CDP-backed one
// and an in-memory one over golang.org/x/net/html.
//
// Lookups that find nothing return a nil Element interface. Getters never
// fail: a detached or unreachable node reads as empty. Mutating calls return
// an error for the caller to log.
package dom

// Element is a borrowed reference into the host document. It may become
// stale after a mutation; check Connected before acting on an old reference.
type Element interface {
	TagName() string
	Attr(name string) (string, bool)
	SetAttr(name, value string) error
	TextContent() string
	SetTextContent(text string) error

	QuerySelector(sel string) Element
	QuerySelectorAll(sel string) []Element
	Closest(sel string) Element

	AppendChild(child Element) error
	ReplaceChildren() error

	AddClass(name string) error
	RemoveClass(name string) error
	HasClass(name string) bool

	// ScrollIntoView scrolls the element to the vertical centre of the viewport.
	ScrollIntoView() error
	Connected() bool
}

// Document is the host page.
type Document interface {
	QuerySelector(sel string) Element
	QuerySelectorAll(sel string) []Element
	ElementByID(id string) Element
	CreateElement(tag string) (Element, error)

	// Observe subscribes fn to child-list mutations anywhere under target.
	Observe(target Element, opts ObserveOptions, fn MutationFunc) (Unsubscribe, error)
	// OnClick subscribes fn to every click on the document.
	OnClick(fn ClickFunc) (Unsubscribe, error)
}

// ObserveOptions tunes a mutation subscription.
type ObserveOptions struct {
	// IgnoreWithin drops mutations whose target sits inside an element
	// matching one of these selectors.
	IgnoreWithin []string
}

// MutationBatch summarises one delivery of mutation records.
type MutationBatch struct {
	Records int
}

// MutationFunc receives mutation batches.
type MutationFunc func(MutationBatch)

// ClickFunc receives the element a click landed on.
type ClickFunc func(target Element)

// Unsubscribe cancels a subscription. Safe to call more than once.
type Unsubscribe func()
