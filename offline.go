package quickscroll

import (
	"fmt"
	"io"

	"github.com/hazyhaar/quickscroll/internal/collect"
	"github.com/hazyhaar/quickscroll/internal/htmldom"
)

// ExtractHTML lists the user messages of a saved conversation page.
func ExtractHTML(r io.Reader, a Adapter) ([]Message, error) {
	doc, err := htmldom.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("quickscroll: extract: %w", err)
	}
	root := a.LocateRoot(doc)
	if root == nil {
		return nil, fmt.Errorf("%w (%s)", ErrRootNotFound, a.Name())
	}
	return toMessages(collect.Collect(a, root)), nil
}
