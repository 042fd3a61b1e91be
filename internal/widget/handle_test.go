package widget

import (
	"testing"

	"github.com/hazyhaar/quickscroll/internal/htmldom"
	"github.com/hazyhaar/quickscroll/internal/site"
)

func TestMount(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><main></main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewChatGPT()
	root := a.LocateRoot(doc)

	h, created, err := Mount(doc, root, a)
	if err != nil || !created || h == nil {
		t.Fatalf("Mount: h=%v created=%v err=%v", h, created, err)
	}
	if h.Visible() {
		t.Error("new panel reported visible")
	}
	for _, id := range []string{StyleID, ButtonID, PanelID, HeaderID, ContentID} {
		if doc.ElementByID(id) == nil {
			t.Errorf("missing #%s", id)
		}
	}
	if doc.ElementByID(HeaderNoteID) != nil {
		t.Error("chatgpt has no header note")
	}
	if got := doc.ElementByID(ButtonID).TextContent(); got != "⚡" {
		t.Errorf("button label = %q", got)
	}

	h2, created, err := Mount(doc, root, a)
	if err != nil || created || h2 != nil {
		t.Fatalf("second Mount: h=%v created=%v err=%v", h2, created, err)
	}
	if n := len(doc.QuerySelectorAll("#" + ButtonID)); n != 1 {
		t.Errorf("buttons = %d, want 1", n)
	}
}

func TestMount_HeaderNote(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><div id="shell"></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewGemini()

	if _, _, err := Mount(doc, doc.ElementByID("shell"), a); err != nil {
		t.Fatal(err)
	}
	note := doc.ElementByID(HeaderNoteID)
	if note == nil {
		t.Fatal("missing header note")
	}
	if got := note.TextContent(); got != a.HeaderNote() {
		t.Errorf("note = %q", got)
	}
}

func TestHandle_SetVisible(t *testing.T) {
	doc, _ := htmldom.ParseString(`<html><body><main></main></body></html>`)
	a := site.NewChatGPT()
	h, _, err := Mount(doc, a.LocateRoot(doc), a)
	if err != nil {
		t.Fatal(err)
	}

	if err := h.setVisible(true); err != nil {
		t.Fatal(err)
	}
	if h.Panel.HasClass(HiddenClass) || !h.Visible() {
		t.Error("open: panel still hidden")
	}
	if err := h.setVisible(false); err != nil {
		t.Fatal(err)
	}
	if !h.Panel.HasClass(HiddenClass) || h.Visible() {
		t.Error("close: panel visible")
	}
}
