package monitor

import (
	"testing"
	"time"

	"github.com/hazyhaar/quickscroll/internal/htmldom"
	"github.com/hazyhaar/quickscroll/internal/loop"
	"github.com/hazyhaar/quickscroll/internal/site"
)

const page = `<html><body><main>
<div role="presentation"><div id="thread"></div></div>
<div id="sidebar"></div>
<div id="quick-scroll-panel"><div id="quick-scroll-content"></div></div>
</main></body></html>`

func TestMonitor_RefreshOnlyWhenVisible(t *testing.T) {
	l := loop.New(loop.NewFake(time.Unix(0, 0)), nil)
	doc, err := htmldom.ParseString(page, htmldom.WithPost(l.Post))
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewChatGPT()

	visible := false
	refreshes := 0
	m, err := Observe(doc, a.LocateRoot(doc), a, Options{
		Visible:      func() bool { return visible },
		Refresh:      func() { refreshes++ },
		IgnoreWithin: []string{"#quick-scroll-panel"},
	})
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	defer m.Stop()

	thread := doc.ElementByID("thread")

	doc.AppendHTML(thread, `<div data-message-author-role="user">hidden</div>`)
	l.Drain()
	if refreshes != 0 {
		t.Fatalf("refreshed while hidden: %d", refreshes)
	}

	visible = true
	for i := 0; i < 3; i++ {
		doc.AppendHTML(thread, `<div data-message-author-role="user">burst</div>`)
	}
	l.Drain()
	if refreshes != 3 {
		t.Errorf("burst of 3 while visible: %d refreshes, want 3", refreshes)
	}

	// Outside the presentation div: not observed.
	doc.AppendHTML(doc.ElementByID("sidebar"), "<p>x</p>")
	// Inside the widget: ignored.
	doc.AppendHTML(doc.ElementByID("quick-scroll-content"), "<p>entry</p>")
	l.Drain()
	if refreshes != 3 {
		t.Errorf("unrelated mutations refreshed: %d", refreshes)
	}
	if m.Batches() != 4 || m.Refreshes() != 3 {
		t.Errorf("counters: batches=%d refreshes=%d", m.Batches(), m.Refreshes())
	}

	m.Stop()
	doc.AppendHTML(thread, "<p>after stop</p>")
	l.Drain()
	if m.Batches() != 4 {
		t.Errorf("batch after Stop: %d", m.Batches())
	}
}

func TestMonitor_FallsBackToRoot(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><div id="app-root"><main><side-navigation-v2><bard-sidenav-container><bard-sidenav-content>
<div id="inner"></div>
</bard-sidenav-content></bard-sidenav-container></side-navigation-v2></main></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewGemini()

	refreshes := 0
	m, err := Observe(doc, a.LocateRoot(doc), a, Options{
		Visible: func() bool { return true },
		Refresh: func() { refreshes++ },
	})
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	defer m.Stop()

	doc.AppendHTML(doc.ElementByID("inner"), "<p>x</p>")
	if refreshes != 1 {
		t.Errorf("root fallback: %d refreshes, want 1", refreshes)
	}
}

func TestMonitor_NilRoot(t *testing.T) {
	doc, _ := htmldom.ParseString("<html></html>")
	if _, err := Observe(doc, nil, site.NewGemini(), Options{}); err == nil {
		t.Error("nil root: want error")
	}
}
