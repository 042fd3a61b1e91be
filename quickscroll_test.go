package quickscroll

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/quickscroll/internal/htmldom"
	"github.com/hazyhaar/quickscroll/internal/loop"
	"github.com/hazyhaar/quickscroll/internal/site"
	"github.com/hazyhaar/quickscroll/internal/widget"
)

const chatPage = `<html><body><main>
<div role="presentation"><div id="thread">
<article data-testid="conversation-turn-1"><h5 class="sr-only">Bạn đã nói:</h5>
  <div data-message-author-role="user"><div class="whitespace-pre-wrap">How do I read a YAML file in Go?</div></div></article>
<article data-testid="conversation-turn-2"><h5 class="sr-only">ChatGPT đã nói:</h5>
  <div data-message-author-role="assistant">Use gopkg.in/yaml.v3.</div></article>
<article data-testid="conversation-turn-3"><h5 class="sr-only">Bạn đã nói:</h5>
  <div data-message-author-role="user"><div class="whitespace-pre-wrap">And write one back?</div></div></article>
</div></div></main></body></html>`

const geminiPage = `<html><body><div id="app-root"><main><side-navigation-v2><bard-sidenav-container><bard-sidenav-content>
<div class="content-wrapper">
<div id="user-query-content-0"><div class="query-text"><p>first line</p><p>second line</p></div></div>
<div id="user-query-content-1"><div class="query-text"><p>another query</p></div></div>
</div>
</bard-sidenav-content></bard-sidenav-container></side-navigation-v2></main></div></body></html>`

type fixture struct {
	nav   *Navigator
	loop  *loop.Loop
	clock *loop.Fake
	doc   *htmldom.Document
	ctx   context.Context
}

func newFixture(t *testing.T, page string, a Adapter) *fixture {
	t.Helper()
	clock := loop.NewFake(time.Unix(0, 0))
	l := loop.New(clock, nil)
	doc, err := htmldom.ParseString(page, htmldom.WithPost(l.Post))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	go l.Run(ctx)

	return &fixture{nav: NewNavigator(doc, a, l, DefaultConfig(), nil), loop: l, clock: clock, doc: doc, ctx: ctx}
}

// sync waits until every callback queued so far has run.
func (f *fixture) sync(t *testing.T) {
	t.Helper()
	if err := f.loop.Call(f.ctx, func() {}); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) advance(t *testing.T, d time.Duration) {
	t.Helper()
	f.sync(t)
	f.clock.Advance(d)
	f.sync(t)
}

func (f *fixture) ready(t *testing.T) {
	t.Helper()
	f.nav.Trigger(DOMContentLoaded)
	f.advance(t, 500*time.Millisecond)
	state, err := f.nav.State(f.ctx)
	if err != nil || state != "ready" {
		t.Fatalf("state = %q, err = %v", state, err)
	}
}

func (f *fixture) count(t *testing.T, sel string) int {
	t.Helper()
	var n int
	if err := f.loop.Call(f.ctx, func() { n = len(f.doc.QuerySelectorAll(sel)) }); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestNavigator_TriggersInitOnce(t *testing.T) {
	f := newFixture(t, chatPage, site.NewChatGPT())

	f.nav.Trigger(DOMContentLoaded)
	f.nav.Trigger(Load)
	f.nav.Trigger(AlreadyComplete)
	f.advance(t, 499*time.Millisecond)
	if state, _ := f.nav.State(f.ctx); state != "initializing" {
		t.Fatalf("state before the first delay = %q", state)
	}
	f.advance(t, 2*time.Second)

	if state, _ := f.nav.State(f.ctx); state != "ready" {
		t.Fatalf("state = %q", state)
	}
	if n := f.count(t, "#"+widget.ButtonID); n != 1 {
		t.Errorf("buttons = %d, want 1", n)
	}
}

func TestNavigator_MessagesAndJump(t *testing.T) {
	f := newFixture(t, chatPage, site.NewChatGPT())

	if _, err := f.nav.Jump(f.ctx, 0); !errors.Is(err, ErrNotReady) {
		t.Fatalf("jump before init: err = %v", err)
	}
	f.ready(t)

	msgs, err := f.nav.Messages(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"How do I read a YAML file in Go?", "And write one back?"}
	if len(msgs) != len(want) {
		t.Fatalf("messages = %+v", msgs)
	}
	for i, m := range msgs {
		if m.Index != i || m.Text != want[i] {
			t.Errorf("message %d = %+v", i, m)
		}
	}

	got, err := f.nav.Jump(f.ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != want[1] {
		t.Errorf("jumped to %+v", got)
	}
	if n := f.count(t, "."+widget.HighlightClass); n != 1 {
		t.Errorf("highlighted = %d, want 1", n)
	}
	f.advance(t, 2*time.Second)
	if n := f.count(t, "."+widget.HighlightClass); n != 0 {
		t.Errorf("highlight kept after 2s: %d", n)
	}

	if _, err := f.nav.Jump(f.ctx, 7); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("jump 7: err = %v", err)
	}
}

func TestNavigator_Toggle(t *testing.T) {
	f := newFixture(t, chatPage, site.NewChatGPT())
	f.ready(t)

	if err := f.nav.Toggle(f.ctx); err != nil {
		t.Fatal(err)
	}
	if n := f.count(t, "#"+widget.ContentID+" ."+widget.EntryClass); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
	if n := f.count(t, "#"+widget.PanelID+"."+widget.HiddenClass); n != 0 {
		t.Error("panel hidden after toggle")
	}
}

func TestNavigator_Reset(t *testing.T) {
	f := newFixture(t, chatPage, site.NewChatGPT())
	f.ready(t)

	f.nav.Reset()
	if state, _ := f.nav.State(f.ctx); state != "uninitialized" {
		t.Fatalf("state after reset = %q", state)
	}
	if _, err := f.nav.Jump(f.ctx, 0); !errors.Is(err, ErrNotReady) {
		t.Errorf("jump after reset: err = %v", err)
	}
}

func TestNavigator_CallCancelled(t *testing.T) {
	clock := loop.NewFake(time.Unix(0, 0))
	l := loop.New(clock, nil)
	doc, _ := htmldom.ParseString(chatPage, htmldom.WithPost(l.Post))
	nav := NewNavigator(doc, site.NewChatGPT(), l, nil, nil)

	// The loop is never run.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := nav.Messages(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestExtractHTML(t *testing.T) {
	msgs, err := ExtractHTML(strings.NewReader(chatPage), site.NewChatGPT())
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Text != "How do I read a YAML file in Go?" {
		t.Errorf("chatgpt: %+v", msgs)
	}

	msgs, err = ExtractHTML(strings.NewReader(geminiPage), site.NewGemini())
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Text != "first line\nsecond line" || msgs[1].Index != 1 {
		t.Errorf("gemini: %+v", msgs)
	}

	if _, err := ExtractHTML(strings.NewReader("<html><body></body></html>"), site.NewGemini()); !errors.Is(err, ErrRootNotFound) {
		t.Errorf("no root: err = %v", err)
	}
}

func TestAdapterFor(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name, url string
		want      string
		wantErr   bool
	}{
		{"", "https://chatgpt.com/c/abc", site.NameChatGPT, false},
		{"", "https://gemini.google.com/app/1", site.NameGemini, false},
		{"gemini", "", site.NameGemini, false},
		{"", "https://example.com/", "", true},
		{"copilot", "", "", true},
	}
	for _, tt := range tests {
		a, err := AdapterFor(tt.name, tt.url, cfg)
		if tt.wantErr {
			if !errors.Is(err, ErrNoAdapter) {
				t.Errorf("AdapterFor(%q, %q): err = %v, want ErrNoAdapter", tt.name, tt.url, err)
			}
			continue
		}
		if err != nil || a.Name() != tt.want {
			t.Errorf("AdapterFor(%q, %q) = %v, %v", tt.name, tt.url, a, err)
		}
	}
}
