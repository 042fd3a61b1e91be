package collect

import (
	"reflect"
	"testing"

	"github.com/hazyhaar/quickscroll/internal/htmldom"
	"github.com/hazyhaar/quickscroll/internal/site"
)

func TestCollect_ChatGPTMergeOrder(t *testing.T) {
	// Three role-tagged messages a, b, c and two user turns b, d: the turn
	// duplicate collapses and d is appended after the role-tagged ones.
	doc, err := htmldom.ParseString(`<html><body><main>
<article data-testid="conversation-turn-2"><h5 class="sr-only">Bạn đã nói:</h5><div class="whitespace-pre-wrap">d</div></article>
<div data-message-author-role="user"><div class="whitespace-pre-wrap">a</div></div>
<div data-message-author-role="user"><div class="whitespace-pre-wrap"> b </div></div>
<div data-message-author-role="user"><div class="whitespace-pre-wrap">c</div></div>
<article data-testid="conversation-turn-4"><h5 class="sr-only">Bạn đã nói:</h5><div class="whitespace-pre-wrap">b</div></article>
</main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewChatGPT()

	got := Texts(Collect(a, a.LocateRoot(doc)))
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect: got %q, want %q", got, want)
	}
}

func TestCollect_DuplicateTextsCollapse(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><main>
<div data-message-author-role="user">same</div>
<div data-message-author-role="user">  same  </div>
<div data-message-author-role="user">Same</div>
</main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewChatGPT()

	recs := Collect(a, a.LocateRoot(doc))
	got := Texts(recs)
	want := []string{"same", "Same"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collect: got %q, want %q", got, want)
	}
	// First-seen node wins.
	first := doc.QuerySelectorAll(`[data-message-author-role="user"]`)[0]
	if htmldom.Node(recs[0].Node) != htmldom.Node(first) {
		t.Error("duplicate text did not keep the first node")
	}

	// Collecting again yields the same list.
	again := Texts(Collect(a, a.LocateRoot(doc)))
	if !reflect.DeepEqual(again, want) {
		t.Errorf("second Collect: got %q", again)
	}
}

func TestCollect_EmptyTextDiscarded(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><main>
<div data-message-author-role="user">   </div>
<div data-message-author-role="user"><img src="x.png"></div>
</main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewChatGPT()

	if got := Collect(a, a.LocateRoot(doc)); len(got) != 0 {
		t.Errorf("Collect: got %d records, want 0", len(got))
	}
}

func TestCollect_NoMatchesAndNilRoot(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><main><p>nothing here</p></main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewGemini()

	if got := Collect(a, doc.QuerySelector("main")); len(got) != 0 {
		t.Errorf("no matches: got %d records", len(got))
	}
	if got := Collect(a, nil); got != nil {
		t.Errorf("nil root: got %v, want nil", got)
	}
}

func TestCollect_GeminiMultiline(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><div id="app-root"><main><side-navigation-v2><bard-sidenav-container><bard-sidenav-content>
<div class="content-wrapper">
<user-query-content><div id="user-query-content-0"><div class="query-text"><p> first line </p><p>second line</p></div></div></user-query-content>
<user-query-content><div id="user-query-content-1"><div class="query-text"><p>first line</p><p>second line</p></div></div></user-query-content>
<user-query-content><div id="user-query-content-2"><div class="query-text"><p>other</p></div></div></user-query-content>
</div>
</bard-sidenav-content></bard-sidenav-container></side-navigation-v2></main></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	a := site.NewGemini()

	got := Texts(Collect(a, a.LocateRoot(doc)))
	want := []string{"first line\nsecond line", "other"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect: got %q, want %q", got, want)
	}
}
