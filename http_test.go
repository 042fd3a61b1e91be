package quickscroll

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/quickscroll/internal/site"
)

func do(t *testing.T, srv *httptest.Server, method, path string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Errorf("%s %s: no request id", method, path)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, body
}

func TestRoutes(t *testing.T) {
	f := newFixture(t, chatPage, site.NewChatGPT())
	srv := httptest.NewServer(f.nav.Routes())
	defer srv.Close()

	code, body := do(t, srv, http.MethodGet, "/health")
	if code != http.StatusOK || body["widget"] != "uninitialized" || body["site"] != "chatgpt" {
		t.Errorf("health: %d %v", code, body)
	}

	code, body = do(t, srv, http.MethodPost, "/messages/0/jump")
	if code != http.StatusConflict {
		t.Errorf("jump before init: %d %v", code, body)
	}

	f.ready(t)

	code, body = do(t, srv, http.MethodGet, "/messages")
	if code != http.StatusOK {
		t.Fatalf("messages: %d %v", code, body)
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages: %v", body)
	}
	first, _ := msgs[0].(map[string]any)
	if first["text"] != "How do I read a YAML file in Go?" || first["index"] != float64(0) {
		t.Errorf("first message: %v", first)
	}

	code, body = do(t, srv, http.MethodPost, "/messages/1/jump")
	if code != http.StatusOK || body["text"] != "And write one back?" {
		t.Errorf("jump: %d %v", code, body)
	}

	code, _ = do(t, srv, http.MethodPost, "/messages/9/jump")
	if code != http.StatusNotFound {
		t.Errorf("jump out of range: %d", code)
	}
	code, _ = do(t, srv, http.MethodPost, "/messages/first/jump")
	if code != http.StatusBadRequest {
		t.Errorf("jump bad index: %d", code)
	}
}
