package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

var sample = Report{
	Site:      "chatgpt",
	URL:       "https://chatgpt.com/c/1",
	Timestamp: 1700000000000,
	Messages:  []Message{{Index: 0, Text: "hello"}, {Index: 1, Text: "again"}},
}

func TestStdout(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	if err := s.Send(context.Background(), sample); err != nil {
		t.Fatal(err)
	}
	if err := s.Send(context.Background(), Report{Site: "gemini"}); err != nil {
		t.Fatal(err)
	}

	dec := json.NewDecoder(&buf)
	var first struct {
		Type string `json:"type"`
		Data Report `json:"data"`
	}
	if err := dec.Decode(&first); err != nil {
		t.Fatal(err)
	}
	if first.Type != "messages" || len(first.Data.Messages) != 2 || first.Data.Messages[1].Text != "again" {
		t.Errorf("first line: %+v", first)
	}
	if !dec.More() {
		t.Error("want a second JSON line")
	}
}

func TestWebhook_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type %q", r.Header.Get("Content-Type"))
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond))
	if err := w.Send(context.Background(), sample); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestWebhook_Exhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond), WithWebhookRetries(2))
	if err := w.Send(context.Background(), sample); err == nil {
		t.Fatal("want error")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

type failing struct{ closed bool }

func (f *failing) Send(context.Context, Report) error { return errors.New("down") }
func (f *failing) Close() error {
	f.closed = true
	return nil
}

func TestMulti(t *testing.T) {
	var buf bytes.Buffer
	f := &failing{}
	m := Multi{NewStdout(&buf), f}

	if err := m.Send(context.Background(), sample); err == nil {
		t.Error("want joined error")
	}
	if buf.Len() == 0 {
		t.Error("healthy sink skipped after a failure")
	}
	if err := m.Close(); err != nil || !f.closed {
		t.Errorf("Close: err=%v closed=%v", err, f.closed)
	}
}
