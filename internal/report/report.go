// Package report delivers collected message lists to output backends.
package report

import (
	"context"
	"errors"
)

// Message is one user message as reported outside the page.
type Message struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Report is one collection result.
type Report struct {
	Session   string    `json:"session,omitempty"`
	URL       string    `json:"url,omitempty"`
	Site      string    `json:"site"`
	Timestamp int64     `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// Sink is an output backend.
type Sink interface {
	Send(ctx context.Context, r Report) error
	Close() error
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Multi fans a report out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Send(ctx context.Context, r Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
