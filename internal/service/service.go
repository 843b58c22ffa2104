package service

import (
	"time"

	"smart-inventory/internal/ws"
)

// Actor identifies who triggered an operation; it fills audit columns and
// the user field of broadcast events.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// Publisher receives events after a change has been committed.
type Publisher interface {
	Publish(event ws.Event)
}

// NopPublisher discards every event. The CLI uses it since no clients are connected.
type NopPublisher struct{}

func (NopPublisher) Publish(ws.Event) {}

type clock func() time.Time
