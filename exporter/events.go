package exporter

import (
	"context"

	"github.com/raushankrgupta/shopify-product-exporter/models"
)

// EventType discriminates the events of one export run.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is sent to the caller while an export runs. A run sends any number of
// progress events followed by exactly one complete or error event.
type Event struct {
	Type     EventType        `json:"type"`
	Current  int              `json:"current"`
	Total    int              `json:"total"`
	Count    int              `json:"count,omitempty"`
	Filename string           `json:"filename,omitempty"`
	CSV      string           `json:"csv,omitempty"`
	Error    string           `json:"error,omitempty"`
	Products []models.Product `json:"-"`
}

// emitter delivers events to an optional channel owned by the caller.
type emitter struct {
	ctx    context.Context
	events chan<- Event
}

// progress never blocks: when the receiver is behind the update is dropped.
func (e *emitter) progress(current, total int) {
	if e.events == nil {
		return
	}
	select {
	case e.events <- Event{Type: EventProgress, Current: current, Total: total}:
	default:
	}
}

// terminal blocks until the receiver takes the event or the run's context
// ends.
func (e *emitter) terminal(ev Event) {
	if e.events == nil {
		return
	}
	select {
	case e.events <- ev:
	case <-e.ctx.Done():
	}
}
