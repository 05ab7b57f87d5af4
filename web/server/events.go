package server

import (
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/scene"
)

// ParseEvent is implemented by everything a parse streams to its session
type ParseEvent interface {
	EventType() string
}

type DiagnosticEvent struct {
	Entry diag.Entry `json:"entry"`
}

func (e DiagnosticEvent) EventType() string { return "diagnostic" }

type SummaryEvent struct {
	Summary scene.Summary `json:"summary"`
}

func (e SummaryEvent) EventType() string { return "summary" }

type ErrorEvent struct {
	Message string `json:"message"`
}

func (e ErrorEvent) EventType() string { return "error" }

type CompleteEvent struct {
	Message string `json:"message"`
	Errors  int    `json:"errors"`
}

func (e CompleteEvent) EventType() string { return "complete" }

func NewErrorEvent(err error) ErrorEvent {
	return ErrorEvent{Message: err.Error()}
}

func NewCompleteEvent(errors int) CompleteEvent {
	return CompleteEvent{Message: "Parsing finished", Errors: errors}
}

// SSEEvent is the wire form of a ParseEvent
type SSEEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func toSSE(e ParseEvent) SSEEvent {
	return SSEEvent{Type: e.EventType(), Data: e}
}
