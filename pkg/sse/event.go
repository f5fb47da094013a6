// Package sse reads Server-Sent Events from a byte stream. The streaming
// completion clients use it to consume provider responses; there is no
// writer or server side here.
//
// Wire format: https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event is one parsed SSE event, delimited by a blank line in the stream.
type Event struct {
	// Type carries the "event:" field. Empty means the default "message"
	// type.
	Type string

	// Data joins all "data:" lines of the event with "\n".
	Data string

	// ID carries the "id:" field when present.
	ID string
}
