package sse

import (
	"bufio"
	"io"
	"strings"
)

// Reader parses SSE events from a source io.Reader, one event per Next call.
type Reader struct {
	scanner *bufio.Scanner

	// current accumulates fields for the event being built.
	current *Event
	hasData bool
}

// NewReader returns a Reader over src. The line buffer tolerates events up
// to 1 MiB, which covers the largest completion deltas providers emit.
func NewReader(src io.Reader) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &Reader{
		scanner: scanner,
		current: &Event{},
	}
}

// Next returns the next parsed event, blocking until one is complete
// (terminated by a blank line). It returns nil, nil when the source is
// exhausted; a final in-progress event without a trailing blank line is
// still yielded.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		if raw == "" {
			if ev := r.flush(); ev != nil {
				return ev, nil
			}
			// Leading blank lines and keep-alive newlines.
			continue
		}

		// Comment lines start with ':'.
		if strings.HasPrefix(raw, ":") {
			continue
		}

		r.parseLine(raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if ev := r.flush(); ev != nil {
		return ev, nil
	}

	return nil, nil
}

// flush returns the accumulated event and resets state, or nil when no
// fields have been seen since the last event.
func (r *Reader) flush() *Event {
	if !r.hasData {
		return nil
	}

	ev := r.current
	r.current = &Event{}
	r.hasData = false
	return ev
}

// parseLine folds one non-empty, non-comment line into the current event.
// An SSE line has the form "field:value" where a single space after the
// colon is optional and stripped.
func (r *Reader) parseLine(line string) {
	var field, value string

	if before, after, ok := strings.Cut(line, ":"); ok {
		field = before
		value = strings.TrimPrefix(after, " ")
	} else {
		// No colon: the whole line is a field name with an empty value.
		field = line
	}

	switch field {
	case "data":
		if r.hasData && r.current.Data != "" {
			// Successive data fields are joined with "\n".
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.hasData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	default:
		// "retry" and unknown fields are ignored; reconnect timing is a
		// transport concern the completion clients don't use.
	}
}
