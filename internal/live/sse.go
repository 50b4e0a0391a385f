package live

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxEventSize bounds one line of the stream; full snapshots of large
// organizations arrive as a single data line
const maxEventSize = 32 * 1024 * 1024

// Event is one dispatched server-sent event
type Event struct {
	ID   string
	Name string
	Data string
}

// ReadEvents parses a text/event-stream from r and calls fn for every
// dispatched event until r ends or fails. Comment lines are ignored; an
// event without a name is a "message".
func ReadEvents(r io.Reader, fn func(Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var (
		name    string
		id      string
		data    strings.Builder
		hasData bool
	)

	dispatch := func() {
		if !hasData && name == "" {
			return
		}
		ev := Event{ID: id, Name: name, Data: data.String()}
		if ev.Name == "" {
			ev.Name = "message"
		}
		name = ""
		data.Reset()
		hasData = false
		fn(ev)
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			dispatch()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			name = value
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "id":
			id = value
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read event stream: %w", err)
	}
	return nil
}
