package logger

import "encoding/json"

const defaultBufferSize = 500

// Entry is a parsed log line retained for the API log endpoint.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Capture is an io.Writer that keeps the most recent log entries in memory.
// It receives the JSON stream zerolog produces; malformed lines are dropped.
type Capture struct {
	buffer *RingBuffer[Entry]
}

// NewCapture creates a capture buffer with the given capacity.
func NewCapture(size int) *Capture {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Capture{buffer: NewRingBuffer[Entry](size)}
}

// Write implements io.Writer.
func (c *Capture) Write(p []byte) (int, error) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err != nil {
		return len(p), nil
	}

	entry := Entry{}
	fields := make(map[string]any)
	for k, v := range raw {
		switch k {
		case "time":
			entry.Timestamp, _ = v.(string)
		case "level":
			entry.Level, _ = v.(string)
		case "component":
			entry.Component, _ = v.(string)
		case "message":
			entry.Message, _ = v.(string)
		default:
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		entry.Fields = fields
	}

	c.buffer.Push(entry)
	return len(p), nil
}

// Entries returns buffered entries, oldest first.
func (c *Capture) Entries() []Entry {
	return c.buffer.All()
}
