package stream

import "strings"

// LineBuffer reassembles newline-terminated segments from fragments that may
// split a line anywhere. The trailing partial segment is held until a later
// Write completes it or Flush is called at end of stream.
type LineBuffer struct {
	buf strings.Builder
}

// Write appends fragment and returns every segment it completed, in order.
// Segments are trimmed; blank ones are dropped.
func (b *LineBuffer) Write(fragment string) []string {
	if !strings.Contains(fragment, "\n") {
		b.buf.WriteString(fragment)
		return nil
	}

	b.buf.WriteString(fragment)
	content := b.buf.String()
	idx := strings.LastIndexByte(content, '\n')

	b.buf.Reset()
	b.buf.WriteString(content[idx+1:])

	var lines []string
	for _, line := range strings.Split(content[:idx], "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Flush returns the held partial segment, trimmed, and empties the buffer.
func (b *LineBuffer) Flush() string {
	rest := strings.TrimSpace(b.buf.String())
	b.buf.Reset()
	return rest
}

// Pending reports whether a partial segment is buffered.
func (b *LineBuffer) Pending() bool {
	return b.buf.Len() > 0
}
