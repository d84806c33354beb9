package stream_test

import (
	"strings"
	"testing"

	"github.com/markis/flashdeck/internal/stream"
	"github.com/stretchr/testify/assert"
)

func TestLineBufferHoldsPartialSegment(t *testing.T) {
	var b stream.LineBuffer

	assert.Empty(t, b.Write(`{"question":"Q1",`))
	assert.True(t, b.Pending())
	assert.Equal(t, []string{`{"question":"Q1","answer":"A1"}`}, b.Write(`"answer":"A1"}`+"\n"+`{"que`))
	assert.Equal(t, []string{`{"question":"Q2"}`}, b.Write(`stion":"Q2"}`+"\n"))
	assert.False(t, b.Pending())
	assert.Equal(t, "", b.Flush())
}

func TestLineBufferDropsBlankSegments(t *testing.T) {
	var b stream.LineBuffer
	assert.Equal(t, []string{"a", "b"}, b.Write("\n\n a \r\n   \nb\n\n"))
}

func TestLineBufferFlush(t *testing.T) {
	var b stream.LineBuffer
	assert.Equal(t, []string{"one"}, b.Write("one\ntwo"))
	assert.Equal(t, "two", b.Flush())
	assert.Equal(t, "", b.Flush())
}

func TestLineBufferAnyChunking(t *testing.T) {
	input := "first\nsecond line\n\nthird {\"x\":1}\nfourth\npartial tail"
	want := []string{"first", "second line", `third {"x":1}`, "fourth"}

	for size := 1; size <= len(input); size++ {
		var b stream.LineBuffer
		var got []string
		for start := 0; start < len(input); start += size {
			end := min(start+size, len(input))
			got = append(got, b.Write(input[start:end])...)
		}
		assert.Equal(t, want, got, "chunk size %d", size)
		assert.Equal(t, "partial tail", b.Flush(), "chunk size %d", size)
	}
}

func TestLineBufferLongInput(t *testing.T) {
	var b stream.LineBuffer
	line := strings.Repeat("x", 100_000)
	assert.Empty(t, b.Write(line))
	assert.Equal(t, []string{line}, b.Write("\n"))
}
