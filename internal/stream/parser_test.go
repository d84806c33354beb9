package stream_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/markis/flashdeck/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(text string) string {
	return `data: {"candidates":[{"content":{"parts":[{"text":"` + text + `"}],"role":"model"}}]}` + "\n\n"
}

func TestFrameParserExtractsText(t *testing.T) {
	var f stream.FrameParser
	got := f.Feed([]byte(frame("hello") + frame("world")))
	assert.Equal(t, []string{"hello", "world"}, got)
}

func TestFrameParserReassemblesSplitFrame(t *testing.T) {
	var f stream.FrameParser
	raw := frame("split across reads")

	assert.Empty(t, f.Feed([]byte(raw[:17])))
	assert.Empty(t, f.Feed([]byte(raw[17:40])))
	assert.Equal(t, []string{"split across reads"}, f.Feed([]byte(raw[40:])))
}

func TestFrameParserSkipsMalformedFrames(t *testing.T) {
	var f stream.FrameParser
	raw := strings.Join([]string{
		": keep-alive comment",
		"event: message",
		"id: 7",
		`data: {"candidates":[{"content":{"parts":[{"text":"ok1"}]}}]}`,
		`data: {not json`,
		`data: {"candidates":[]}`,
		`data: {"candidates":[{"content":{"parts":[]}}]}`,
		`data: {"candidates":[{"finishReason":"STOP"}]}`,
		`data: {"candidates":[{"content":{"parts":[{"text":1}]}}]}`,
		`data: [DONE]`,
		`data:`,
		`data:{"candidates":[{"content":{"parts":[{"text":"ok2"}]}}]}`,
		"",
	}, "\n")

	assert.Equal(t, []string{"ok1", "ok2"}, f.Feed([]byte(raw)))
}

func TestFrameParserFlushesUnterminatedFrame(t *testing.T) {
	var f stream.FrameParser
	raw := strings.TrimRight(frame("tail"), "\n")
	assert.Empty(t, f.Feed([]byte(raw)))
	assert.Equal(t, []string{"tail"}, f.Flush())
	assert.Empty(t, f.Flush())
}

func TestFrameParserCRLF(t *testing.T) {
	var f stream.FrameParser
	raw := strings.ReplaceAll(frame("crlf"), "\n", "\r\n")
	assert.Equal(t, []string{"crlf"}, f.Feed([]byte(raw)))
}

func collect(t *testing.T, p *stream.Parser) ([]string, error) {
	t.Helper()
	var texts []string
	var err error
	for chunk := range p.Chunks() {
		if chunk.Error != nil {
			err = chunk.Error
			continue
		}
		texts = append(texts, chunk.Content)
	}
	return texts, err
}

func TestParserProcessOneByteReads(t *testing.T) {
	body := frame("a") + "data: garbage\n" + frame("b") + strings.TrimRight(frame("c"), "\n")

	p := stream.NewParser(context.Background())
	go p.Process(iotest.OneByteReader(strings.NewReader(body)))

	texts, err := collect(t, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestParserProcessReadError(t *testing.T) {
	boom := errors.New("connection reset")
	body := io.MultiReader(strings.NewReader(frame("a")), iotest.ErrReader(boom))

	p := stream.NewParser(context.Background())
	go p.Process(body)

	texts, err := collect(t, p)
	assert.Equal(t, []string{"a"}, texts)
	assert.ErrorIs(t, err, boom)
}

func TestParserProcessStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	body := strings.Repeat(frame("x"), 50)

	p := stream.NewParser(ctx)
	done := make(chan struct{})
	go func() {
		p.Process(strings.NewReader(body))
		close(done)
	}()

	first := <-p.Chunks()
	assert.Equal(t, "x", first.Content)
	cancel()

	<-done
	for range p.Chunks() {
	}
}
