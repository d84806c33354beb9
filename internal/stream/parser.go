package stream

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const (
	dataPrefix = "data:"
	readSize   = 4096
)

// GenerateResponse is the part of a streamed generateContent envelope that
// carries text.
type GenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// FrameParser extracts text fragments from raw server-sent event bytes. Input
// may split an event line anywhere.
type FrameParser struct {
	lines LineBuffer
}

// Feed consumes a raw chunk and returns the fragments of every event it
// completed. Frames that do not decode, or carry no text, are skipped.
func (f *FrameParser) Feed(chunk []byte) []string {
	var fragments []string
	for _, line := range f.lines.Write(string(chunk)) {
		if text, ok := decodeFrame(line); ok {
			fragments = append(fragments, text)
		}
	}
	return fragments
}

// Flush decodes an event left unterminated at end of stream.
func (f *FrameParser) Flush() []string {
	if text, ok := decodeFrame(f.lines.Flush()); ok {
		return []string{text}
	}
	return nil
}

func decodeFrame(line string) (string, bool) {
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}

	data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if data == "" || data == "[DONE]" {
		return "", false
	}

	var resp GenerateResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return "", false
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", false
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	return text, text != ""
}

// Process reads body until EOF, sending every text fragment on Chunks in
// arrival order. A read error is sent as a final Chunk. It stops early when
// the parser's context is cancelled.
func (p *Parser) Process(body io.Reader) {
	defer close(p.chunks)

	buf := make([]byte, readSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, text := range p.frames.Feed(buf[:n]) {
				if !p.send(Chunk{Content: text}) {
					return
				}
			}
		}

		if errors.Is(err, io.EOF) {
			for _, text := range p.frames.Flush() {
				if !p.send(Chunk{Content: text}) {
					return
				}
			}
			return
		}
		if err != nil {
			if p.ctx.Err() == nil {
				p.send(Chunk{Error: err})
			}
			return
		}
	}
}

func (p *Parser) send(c Chunk) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.chunks <- c:
		return true
	}
}
