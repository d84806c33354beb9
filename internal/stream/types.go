package stream

import "context"

// Chunk represents a processed piece of content from the stream
type Chunk struct {
	Content string
	Error   error
}

// Parser turns a server-sent event body into the text fragments it carries.
type Parser struct {
	ctx    context.Context
	chunks chan Chunk
	frames FrameParser
}

func NewParser(ctx context.Context) *Parser {
	return &Parser{
		ctx:    ctx,
		chunks: make(chan Chunk),
	}
}

// Chunks is closed once Process returns.
func (p *Parser) Chunks() <-chan Chunk {
	return p.chunks
}
