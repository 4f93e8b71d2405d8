// Package chunker provides a sentence-respecting text chunking processor.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

// DefaultTargetSize is the default chunk size budget in characters.
const DefaultTargetSize = 1000

// boundaryRe matches a sentence boundary: one or more terminators followed
// by whitespace or end of input. A terminator with text directly behind it,
// as in "2.5" or "v1.2.3", is not a boundary.
var boundaryRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// Processor splits sanitised document content into sentence-respecting
// chunks bounded by a target character budget. A chunk boundary never falls
// inside a sentence; a single sentence longer than the budget becomes its
// own oversized chunk rather than being truncated.
// It implements the PostProcessor interface.
type Processor struct {
	targetSize int
	now        func() time.Time
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithTargetSize sets the chunk size budget in characters.
func WithTargetSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.targetSize = size
		}
	}
}

// WithClock overrides the timestamp source used for chunk ids. Tests use
// this to make ids deterministic.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		targetSize: DefaultTargetSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks. Input chunks are ignored;
// this processor creates new chunks from document content.
// Empty content produces zero chunks, which callers treat as "nothing to
// index" rather than an error.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	segments := Split(doc.Content, p.targetSize)
	if len(segments) == 0 {
		return nil, nil
	}

	at := p.now()
	chunks := make([]domain.Chunk, len(segments))
	for i, segment := range segments {
		chunks[i] = domain.Chunk{
			ID:      domain.NewChunkID(doc.Title, i, at),
			Content: segment,
			Metadata: domain.ChunkMetadata{
				Title:      doc.Title,
				Type:       doc.Type,
				ChunkIndex: i,
			},
		}
	}
	return chunks, nil
}

// Split breaks text into sentence-respecting segments bounded by targetSize
// characters (runes, not bytes). Sentences are accumulated greedily: when
// extending the current segment to the next sentence would exceed the
// budget, the segment is closed and the sentence starts a new one. Segments
// are slices of the input, so chunk content is never rewritten. Text with no
// sentence boundary yields exactly one segment containing the whole input;
// empty text yields none.
func Split(text string, targetSize int) []string {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var segments []string
	segStart, segEnd := -1, -1
	for _, sentence := range sentenceSpans(text) {
		if segStart >= 0 && utf8.RuneCountInString(text[segStart:sentence.end]) > targetSize {
			segments = append(segments, text[segStart:segEnd])
			segStart = -1
		}
		if segStart < 0 {
			segStart = sentence.start
		}
		segEnd = sentence.end
	}
	if segStart >= 0 {
		segments = append(segments, text[segStart:segEnd])
	}
	return segments
}

// span is a half-open byte range into the input text.
type span struct {
	start, end int
}

// sentenceSpans locates the sentences of text. A sentence runs up to and
// including its terminator run; the boundary whitespace is excluded. Any
// trailing text with no terminator forms a final sentence.
func sentenceSpans(text string) []span {
	var spans []span
	start := 0
	for _, loc := range boundaryRe.FindAllStringIndex(text, -1) {
		terminators := strings.TrimRightFunc(text[loc[0]:loc[1]], unicode.IsSpace)
		spans = append(spans, span{start: start, end: loc[0] + len(terminators)})
		start = loc[1]
	}

	rest := text[start:]
	if i := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsSpace(r) }); i >= 0 {
		end := start + len(strings.TrimRightFunc(rest, unicode.IsSpace))
		spans = append(spans, span{start: start + i, end: end})
	}
	return spans
}
