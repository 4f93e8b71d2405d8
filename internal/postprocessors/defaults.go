package postprocessors

import (
	"github.com/impactdesk/insight-cli/internal/postprocessors/chunker"
)

// NewDefaultPipeline builds the standard ingestion pipeline: a single
// sentence-respecting chunker bounded by targetSize characters. A targetSize
// of zero or less uses the chunker's default.
func NewDefaultPipeline(targetSize int) *Pipeline {
	var opts []chunker.Option
	if targetSize > 0 {
		opts = append(opts, chunker.WithTargetSize(targetSize))
	}
	return NewPipeline(chunker.New(opts...))
}
