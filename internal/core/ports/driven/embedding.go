package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations own the rate-limit and retry discipline for the external
// service: callers may invoke Embed/EmbedBatch from concurrent requests and
// expect the adapter to serialise them against the shared quota.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - any compatible /embeddings endpoint
type EmbeddingService interface {
	// Embed generates a vector embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one request.
	// The result is order-preserving: output i corresponds to input i.
	// A response with a missing or empty vector set is an error even when
	// the HTTP call nominally succeeded.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
