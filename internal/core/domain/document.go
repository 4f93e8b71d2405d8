package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a single free-text input to the retrieval pipeline.
// Documents are transient: they exist for one store-and-query cycle and are
// discarded after chunking. Only their chunks are persisted.
type Document struct {
	// ID is a unique identifier assigned at ingestion time.
	ID string

	// Title is the human-readable title (typically the file name).
	Title string

	// Type is a free-form tag describing the document kind, e.g. "txt" or "md".
	Type string

	// Content is the raw text before sanitisation.
	Content string
}

// NewDocument creates a transient document with a fresh id.
func NewDocument(title, docType, content string) Document {
	return Document{
		ID:      uuid.New().String(),
		Title:   title,
		Type:    docType,
		Content: content,
	}
}

// Chunk is the atomic retrievable unit: a sentence-respecting segment of a
// document's sanitised text together with its embedding vector.
// Chunks are immutable once written; re-ingestion produces new chunks with
// new ids rather than updating existing rows.
type Chunk struct {
	// ID is unique store-wide. See NewChunkID.
	ID string

	// Content is the sanitised text segment. Never empty for a persisted chunk.
	Content string

	// Metadata carries traceability fields back to the parent document.
	Metadata ChunkMetadata

	// Embedding is the fixed-dimension vector for Content.
	Embedding []float32
}

// ChunkMetadata is the closed metadata record attached to every chunk.
// New fields are added here, never as ad hoc keys.
type ChunkMetadata struct {
	// Title is the parent document's title.
	Title string `json:"title"`

	// Type is the parent document's type tag.
	Type string `json:"type"`

	// ChunkIndex is the 0-based position within the parent document.
	// Used for traceability only, not for ordering at query time.
	ChunkIndex int `json:"chunk_index"`
}

// RetrievedChunk is a query-time view over a stored chunk joined with its
// similarity to the query embedding. Not persisted; recomputed per query.
type RetrievedChunk struct {
	// Content is the chunk text.
	Content string `json:"content"`

	// Metadata identifies the source document.
	Metadata ChunkMetadata `json:"metadata"`

	// Similarity is the cosine similarity to the query vector, in [0,1].
	Similarity float64 `json:"similarity"`
}

// NewChunkID derives a chunk id from the parent title, the chunk's ordinal
// position, and the ingestion timestamp. The timestamp component keeps ids
// distinct across repeated ingestions of same-named documents.
func NewChunkID(title string, index int, at time.Time) string {
	return fmt.Sprintf("%s-%d-%d", slugify(title), index, at.UnixNano())
}

// slugify lowercases the title and collapses runs of non-alphanumeric
// characters into single hyphens.
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	hyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
