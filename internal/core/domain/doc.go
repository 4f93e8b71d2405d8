// Package domain contains the core business entities of the retrieval
// pipeline: documents, chunks, retrieval results, and analysis output.
// It has no dependencies on adapters or infrastructure.
package domain
