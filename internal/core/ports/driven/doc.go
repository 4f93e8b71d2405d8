// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the embedding service, the chunk store, and
// the completion service.
package driven
