// Package brain defines the knowledge-store collaborator interface and
// its Weaviate implementation. The engine only ever asks for the top-K
// passages nearest a text query; ingestion, schema, and ranking live
// entirely on the store's side.
package brain

import "context"

// Hit is one retrieved passage.
type Hit struct {
	Text string
}

// Store is the narrow retrieval interface consumed by the engine.
type Store interface {
	// NearText returns the topK passages nearest the query in the named
	// collection, best first.
	NearText(ctx context.Context, collection, query string, topK int) ([]Hit, error)
	// Close releases the underlying connection.
	Close() error
}
