// Package ingest defines the platform ingestor capability and its registry.
// Ingestors are external collaborators: each one knows how to fetch a
// handle's posts from one platform and normalize them into canonical records.
package ingest

import (
	"context"
	"sort"

	"github.com/linnemanlabs/sentinel/internal/content"
)

// Ingestor fetches recent posts for a handle, normalized to canonical
// records. "No results" is an empty slice, not an error; errors mean the
// platform could not be reached or refused access.
type Ingestor interface {
	Platform() content.Source
	Fetch(ctx context.Context, handle string, limit int) ([]content.Record, error)
}

// Registry holds available ingestors keyed by platform.
type Registry struct {
	ingestors map[content.Source]Ingestor
}

// NewRegistry creates an empty ingestor registry.
func NewRegistry() *Registry {
	return &Registry{ingestors: make(map[content.Source]Ingestor)}
}

// Register adds an ingestor, keyed by its Platform.
func (r *Registry) Register(i Ingestor) {
	r.ingestors[i.Platform()] = i
}

// Get retrieves the ingestor for a platform, and whether one is registered.
func (r *Registry) Get(platform content.Source) (Ingestor, bool) {
	i, ok := r.ingestors[platform]
	return i, ok
}

// Platforms returns the registered platforms in stable order.
func (r *Registry) Platforms() []content.Source {
	out := make([]content.Source, 0, len(r.ingestors))
	for p := range r.ingestors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
