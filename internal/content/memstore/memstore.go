// Package memstore provides an in-memory implementation of content.Store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/sentinel/internal/content"
)

// Store holds posts in memory. Suitable for dev/testing.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*content.Post
	byURL map[string]*content.Post
	order []string // IDs in insertion order, for stable tie-breaking
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		byID:  make(map[string]*content.Post),
		byURL: make(map[string]*content.Post),
	}
}

// FindByURL retrieves a post by its URL. Returns a copy.
func (s *Store) FindByURL(_ context.Context, url string) (*content.Post, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byURL[url]
	if !ok {
		return nil, false, nil
	}
	cp := clone(p)
	return &cp, true, nil
}

// Insert stores a copy of the post, assigning a fresh ULID. The URL unique
// check and the write happen under one lock so concurrent inserts of the
// same URL cannot both succeed.
func (s *Store) Insert(_ context.Context, p *content.Post) (*content.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byURL[p.URL]; exists {
		return nil, content.ErrDuplicateURL
	}

	cp := clone(p)
	cp.ID = ulid.Make().String()
	cp.Verdict = content.VerdictUnreviewed
	cp.ReviewerNotes = ""

	s.byID[cp.ID] = &cp
	s.byURL[cp.URL] = &cp
	s.order = append(s.order, cp.ID)

	out := clone(&cp)
	return &out, nil
}

// Query returns matching posts ordered by risk score descending, ties in
// insertion order.
func (s *Store) Query(_ context.Context, minScore float64, includeReviewed bool) ([]content.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]content.Post, 0, len(s.order))
	for _, id := range s.order {
		p := s.byID[id]
		if p.RiskScore < minScore {
			continue
		}
		if !includeReviewed && p.Verdict != content.VerdictUnreviewed {
			continue
		}
		out = append(out, clone(p))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RiskScore > out[j].RiskScore
	})
	return out, nil
}

// CompareAndSetVerdict applies the verdict transition iff the current verdict
// matches expected. The check and the write share one lock.
func (s *Store) CompareAndSetVerdict(_ context.Context, id string, expected, next content.Verdict, notes string) (content.CASOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return content.CASNotFound, nil
	}
	if p.Verdict != expected {
		return content.CASAlreadyReviewed, nil
	}
	p.Verdict = next
	p.ReviewerNotes = notes
	return content.CASUpdated, nil
}

// clone copies a post including its flags slice, so callers can't mutate
// stored state through a returned pointer.
func clone(p *content.Post) content.Post {
	cp := *p
	if p.Flags != nil {
		cp.Flags = append([]string(nil), p.Flags...)
	}
	return cp
}
