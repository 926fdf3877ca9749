// Package tracker decides which request records are new between polls.
package tracker

import "github.com/charliek/webhook/internal/domain"

// SeenSet holds the ids already rendered in a session. Treat it as a value:
// Diff never modifies the set it is given.
type SeenSet map[string]struct{}

// Seed returns a set containing the id of every record in batch.
func Seed(batch []domain.RequestRecord) SeenSet {
	seen := make(SeenSet, len(batch))
	for _, rec := range batch {
		seen[rec.ID] = struct{}{}
	}
	return seen
}

// Contains reports whether id has been seen.
func (s SeenSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of distinct ids seen.
func (s SeenSet) Len() int {
	return len(s)
}

// Diff returns the records of batch whose id is not in prev, in batch order,
// together with prev plus every id of batch. An id repeated within batch is
// returned once. Ids missing from batch stay in the result, so the set only
// ever grows.
func Diff(prev SeenSet, batch []domain.RequestRecord) ([]domain.RequestRecord, SeenSet) {
	updated := make(SeenSet, len(prev)+len(batch))
	for id := range prev {
		updated[id] = struct{}{}
	}

	var newOnes []domain.RequestRecord
	for _, rec := range batch {
		if updated.Contains(rec.ID) {
			continue
		}
		updated[rec.ID] = struct{}{}
		newOnes = append(newOnes, rec)
	}

	return newOnes, updated
}
