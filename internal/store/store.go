// Package store keeps the weekly records of one session, sorted by week
// and unique per week.
package store

import (
	"errors"
	"sort"
	"sync"

	"drai-go/internal/metrics"
	"drai-go/internal/model"
)

// ErrEmpty is returned when a lookup needs at least one record.
var ErrEmpty = errors.New("store: no records")

// Policy picks the surviving record when two share a week. kept is the
// record already accepted, candidate the one encountered later in the
// sorted, concatenated input.
type Policy func(kept, candidate model.MetricsRecord) model.MetricsRecord

// FirstWins keeps the first record seen for a week; re-uploads of a week
// already loaded are discarded.
func FirstWins(kept, _ model.MetricsRecord) model.MetricsRecord { return kept }

// LastWins lets a later upload replace the stored week.
func LastWins(_, candidate model.MetricsRecord) model.MetricsRecord { return candidate }

// PolicyByName maps "first" and "last" to their policies; anything else
// is FirstWins.
func PolicyByName(name string) Policy {
	if name == "last" {
		return LastWins
	}
	return FirstWins
}

// Ingest concatenates existing and newRecords, sorts by week (stable, so
// existing records precede new ones of the same week) and collapses each
// week to one record using policy. The inputs are not modified.
func Ingest(newRecords, existing []model.MetricsRecord, policy Policy) []model.MetricsRecord {
	if policy == nil {
		policy = FirstWins
	}
	all := make([]model.MetricsRecord, 0, len(existing)+len(newRecords))
	all = append(all, existing...)
	all = append(all, newRecords...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Week < all[j].Week })

	out := make([]model.MetricsRecord, 0, len(all))
	for _, r := range all {
		if n := len(out); n > 0 && out[n-1].Week == r.Week {
			out[n-1] = policy(out[n-1], r)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Store is the session-wide record set. Its contents change only by whole
// replacement, so readers always see one consistent merge result.
type Store struct {
	mu      sync.RWMutex
	records []model.MetricsRecord
	policy  Policy
}

// New returns an empty store deduplicating with policy (nil: FirstWins).
func New(policy Policy) *Store {
	if policy == nil {
		policy = FirstWins
	}
	return &Store{policy: policy}
}

// Merge ingests records into the store and returns the new contents.
func (s *Store) Merge(records []model.MetricsRecord) []model.MetricsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = Ingest(records, s.records, s.policy)
	metrics.StoredWeeks.Set(float64(len(s.records)))
	return s.copyLocked()
}

// MergeNumbered is Merge for a batch that holds records still lacking a
// week (Week <= 0). Under the lock that merges, the record at position i
// of records gets week Len()+i+1, counting the weeks held and every
// record ahead of it in the batch, so overlapping batches never hand out
// the same number. label, when not nil, runs after each such week is set.
// records is updated in place.
func (s *Store) MergeNumbered(records []model.MetricsRecord, label func(r *model.MetricsRecord)) []model.MetricsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := len(s.records)
	for i := range records {
		if records[i].Week > 0 {
			continue
		}
		records[i].Week = base + i + 1
		if label != nil {
			label(&records[i])
		}
	}
	s.records = Ingest(records, s.records, s.policy)
	metrics.StoredWeeks.Set(float64(len(s.records)))
	return s.copyLocked()
}

// Replace swaps the contents for records, sorted and deduplicated.
func (s *Store) Replace(records []model.MetricsRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = Ingest(records, nil, s.policy)
	metrics.StoredWeeks.Set(float64(len(s.records)))
}

// Reset drops every record.
func (s *Store) Reset() {
	s.Replace(nil)
}

// All returns a copy of the records in week order.
func (s *Store) All() []model.MetricsRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() []model.MetricsRecord {
	out := make([]model.MetricsRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of weeks held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Current returns the record with the highest week.
func (s *Store) Current() (model.MetricsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return model.MetricsRecord{}, ErrEmpty
	}
	return s.records[len(s.records)-1], nil
}

// Previous returns the record before Current; ok is false with fewer than
// two weeks loaded.
func (s *Store) Previous() (model.MetricsRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) < 2 {
		return model.MetricsRecord{}, false
	}
	return s.records[len(s.records)-2], true
}

// Week returns the record for week n.
func (s *Store) Week(n int) (model.MetricsRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := sort.Search(len(s.records), func(i int) bool { return s.records[i].Week >= n })
	if i < len(s.records) && s.records[i].Week == n {
		return s.records[i], true
	}
	return model.MetricsRecord{}, false
}

// NextWeek is the number an unnumbered record would get if it were merged
// alone right now: one past the number of weeks held.
func (s *Store) NextWeek() int {
	return s.Len() + 1
}
