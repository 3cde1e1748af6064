package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

// AnalysisRepository keeps records in process memory. It is the default
// store and the fallback when the configured backend is unreachable.
type AnalysisRepository struct {
	mu      sync.RWMutex
	records map[string]domain.Record
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{records: make(map[string]domain.Record)}
}

func (r *AnalysisRepository) Save(_ context.Context, a *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[a.ID] = *a
	return nil
}

func (r *AnalysisRepository) GetByID(_ context.Context, id string) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AnalysisRepository) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]*domain.Record, error) {
	r.mu.RLock()
	out := make([]*domain.Record, 0)
	for _, a := range r.records {
		if a.OwnerID != ownerID {
			continue
		}
		a := a
		out = append(out, &a)
	}
	r.mu.RUnlock()

	SortNewestFirst(out)
	return Page(out, limit, offset), nil
}

func (r *AnalysisRepository) Check(context.Context) error { return nil }

// Page returns list[offset:offset+limit], clamped to the list bounds.
// A non-positive limit means no upper bound.
func Page(list []*domain.Record, limit, offset int) []*domain.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []*domain.Record{}
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// SortNewestFirst orders by CreatedAt desc, then id desc.
func SortNewestFirst(list []*domain.Record) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}
