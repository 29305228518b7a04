package tournament

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
)

// MemoryStore keeps everything in process. Used when no DATABASE_URL is set.
// Older snapshots never overwrite newer ones.
type MemoryStore struct {
	mu          sync.RWMutex
	snapshot    *Snapshot
	chances     map[qualification.TeamID]Chance
	predictions []Prediction
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chances: make(map[qualification.TeamID]Chance)}
}

// SaveSnapshot stores a deep copy. A snapshot older than the held one is
// rejected with ErrStaleSnapshot.
func (m *MemoryStore) SaveSnapshot(_ context.Context, s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot != nil && s.UpdatedAt.Before(m.snapshot.UpdatedAt) {
		return ErrStaleSnapshot
	}
	m.snapshot = cloneSnapshot(s)

	for id := range m.chances {
		if _, ok := s.TeamByID(id); !ok {
			delete(m.chances, id)
		}
	}
	return nil
}

// LoadSnapshot returns a copy of the held snapshot
func (m *MemoryStore) LoadSnapshot(_ context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return cloneSnapshot(m.snapshot), nil
}

// SaveChances upserts by team id
func (m *MemoryStore) SaveChances(_ context.Context, chances []Chance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range chances {
		m.chances[c.TeamID] = c
	}
	return nil
}

// ListChances mirrors the Repository ordering
func (m *MemoryStore) ListChances(_ context.Context, group qualification.GroupID) ([]Chance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Chance
	for _, c := range m.chances {
		if group == "" || c.Group == group {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

// SavePrediction appends to the log
func (m *MemoryStore) SavePrediction(_ context.Context, p *Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.predictions = append(m.predictions, *p)
	return nil
}

// Predictions returns a copy of the log
func (m *MemoryStore) Predictions() []Prediction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Prediction(nil), m.predictions...)
}

// PrunePredictions drops entries created before the cutoff
func (m *MemoryStore) PrunePredictions(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.predictions[:0]
	var removed int64
	for _, p := range m.predictions {
		if p.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	m.predictions = kept
	return removed, nil
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	return &Snapshot{
		Teams:     append([]Team(nil), s.Teams...),
		Fixtures:  append([]Fixture(nil), s.Fixtures...),
		UpdatedAt: s.UpdatedAt,
	}
}
