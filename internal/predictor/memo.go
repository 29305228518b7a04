package predictor

import (
	"sync"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// ImpactMemo keeps recent prediction views in process so repeated what-ifs
// skip the enumeration even when Redis is off. Entries belong to one
// snapshot version; a newer version evicts everything older.
// ⭐ SSOT: in-process result caching lives here only
type ImpactMemo struct {
	mu      sync.RWMutex
	entries map[string]memoEntry
	version int64 // newest snapshot version accepted
	ttl     time.Duration
	logger  *logger.Logger
	now     func() time.Time
}

type memoEntry struct {
	view     PredictionView
	storedAt time.Time
}

// MemoStats is a point-in-time view of the memo
type MemoStats struct {
	Version    int64 `json:"version"`
	TotalCount int   `json:"total_count"`
	FreshCount int   `json:"fresh_count"`
	StaleCount int   `json:"stale_count"`
}

// NewImpactMemo creates a memo whose entries expire after ttl
func NewImpactMemo(ttl time.Duration, log *logger.Logger) *ImpactMemo {
	return &ImpactMemo{
		entries: make(map[string]memoEntry),
		ttl:     ttl,
		logger:  log,
		now:     time.Now,
	}
}

// Get returns a fresh entry stored for version
func (m *ImpactMemo) Get(key string, version int64) (PredictionView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if version != m.version {
		return PredictionView{}, false
	}
	e, ok := m.entries[key]
	if !ok || m.now().Sub(e.storedAt) > m.ttl {
		return PredictionView{}, false
	}
	return e.view, true
}

// Put stores view for version. Views for an older version are rejected.
func (m *ImpactMemo) Put(key string, version int64, view PredictionView) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if version < m.version {
		m.logger.WithFields(map[string]interface{}{
			"key":         key,
			"version":     version,
			"our_version": m.version,
		}).Debug("Rejected impact for an older snapshot")
		return false
	}

	if version > m.version {
		if len(m.entries) > 0 {
			m.entries = make(map[string]memoEntry)
		}
		m.version = version
	}

	m.entries[key] = memoEntry{view: view, storedAt: m.now()}
	return true
}

// Clear drops every entry but remembers the version
func (m *ImpactMemo) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoEntry)
}

// Len returns the number of entries
func (m *ImpactMemo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// CleanStale removes expired entries
func (m *ImpactMemo) CleanStale() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	count := 0

	for key, e := range m.entries {
		if now.Sub(e.storedAt) > m.ttl {
			delete(m.entries, key)
			count++
		}
	}

	if count > 0 {
		m.logger.WithField("count", count).Debug("Cleaned stale impacts")
	}

	return count
}

// Stats returns memo statistics
func (m *ImpactMemo) Stats() MemoStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := MemoStats{Version: m.version, TotalCount: len(m.entries)}
	now := m.now()
	for _, e := range m.entries {
		if now.Sub(e.storedAt) > m.ttl {
			stats.StaleCount++
		}
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount

	return stats
}
