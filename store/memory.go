package store

import (
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/ollama-mcp/ollamamodel"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string]*ollamamodel.DownloadProgress
}

// NewMemoryStore returns a process-local ProgressStore.
func NewMemoryStore() ProgressStore {
	return &inMemory{}
}

func (m *inMemory) Save(p *ollamamodel.DownloadProgress) error {
	if p == nil || p.JobID == "" {
		return errors.New("progress must carry a job id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string]*ollamamodel.DownloadProgress)
	}
	cp := *p
	m.storage[p.JobID] = &cp
	return nil
}

func (m *inMemory) Get(jobID string) *ollamamodel.DownloadProgress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.storage[jobID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (m *inMemory) List() []*ollamamodel.DownloadProgress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*ollamamodel.DownloadProgress, 0, len(m.storage))
	for _, p := range m.storage {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartedAt.After(list[j].StartedAt)
	})
	return list
}

func (m *inMemory) Cancel(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.storage[jobID]
	if !ok || p.Status.Terminal() {
		return false
	}
	now := time.Now()
	p.Status = ollamamodel.DownloadCancelled
	p.CompletedAt = &now
	return true
}
