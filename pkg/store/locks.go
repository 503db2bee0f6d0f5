package store

import (
	"sync"
	"time"
)

// Observer receives how long an operation held a partition lock
type Observer func(operation string, held time.Duration)

// PartitionLocks hands out one mutex per partition name. Every
// read-modify-write against a partition's file runs while holding it,
// because the file is rewritten as a whole.
type PartitionLocks struct {
	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	observer Observer
}

// NewPartitionLocks creates an empty lock table
func NewPartitionLocks() *PartitionLocks {
	return &PartitionLocks{locks: make(map[string]*sync.Mutex)}
}

// SetObserver installs a timing hook. Call before the table is shared.
func (p *PartitionLocks) SetObserver(o Observer) {
	p.observer = o
}

func (p *PartitionLocks) get(partition string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.locks[partition]
	if !ok {
		m = &sync.Mutex{}
		p.locks[partition] = m
	}
	return m
}

// WithLock runs fn while holding the partition's mutex
func (p *PartitionLocks) WithLock(partition string, fn func() error) error {
	return p.withLock(partition, "", fn)
}

func (p *PartitionLocks) withLock(partition, op string, fn func() error) error {
	m := p.get(partition)
	m.Lock()
	defer m.Unlock()

	if p.observer == nil || op == "" {
		return fn()
	}
	start := time.Now()
	err := fn()
	p.observer(partition+"."+op, time.Since(start))
	return err
}
