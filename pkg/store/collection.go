package store

import "context"

// Record is anything keyed by a string id
type Record interface {
	GetID() string
}

// Collection couples a file backend with its partition lock
type Collection[T Record] struct {
	partition string
	locks     *PartitionLocks
	backend   *FileBackend[T]
}

// NewCollection creates a collection for partition stored at path
func NewCollection[T Record](partition, path string, locks *PartitionLocks) *Collection[T] {
	return &Collection[T]{
		partition: partition,
		locks:     locks,
		backend:   NewFileBackend[T](path),
	}
}

// Partition returns the lock scope name
func (c *Collection[T]) Partition() string {
	return c.partition
}

// Path returns the backing file
func (c *Collection[T]) Path() string {
	return c.backend.Path()
}

// View loads the partition under the lock and hands it to fn
func (c *Collection[T]) View(ctx context.Context, fn func(records []T) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.locks.withLock(c.partition, "view", func() error {
		records, err := c.backend.Load()
		if err != nil {
			return err
		}
		return fn(records)
	})
}

// Mutate loads, applies fn, and saves the returned slice, all under the
// lock. When fn returns an error nothing is written. A nil slice with a nil
// error means fn decided no write is needed.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(records []T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.locks.withLock(c.partition, "mutate", func() error {
		records, err := c.backend.Load()
		if err != nil {
			return err
		}
		next, err := fn(records)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		return c.backend.Save(next)
	})
}

// Snapshot returns the raw file bytes as of a consistent point in time
func (c *Collection[T]) Snapshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := c.locks.withLock(c.partition, "snapshot", func() error {
		var err error
		data, err = c.backend.ReadRaw()
		return err
	})
	return data, err
}

// indexOf returns the position of id in records, or -1
func indexOf[T Record](records []T, id string) int {
	for i, r := range records {
		if r.GetID() == id {
			return i
		}
	}
	return -1
}
