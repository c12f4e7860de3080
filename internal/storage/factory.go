package storage

import "fmt"

// DefaultStoreKind names the backend callers get when they express no
// preference. Badger is the persistent default; pass "memory" for
// throwaway runs.
func DefaultStoreKind() string {
	return "badger"
}

// NewStore builds a backend by name. The empty kind selects the in-memory
// store so tests and one-off runs need no path.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "badger":
		return NewBadgerStore(path), nil
	case "sqlite":
		return newSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
