package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	id   string
	data []byte
}

// Memory is an in-process Store. Insertion order is kept per collection.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]memoryEntry)}
}

func (m *Memory) Insert(_ context.Context, collection string, doc any) (string, error) {
	id := uuid.NewString()
	data, err := encodeDocument(id, doc)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], memoryEntry{id: id, data: data})
	return id, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, doc any) error {
	data, err := encodeDocument(id, doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.collections[collection]
	for i := range entries {
		if entries[i].id == id {
			entries[i].data = data
			return nil
		}
	}
	m.collections[collection] = append(entries, memoryEntry{id: id, data: data})
	return nil
}

func (m *Memory) QueryWhere(_ context.Context, collection, field string, value any, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := fmt.Sprint(value)
	var docs [][]byte
	for _, e := range m.collections[collection] {
		fields, err := fieldsOf(e.data)
		if err != nil {
			return err
		}
		if v, ok := fields[field]; ok && fmt.Sprint(v) == want {
			docs = append(docs, e.data)
		}
	}
	return decodeList(docs, out)
}

func (m *Memory) ListAll(_ context.Context, collection, orderBy string, dir Direction, out any) error {
	if !validField(orderBy) {
		return ErrInvalidField
	}

	m.mu.RLock()
	entries := append([]memoryEntry(nil), m.collections[collection]...)
	m.mu.RUnlock()

	keys := make([]string, len(entries))
	for i, e := range entries {
		fields, err := fieldsOf(e.data)
		if err != nil {
			return err
		}
		if v, ok := fields[orderBy]; ok && v != nil {
			keys[i] = fmt.Sprint(v)
		}
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if dir == Desc {
			return keys[idx[a]] > keys[idx[b]]
		}
		return keys[idx[a]] < keys[idx[b]]
	})

	docs := make([][]byte, 0, len(entries))
	for _, i := range idx {
		docs = append(docs, entries[i].data)
	}
	return decodeList(docs, out)
}

func (m *Memory) GetByID(_ context.Context, collection, id string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.collections[collection] {
		if e.id == id {
			return json.Unmarshal(e.data, out)
		}
	}
	return ErrNotFound
}

func (m *Memory) Close(context.Context) error { return nil }

// Len reports the number of documents in collection.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func fieldsOf(data []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fields, nil
}
