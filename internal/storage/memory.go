package storage

import "sync"

// Memory is an in-memory snapshot store. Tests use it for isolated store
// instances; WriteErr injects persistence failures.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte

	// WriteErr, when non-nil, is returned by every Save call
	WriteErr error
}

// NewMemory returns an empty in-memory snapshot store
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Save stores a copy of the document under the collection name
func (m *Memory) Save(collection string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.docs[collection] = append([]byte(nil), doc...)
	return nil
}

// Load returns a copy of the stored document, or nil when none exists
func (m *Memory) Load(collection string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}
