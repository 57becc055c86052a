package cache

import (
	"context"
	"sync"
	"time"
)

// pendingValue marca una clave reservada cuya venta aún no se confirmó.
const pendingValue = "__pending__"

// NoopIdempotencyStore no guarda nada: cada envío se procesa (sin Redis configurado).
type NoopIdempotencyStore struct{}

func (NoopIdempotencyStore) Reserve(_ context.Context, _ string) (string, bool, error) {
	return "", true, nil
}

func (NoopIdempotencyStore) Complete(_ context.Context, _, _ string) error { return nil }

func (NoopIdempotencyStore) Release(_ context.Context, _ string) error { return nil }

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryIdempotencyStore implementación en memoria con TTL, para pruebas y modo memory.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	nowFunc func() time.Time
}

// NewMemoryIdempotencyStore crea el almacén; ttl <= 0 = sin expiración.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{ttl: ttl, entries: make(map[string]memoryEntry), nowFunc: time.Now}
}

// Reserve toma la clave si está libre. Si ya existe devuelve la venta confirmada o
// reserved=false con saleID vacío mientras siga en curso.
func (m *MemoryIdempotencyStore) Reserve(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && !m.expired(e) {
		if e.value == pendingValue {
			return "", false, nil
		}
		return e.value, false, nil
	}
	m.entries[key] = memoryEntry{value: pendingValue, expiresAt: m.deadline()}
	return "", true, nil
}

// Complete asocia la clave a la venta confirmada.
func (m *MemoryIdempotencyStore) Complete(_ context.Context, key, saleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: saleID, expiresAt: m.deadline()}
	return nil
}

// Release libera la clave tras un fallo para que el cliente pueda reintentar.
func (m *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryIdempotencyStore) deadline() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.nowFunc().Add(m.ttl)
}

func (m *MemoryIdempotencyStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.nowFunc().After(e.expiresAt)
}
