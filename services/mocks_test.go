package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jaykurgat/Nyumba-Finder/domain"
	"github.com/jaykurgat/Nyumba-Finder/repositories"
)

// ============================================
// Repository mock
// ============================================
type mockPropertyRepository struct {
	properties map[string]domain.Property
	nextID     int
	lastQuery  repositories.PropertyQuery
	listCalls  int
	failWith   error
}

func newMockPropertyRepository() *mockPropertyRepository {
	return &mockPropertyRepository{properties: make(map[string]domain.Property)}
}

func (m *mockPropertyRepository) Get(ctx context.Context, id string) (*domain.Property, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, exists := m.properties[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// List applies the range predicates and sorts like a real store would.
func (m *mockPropertyRepository) List(ctx context.Context, query repositories.PropertyQuery) ([]domain.Property, error) {
	m.listCalls++
	m.lastQuery = query
	if m.failWith != nil {
		return nil, m.failWith
	}

	var out []domain.Property
	for _, p := range m.properties {
		if query.MinPrice != nil && p.Price < *query.MinPrice {
			continue
		}
		if query.MaxPrice != nil && p.Price > *query.MaxPrice {
			continue
		}
		if query.MinBedrooms != nil && float64(p.Bedrooms) < *query.MinBedrooms {
			continue
		}
		if query.MinBathrooms != nil && float64(p.Bathrooms) < *query.MinBathrooms {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if query.OrderBy == domain.FieldPrice {
			return out[i].Price < out[j].Price
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (m *mockPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	property.ID = fmt.Sprintf("prop-%d", m.nextID)
	m.properties[property.ID] = *property
	return nil
}

func (m *mockPropertyRepository) Update(ctx context.Context, id string, patch domain.PropertyPatch) error {
	if m.failWith != nil {
		return m.failWith
	}
	p, exists := m.properties[id]
	if !exists {
		return domain.ErrNotFound
	}
	patch.Apply(&p)
	m.properties[id] = p
	return nil
}

func (m *mockPropertyRepository) Delete(ctx context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, exists := m.properties[id]; !exists {
		return domain.ErrNotFound
	}
	delete(m.properties, id)
	return nil
}

func (m *mockPropertyRepository) Migrate(ctx context.Context) error { return nil }

// pausingRepository holds its first Get after the record was read, until
// release is closed. read is closed once that Get has its result.
type pausingRepository struct {
	*mockPropertyRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newPausingRepository(inner *mockPropertyRepository) *pausingRepository {
	return &pausingRepository{
		mockPropertyRepository: inner,
		read:                   make(chan struct{}),
		release:                make(chan struct{}),
	}
}

func (r *pausingRepository) Get(ctx context.Context, id string) (*domain.Property, error) {
	p, err := r.mockPropertyRepository.Get(ctx, id)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.read)
		<-r.release
	}
	return p, err
}

// ============================================
// Image store mock
// ============================================
type mockImageStore struct {
	mu      sync.Mutex
	deleted []string
	failing map[string]bool
}

func newMockImageStore(failing ...string) *mockImageStore {
	s := &mockImageStore{failing: make(map[string]bool)}
	for _, path := range failing {
		s.failing[path] = true
	}
	return s
}

func (s *mockImageStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[path] {
		return errors.New("storage unavailable")
	}
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *mockImageStore) deletedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string{}, s.deleted...)
	sort.Strings(out)
	return out
}

// ============================================
// Cache mock
// ============================================
type mockCache struct {
	items   map[string]domain.Property
	evicted []string
}

func newMockCache() *mockCache {
	return &mockCache{items: make(map[string]domain.Property)}
}

func (c *mockCache) GetProperty(id string) (*domain.Property, bool) {
	p, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *mockCache) SetProperty(p domain.Property) { c.items[p.ID] = p }

func (c *mockCache) DeleteProperty(id string) {
	delete(c.items, id)
	c.evicted = append(c.evicted, id)
}

// ============================================
// Publisher mock
// ============================================
type publishedEvent struct {
	action string
	id     string
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (p *mockPublisher) Publish(ctx context.Context, action, propertyID string) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{action: action, id: propertyID})
	return nil
}

func (p *mockPublisher) Close() error { return nil }
