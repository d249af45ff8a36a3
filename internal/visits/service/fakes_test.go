package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"sales_visits_backend/internal/identity"
	"sales_visits_backend/internal/scheduler"
	"sales_visits_backend/internal/visits/domain"
	"sales_visits_backend/internal/visits/repository"
)

type memoryStore struct {
	mu        sync.Mutex
	visits    map[string]*domain.Visit
	nextID    int64
	failNext  error
	noRows    bool
	updates   int
	createErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{visits: map[string]*domain.Visit{}}
}

func (m *memoryStore) Create(_ context.Context, visit *domain.Visit) (*domain.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, v := range m.visits {
		if v.SellerID == visit.SellerID && v.Date.Equal(visit.Date) {
			return nil, repository.ErrDuplicateVisit
		}
	}

	now := time.Now()
	stored := *visit
	stored.CreatedAt, stored.UpdatedAt = now, now
	stored.Clients = make([]domain.VisitClient, len(visit.Clients))
	for i, c := range visit.Clients {
		m.nextID++
		c.ID = m.nextID
		c.CreatedAt, c.UpdatedAt = now, now
		stored.Clients[i] = c
	}
	m.visits[stored.ID] = &stored

	out := stored
	out.Clients = append([]domain.VisitClient(nil), stored.Clients...)
	return &out, nil
}

func (m *memoryStore) GetByOwner(_ context.Context, visitID, sellerID string) (*domain.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	v, ok := m.visits[visitID]
	if !ok || v.SellerID != sellerID {
		return nil, nil
	}
	out := *v
	return &out, nil
}

func (m *memoryStore) ListBySeller(_ context.Context, sellerID string, date *time.Time) ([]repository.VisitSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	items := make([]repository.VisitSummary, 0)
	for _, v := range m.visits {
		if v.SellerID != sellerID || (date != nil && !v.Date.Equal(*date)) {
			continue
		}
		items = append(items, repository.VisitSummary{Visit: *v, ClientCount: len(v.Clients)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Visit.Date.Before(items[j].Visit.Date) })
	return items, nil
}

func (m *memoryStore) GetClientMembership(_ context.Context, visitID, clientID string) (*domain.VisitClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[visitID]
	if !ok {
		return nil, nil
	}
	for _, c := range v.Clients {
		if c.ClientID == clientID {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) UpdateClientFields(_ context.Context, visitID, clientID string, update repository.ClientUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return false, err
	}
	if m.noRows {
		return false, nil
	}
	v, ok := m.visits[visitID]
	if !ok {
		return false, nil
	}
	for i := range v.Clients {
		c := &v.Clients[i]
		if c.ClientID != clientID {
			continue
		}
		if update.Status != nil {
			c.Status = *update.Status
		}
		if update.Find != nil {
			c.Find = update.Find
		}
		if update.Filename != nil {
			c.Filename = update.Filename
		}
		if update.FilenameURL != nil {
			c.FilenameURL = update.FilenameURL
		}
		if update.ClearFile {
			if update.Filename == nil {
				c.Filename = nil
			}
			if update.FilenameURL == nil {
				c.FilenameURL = nil
			}
		}
		m.updates++
		return true, nil
	}
	return false, nil
}

func (m *memoryStore) ListClients(_ context.Context, visitID string) ([]domain.VisitClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[visitID]
	if !ok {
		return []domain.VisitClient{}, nil
	}
	return append([]domain.VisitClient(nil), v.Clients...), nil
}

func (m *memoryStore) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

type fakeDirectory struct {
	known    map[string]identity.Record
	noDetail map[string]bool
	calls    []string
}

func newFakeDirectory(ids ...string) *fakeDirectory {
	d := &fakeDirectory{known: map[string]identity.Record{}, noDetail: map[string]bool{}}
	for _, id := range ids {
		d.known[id] = identity.Record{"id": id, "name": "user " + id[:4]}
	}
	return d
}

func (d *fakeDirectory) Exists(_ context.Context, id string) bool {
	d.calls = append(d.calls, id)
	_, ok := d.known[id]
	return ok
}

func (d *fakeDirectory) FetchDetail(_ context.Context, id string) (identity.Record, bool) {
	record, ok := d.known[id]
	if !ok || d.noDetail[id] {
		return nil, false
	}
	return record, true
}

type fakeObjects struct {
	max      int64
	uploaded map[string]string
	err      error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{max: 10 * 1024 * 1024, uploaded: map[string]string{}}
}

func (f *fakeObjects) MaxUploadSize() int64 { return f.max }

func (f *fakeObjects) Upload(_ context.Context, r io.Reader, _ int64, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.uploaded[name] = string(data)
	return "https://objects.example/" + name, nil
}

type fakeCleanup struct {
	scheduled []scheduler.OrphanObjectPayload
}

func (f *fakeCleanup) ScheduleOrphanCleanup(_ context.Context, p scheduler.OrphanObjectPayload) error {
	f.scheduled = append(f.scheduled, p)
	return nil
}

var errStoreDown = errors.New("connection refused")

func strptr(s string) *string { return &s }

func reader(s string) io.Reader { return strings.NewReader(s) }
