package storage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eugenenazirov/packing-assistant/internal/packing"
)

// ErrListNotFound is returned when no saved list has the requested ID.
var ErrListNotFound = errors.New("packing list not found")

// SavedList is a generated packing list kept for later retrieval.
type SavedList struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Destination string           `json:"destination"`
	Request     packing.Request  `json:"request"`
	Response    packing.Response `json:"response"`
}

// SavedListSummary is the listing view of a saved list.
type SavedListSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Destination string    `json:"destination"`
	ItemCount   int       `json:"item_count"`
}

// Summary returns the listing view of l.
func (l SavedList) Summary() SavedListSummary {
	return SavedListSummary{
		ID:          l.ID,
		CreatedAt:   l.CreatedAt,
		Destination: l.Destination,
		ItemCount:   len(l.Response.Items),
	}
}

// NewSavedList stamps a generated list with a fresh ID and creation time.
func NewSavedList(req packing.Request, resp packing.Response, now time.Time) SavedList {
	return SavedList{
		ID:          uuid.NewString(),
		CreatedAt:   now.UTC(),
		Destination: strings.TrimSpace(req.Trip.Destination),
		Request:     req,
		Response:    resp,
	}
}

// ListStore persists saved packing lists.
type ListStore interface {
	Save(ctx context.Context, list SavedList) error
	Get(ctx context.Context, id string) (SavedList, error)
	List(ctx context.Context) ([]SavedListSummary, error)
	Delete(ctx context.Context, id string) error
}

// sortSummaries orders summaries oldest first, ties broken by ID.
func sortSummaries(summaries []SavedListSummary) {
	slices.SortStableFunc(summaries, func(a, b SavedListSummary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// MemoryListStore keeps saved lists in a map guarded by a RWMutex.
type MemoryListStore struct {
	mu    sync.RWMutex
	lists map[string]SavedList
}

// NewMemoryListStore returns an empty in-memory list store.
func NewMemoryListStore() *MemoryListStore {
	return &MemoryListStore{lists: make(map[string]SavedList)}
}

func (s *MemoryListStore) Save(_ context.Context, list SavedList) error {
	s.mu.Lock()
	s.lists[list.ID] = list
	s.mu.Unlock()
	return nil
}

func (s *MemoryListStore) Get(_ context.Context, id string) (SavedList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[id]
	if !ok {
		return SavedList{}, ErrListNotFound
	}
	return list, nil
}

func (s *MemoryListStore) List(_ context.Context) ([]SavedListSummary, error) {
	s.mu.RLock()
	out := make([]SavedListSummary, 0, len(s.lists))
	for _, list := range s.lists {
		out = append(out, list.Summary())
	}
	s.mu.RUnlock()

	sortSummaries(out)
	return out, nil
}

func (s *MemoryListStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[id]; !ok {
		return ErrListNotFound
	}
	delete(s.lists, id)
	return nil
}
