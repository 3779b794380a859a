package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eugenenazirov/packing-assistant/internal/datastore"
)

// ListNamespace is the datastore namespace holding saved lists.
const ListNamespace = "packing_lists"

// DatastoreListStore keeps saved lists in the journaled datastore as JSON.
type DatastoreListStore struct {
	store *datastore.Store
}

// NewDatastoreListStore wraps an open datastore.
func NewDatastoreListStore(store *datastore.Store) *DatastoreListStore {
	return &DatastoreListStore{store: store}
}

func (s *DatastoreListStore) Save(_ context.Context, list SavedList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal packing list: %w", err)
	}

	meta := map[string]string{"destination": list.Destination}
	if _, _, err := s.store.Save(ListNamespace, list.ID, data, meta, true); err != nil {
		return fmt.Errorf("failed to save packing list: %w", err)
	}
	return nil
}

func (s *DatastoreListStore) Get(_ context.Context, id string) (SavedList, error) {
	rec, err := s.store.Read(ListNamespace, id)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return SavedList{}, ErrListNotFound
		}
		return SavedList{}, fmt.Errorf("failed to read packing list: %w", err)
	}

	var list SavedList
	if err := json.Unmarshal(rec.Value, &list); err != nil {
		return SavedList{}, fmt.Errorf("failed to unmarshal packing list: %w", err)
	}
	return list, nil
}

func (s *DatastoreListStore) List(_ context.Context) ([]SavedListSummary, error) {
	entries := s.store.Dump(ListNamespace, 0)
	out := make([]SavedListSummary, 0, len(entries))
	for _, entry := range entries {
		var list SavedList
		if err := json.Unmarshal(entry.Value, &list); err != nil {
			return nil, fmt.Errorf("failed to unmarshal packing list %s: %w", entry.Key, err)
		}
		out = append(out, list.Summary())
	}

	sortSummaries(out)
	return out, nil
}

func (s *DatastoreListStore) Delete(_ context.Context, id string) error {
	if err := s.store.Delete(ListNamespace, id); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return ErrListNotFound
		}
		return fmt.Errorf("failed to delete packing list: %w", err)
	}
	return nil
}
