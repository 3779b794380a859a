package storage

import (
	"sync"

	"github.com/eugenenazirov/packing-assistant/internal/packing"
)

// ErrInvalidTuning indicates the provided tuning violates validation rules.
var ErrInvalidTuning = packing.ErrInvalidTuning

// Storage provides access to the fitter tuning used by the engine.
type Storage interface {
	GetTuning() (packing.Tuning, error)
	SetTuning(tuning packing.Tuning) error
}

// MemoryStorage keeps the tuning in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	tuning packing.Tuning
}

// NewMemoryStorage initialises storage with the default tuning.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tuning: packing.DefaultTuning(),
	}
}

// GetTuning returns a defensive copy of the current tuning.
func (s *MemoryStorage) GetTuning() (packing.Tuning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tuning.Clone(), nil
}

// SetTuning validates and stores a copy of the provided tuning.
func (s *MemoryStorage) SetTuning(tuning packing.Tuning) error {
	if err := tuning.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.tuning = tuning.Clone()
	s.mu.Unlock()

	return nil
}
