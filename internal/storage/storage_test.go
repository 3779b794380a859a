package storage

import (
	"errors"
	"sync"
	"testing"

	"github.com/eugenenazirov/packing-assistant/internal/packing"
)

func TestNewMemoryStorageReturnsDefaultTuning(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()

	got, err := store.GetTuning()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := packing.DefaultTuning()
	if got.WeightToVolumeFactor != want.WeightToVolumeFactor || len(got.PriorityScores) != len(want.PriorityScores) {
		t.Fatalf("expected default tuning %+v, got %+v", want, got)
	}

	// ensure mutation safety
	got.PriorityScores[packing.PriorityEssential] = 999
	again, err := store.GetTuning()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.PriorityScores[packing.PriorityEssential] != 100 {
		t.Fatalf("expected defensive copy, got %+v", again)
	}
}

func TestSetTuningUpdatesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	tuning := packing.DefaultTuning()
	tuning.PriorityScores[packing.PriorityLuxury] = 5
	tuning.WeightToVolumeFactor = 0.5

	if err := store.SetTuning(tuning); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tuning.PriorityScores[packing.PriorityLuxury] = 50

	got, err := store.GetTuning()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PriorityScores[packing.PriorityLuxury] != 5 || got.WeightToVolumeFactor != 0.5 {
		t.Fatalf("unexpected tuning %+v", got)
	}
}

func TestSetTuningRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	missing := packing.DefaultTuning()
	delete(missing.PriorityScores, packing.PriorityImportant)
	negative := packing.DefaultTuning()
	negative.PriorityScores[packing.PriorityEssential] = -1
	badFactor := packing.DefaultTuning()
	badFactor.WeightToVolumeFactor = -0.1

	testCases := map[string]packing.Tuning{
		"empty":     {},
		"missing":   missing,
		"negative":  negative,
		"badFactor": badFactor,
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			store := NewMemoryStorage()
			if err := store.SetTuning(tc); !errors.Is(err, ErrInvalidTuning) {
				t.Fatalf("expected ErrInvalidTuning for %+v, got %v", tc, err)
			}
			got, _ := store.GetTuning()
			if got.PriorityScores[packing.PriorityEssential] != 100 {
				t.Fatalf("rejected tuning must not be stored")
			}
		})
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			tuning := packing.DefaultTuning()
			tuning.PriorityScores[packing.PriorityLuxury] = float64(1 + offset)
			if err := store.SetTuning(tuning); err != nil {
				t.Errorf("SetTuning failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.GetTuning(); err != nil {
				t.Errorf("GetTuning failed: %v", err)
			}
		}()
	}

	wg.Wait()

	// final read should succeed
	if _, err := store.GetTuning(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
