package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("filter"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() on missing key error = %v, want ErrNotFound", err)
	}

	if err := repo.Set("filter", "sepia"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("filter", "vintage"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if err := repo.Set("zoom", "1.5"); err != nil {
		t.Fatal(err)
	}

	if v, err := repo.Get("filter"); err != nil || v != "vintage" {
		t.Errorf("Get(filter) = %q, %v", v, err)
	}

	all, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 || all["zoom"] != "1.5" {
		t.Errorf("All() = %v", all)
	}
}
