package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestStorePutGet(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	s, err := Open(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer s.Close()

	if _, ok, err := s.Get(8, 1); err != nil {
		t.Fatalf("%+v", err)
	} else if ok {
		t.Fatalf("unexpected result")
	}

	want := Result{L: 8, H: 1, Energy: -10.2519, Entropy: 0.4387}
	if err := s.Put(want); err != nil {
		t.Fatalf("%+v", err)
	}
	got, ok, err := s.Get(8, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !ok || got != want {
		t.Fatalf("%+v, expected %+v", got, want)
	}

	// Putting again replaces.
	want.Energy = -10.25
	if err := s.Put(want); err != nil {
		t.Fatalf("%+v", err)
	}
	got, _, err = s.Get(8, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if math.Abs(got.Energy-want.Energy) > 1e-12 {
		t.Fatalf("%f, expected %f", got.Energy, want.Energy)
	}
}

func TestStoreGather(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	s, err := Open(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer s.Close()

	results := []Result{
		{L: 10, H: 0.5, Energy: -9.7, Entropy: 0.1},
		{L: 8, H: 1, Energy: -10.25, Entropy: 0.44},
		{L: 8, H: 0.5, Energy: -7.9, Entropy: 0.12},
	}
	for _, r := range results {
		if err := s.Put(r); err != nil {
			t.Fatalf("%+v", err)
		}
	}

	got, err := s.Gather()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := []Result{results[2], results[1], results[0]}
	if len(got) != len(want) {
		t.Fatalf("%d, expected %d", len(got), len(want))
	}
	for i, r := range got {
		if r != want[i] {
			t.Fatalf("%d: %+v, expected %+v", i, r, want[i])
		}
	}

	// Reopening the same database keeps the rows.
	if err := s.Close(); err != nil {
		t.Fatalf("%+v", err)
	}
	s2, err := Open(s.Path)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer s2.Close()
	got, err = s2.Gather()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("%d, expected %d", len(got), len(want))
	}
}
