package store

import (
	"sync"
	"testing"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/optimistic"
)

func seeded() *Store {
	s := New()
	s.Dispatch(Replaced{Profile: payload.ProfileData{
		ID:   3,
		Name: "Farrukh",
		Education: []payload.EducationData{
			{ID: "1", Institution: "TNU"},
			{ID: "2", Institution: "RTSU"},
			{ID: "3", Institution: "KSU"},
		},
		Phones: []payload.PhoneData{{ID: "phone-tj", Number: "+992912345678", Type: "tj"}},
	}})

	return s
}

func TestPartialUpdatesDoNotClobberOtherFields(t *testing.T) {
	s := seeded()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		s.Dispatch(GalleryUpdated{GalleryID: 9, Items: []payload.WorkExampleData{{ID: 1, Path: "/uploads/a.png"}}})
	}()

	go func() {
		defer wg.Done()
		s.Dispatch(RatingUpdated{Rating: 4.3, Reviews: 3})
	}()

	wg.Wait()

	got := s.Snapshot()

	if got.GalleryID != 9 || len(got.WorkExamples) != 1 || got.Rating != 4.3 || got.Reviews != 3 {
		t.Fatalf("concurrent updates were lost: %+v", got)
	}

	if got.Name != "Farrukh" || len(got.Phones) != 1 || len(got.Education) != 3 {
		t.Fatalf("unrelated fields changed: %+v", got)
	}

	if s.Version() != 3 {
		t.Fatalf("expected version 3, got %d", s.Version())
	}
}

func TestAddressesUpdatedDerivesWorkArea(t *testing.T) {
	s := seeded()

	got := s.Dispatch(AddressesUpdated{Items: []payload.AddressData{
		{ID: "1", DisplayText: "Sughd, Khujand"},
		{ID: "2", DisplayText: "Dushanbe"},
	}})

	if got.WorkArea != "Sughd, Khujand; Dushanbe" {
		t.Fatalf("unexpected work area %q", got.WorkArea)
	}
}

func TestEducationRemovalCanBeRestored(t *testing.T) {
	s := seeded()

	var removal optimistic.Removal[payload.EducationData]
	s.Dispatch(EducationRemoved{ID: "2", Removal: &removal})

	if len(s.Snapshot().Education) != 2 || !removal.Found || removal.Index != 1 {
		t.Fatalf("unexpected removal %+v", removal)
	}

	s.Dispatch(EducationUpdated{Items: append(s.Snapshot().Education, payload.EducationData{ID: "4"})})
	got := s.Dispatch(EducationRestored{Removal: removal})

	ids := []string{}
	for _, e := range got.Education {
		ids = append(ids, e.ID)
	}

	if len(ids) != 4 || ids[1] != "2" || ids[3] != "4" {
		t.Fatalf("restore did not merge into the current list: %v", ids)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := seeded()

	snap := s.Snapshot()
	snap.Education[0].Institution = "changed"
	snap.Phones = nil

	got := s.Snapshot()
	if got.Education[0].Institution != "TNU" || len(got.Phones) != 1 {
		t.Fatalf("snapshot shares memory with the store")
	}
}

func TestSubscribersReceiveChanges(t *testing.T) {
	s := seeded()

	var seen []float64
	unsubscribe := s.Subscribe(func(p payload.ProfileData) { seen = append(seen, p.Rating) })

	s.Dispatch(RatingUpdated{Rating: 5, Reviews: 1})
	unsubscribe()
	s.Dispatch(RatingUpdated{Rating: 1, Reviews: 1})

	if len(seen) != 1 || seen[0] != 5 {
		t.Fatalf("unexpected notifications %v", seen)
	}
}
