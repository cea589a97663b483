package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/oullin/profilesync/pkg/address"
)

func TestCatalogsAreLocalizedFilteredAndCached(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodGet, "/api/cities", http.StatusOK, `{"member":[{"id":2,"title":"Khujand","province":"/api/provinces/1"}],"totalItems":1}`)

	for i := 0; i < 2; i++ {
		items, err := f.geo.Cities(context.Background(), 1)
		if err != nil {
			t.Fatalf("cities: %v", err)
		}

		if len(items) != 1 || items[0].Province.ID != 1 {
			t.Fatalf("unexpected cities %+v", items)
		}
	}

	calls := f.backend.callsTo(http.MethodGet, "/api/cities")
	if len(calls) != 1 {
		t.Fatalf("catalog should be cached, got %d requests", len(calls))
	}

	if calls[0].Query != "locale=tg&province=1" {
		t.Fatalf("unexpected query %q", calls[0].Query)
	}

	if f.geo.Title(address.City, 2) != "Khujand" || f.geo.Title(address.City, 3) != "" {
		t.Fatalf("titles not remembered")
	}
}

func TestCatalogErrorsAreNotCached(t *testing.T) {
	f := newFixture(t)

	if _, err := f.geo.Districts(context.Background(), 2); err == nil {
		t.Fatalf("expected error for missing catalog")
	}

	f.backend.reply(http.MethodGet, "/api/districts", http.StatusOK, `[{"id":5,"title":"Old town"}]`)

	items, err := f.geo.Districts(context.Background(), 2)
	if err != nil || len(items) != 1 {
		t.Fatalf("unexpected districts %+v %v", items, err)
	}
}

func TestOccupationTitles(t *testing.T) {
	f := newFixture(t)

	titles, err := f.geo.OccupationTitles(context.Background())
	if err != nil {
		t.Fatalf("occupations: %v", err)
	}

	if titles[4] != "Electrician" || f.geo.OccupationTitle(3) != "Plumber" {
		t.Fatalf("unexpected titles %v", titles)
	}
}
