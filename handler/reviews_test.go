package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/markup"
)

const reviewsFixture = `[
	{"id":1,"rating":5,"description":"Great"},
	{"id":2,"rating":5,"description":"Fast"},
	{"id":3,"rating":0,"description":"Broken row"},
	{"id":4,"rating":3,"description":"Fine"}
]`

func TestRecomputePersistsChangedRating(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.backend.reply(http.MethodGet, "/api/reviews", http.StatusOK, reviewsFixture)

	r := MakeReviews(ReviewsConfig{Client: f.client, Users: f.users, Store: f.store})

	value, err := r.Recompute(context.Background(), 7)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	if value != 4.3 {
		t.Fatalf("expected 4.3, got %v", value)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPatch, "/api/users/7"), `{"rating":4.3}`)

	if calls := f.backend.callsTo(http.MethodGet, "/api/reviews"); len(calls) != 1 || calls[0].Query != "page=1&user=7" {
		t.Fatalf("unexpected review query %+v", calls)
	}

	if got := f.store.Snapshot(); got.Rating != 4.3 || got.Reviews != 4 || len(got.LatestReviews) != 3 {
		t.Fatalf("store not updated: %v %d %d", got.Rating, got.Reviews, len(got.LatestReviews))
	}
}

func TestRecomputeSkipsWriteWhenRatingIsCurrent(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.backend.reply(http.MethodGet, "/api/reviews", http.StatusOK, `[{"id":1,"rating":4}]`)

	r := MakeReviews(ReviewsConfig{Client: f.client, Users: f.users})

	if _, err := r.Recompute(context.Background(), 7); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	if len(f.backend.callsTo(http.MethodPatch, "/api/users/7")) != 0 {
		t.Fatalf("unchanged rating must not be written")
	}
}

func TestRecomputeWithoutReviewsIsZero(t *testing.T) {
	f := newFixture(t)

	r := MakeReviews(ReviewsConfig{Client: f.client, Users: f.users})

	value, err := r.Recompute(context.Background(), 7)
	if err != nil || value != 0 {
		t.Fatalf("expected 0, got %v %v", value, err)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPatch, "/api/users/7"), `{"rating":0}`)
}

func TestCreateReviewUploadsPhotosAndRecomputes(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.backend.reply(http.MethodPost, "/api/reviews", http.StatusCreated, `{"id":9,"rating":5,"description":"Neat job"}`)
	f.backend.reply(http.MethodPost, "/api/reviews/9/upload-photo", http.StatusCreated, `{}`)
	f.backend.reply(http.MethodGet, "/api/reviews", http.StatusOK, `[{"id":9,"rating":5,"description":"Neat job"}]`)

	r := MakeReviews(ReviewsConfig{Client: f.client, Users: f.users, Store: f.store})
	photo := writePNG(t, t.TempDir(), "work.png")

	created, rejected, err := r.Create(context.Background(), payload.ReviewInput{
		UserID:      7,
		TicketID:    41,
		Rating:      5,
		Description: "Neat job",
		Type:        "client",
	}, []string{photo})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.ID != 9 || len(rejected) != 0 {
		t.Fatalf("unexpected result %+v %+v", created, rejected)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPost, "/api/reviews"), `{"user":"/api/users/7","ticket":"/api/tickets/41","rating":5,"description":"Neat job","type":"client"}`)

	uploads := f.backend.callsTo(http.MethodPost, "/api/reviews/9/upload-photo")
	if len(uploads) != 1 || !containsPart(uploads[0].Body, uploads[0].ContentType, "imageFile[]") {
		t.Fatalf("expected photo upload, got %+v", uploads)
	}

	if f.store.Snapshot().Rating != 5 {
		t.Fatalf("rating not recomputed: %v", f.store.Snapshot().Rating)
	}
}

func TestCreateReviewRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	r := MakeReviews(ReviewsConfig{Client: f.client, Users: f.users})

	if _, _, err := r.Create(context.Background(), payload.ReviewInput{UserID: 7, Rating: 6, Description: "Too good"}, nil); err == nil {
		t.Fatalf("expected out of range rating to be rejected")
	}

	if len(f.backend.callsTo(http.MethodPost, "/api/reviews")) != 0 {
		t.Fatalf("invalid review must not be posted")
	}
}

func TestSummariesStripMarkupAndLimit(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 60) + "</p>"

	reviews := []payload.ReviewResponse{
		{ID: 1, Rating: 5, Description: long},
		{ID: 2, Rating: 4, Description: "<b>ok</b>"},
		{ID: 3, Rating: 3, Description: "fine"},
		{ID: 4, Rating: 2, Description: "meh"},
	}

	got := Summaries(reviews, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}

	if !strings.HasSuffix(got[0].Excerpt, "…") || len([]rune(got[0].Excerpt)) > markup.ExcerptLength+1 {
		t.Fatalf("unexpected excerpt %q", got[0].Excerpt)
	}

	if got[1].Excerpt != "ok" {
		t.Fatalf("markup not stripped: %q", got[1].Excerpt)
	}

	if len(Summaries(reviews[:1], 3)) != 1 || len(Summaries(nil, 3)) != 0 {
		t.Fatalf("limit must not exceed input")
	}
}

func TestRecomputeReadsEveryReviewPage(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.backend.on(http.MethodGet, "/api/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/ld+json")

		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = io.WriteString(w, `{"hydra:member":[{"id":1,"rating":5},{"id":2,"rating":5}],"hydra:totalItems":4}`)
		case "2":
			_, _ = io.WriteString(w, `{"hydra:member":[{"id":3,"rating":1},{"id":4,"rating":1}],"hydra:totalItems":4}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	r := MakeReviews(ReviewsConfig{Client: f.client, Users: f.users, Store: f.store})

	value, err := r.Recompute(context.Background(), 7)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	if value != 3 {
		t.Fatalf("expected 3 across both pages, got %v", value)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPatch, "/api/users/7"), `{"rating":3}`)

	if calls := f.backend.callsTo(http.MethodGet, "/api/reviews"); len(calls) != 2 {
		t.Fatalf("expected two page requests, got %d", len(calls))
	}

	if got := f.store.Snapshot().Reviews; got != 4 {
		t.Fatalf("expected 4 reviews counted, got %d", got)
	}
}
