package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/endpoint"
	"github.com/oullin/profilesync/pkg/iri"
	"github.com/oullin/profilesync/pkg/markup"
	"github.com/oullin/profilesync/pkg/media"
	"github.com/oullin/profilesync/pkg/portal"
	"github.com/oullin/profilesync/pkg/rating"
	"github.com/oullin/profilesync/pkg/store"
)

const (
	ReviewsPath        = "/api/reviews"
	LatestReviewsLimit = 3
	reviewImageField   = "imageFile[]"
	ticketsResource    = "tickets"
)

type ReviewsConfig struct {
	Client    *portal.Client
	Users     *UsersAPI
	Store     *store.Store
	Validator *portal.Validator
	MaxBytes  int64
}

// Reviews reads the reviews of a user and keeps the cached rating on the
// user resource in line with them.
type Reviews struct {
	client    *portal.Client
	users     *UsersAPI
	store     *store.Store
	validator *portal.Validator
	maxBytes  int64
}

func MakeReviews(cfg ReviewsConfig) *Reviews {
	validator := cfg.Validator
	if validator == nil {
		validator = portal.GetDefaultValidator()
	}

	return &Reviews{
		client:    cfg.Client,
		users:     cfg.Users,
		store:     cfg.Store,
		validator: validator,
		maxBytes:  cfg.MaxBytes,
	}
}

func ReviewPath(id int) string {
	return fmt.Sprintf("%s/%d", ReviewsPath, id)
}

// List walks every page of the reviews of userID, up to galleryScanPages
// pages. A 404 means the user has no reviews.
func (r *Reviews) List(ctx context.Context, userID int) ([]payload.ReviewResponse, error) {
	var reviews []payload.ReviewResponse

	for number := 1; number <= galleryScanPages; number++ {
		var page payload.Collection[payload.ReviewResponse]

		err := r.client.GetJSON(ctx, ReviewsPath, &page,
			portal.WithQuery("user", strconv.Itoa(userID)),
			portal.WithQuery("page", strconv.Itoa(number)),
		)
		if err != nil {
			if endpoint.IsNotFound(err) {
				return reviews, nil
			}

			return nil, fmt.Errorf("list reviews of user %d page %d: %w", userID, number, err)
		}

		reviews = append(reviews, page.Items...)

		if len(page.Items) == 0 || len(reviews) >= page.Total {
			break
		}
	}

	return reviews, nil
}

// Recompute aggregates the reviews of userID and persists the rating only
// when it differs at display precision.
func (r *Reviews) Recompute(ctx context.Context, userID int) (float64, error) {
	reviews, err := r.List(ctx, userID)
	if err != nil {
		return 0, err
	}

	user, err := r.users.GetUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("recompute rating: %w", err)
	}

	next := rating.Aggregate(reviews)

	if rating.Changed(user.Rating, next) {
		if err := r.users.PatchUser(ctx, userID, map[string]any{"rating": next}); err != nil {
			return user.Rating, fmt.Errorf("persist rating: %w", err)
		}

		slog.Info("rating updated", "user", userID, "from", user.Rating, "to", next, "reviews", len(reviews))
	}

	r.dispatch(userID, next, reviews)

	return next, nil
}

// Create posts a review, uploads its photos and recomputes the rating of
// the reviewed user. Invalid photos are skipped.
func (r *Reviews) Create(ctx context.Context, input payload.ReviewInput, photos []string) (payload.ReviewResponse, []media.Rejection, error) {
	if _, err := r.validator.Rejects(input); err != nil {
		return payload.ReviewResponse{}, nil, fmt.Errorf("invalid review: %s", r.validator.GetErrorsAsJson())
	}

	body := payload.ReviewPayload{
		User:        iri.Make("users", input.UserID),
		Rating:      input.Rating,
		Description: input.Description,
		Type:        input.Type,
	}

	if input.TicketID > 0 {
		ticket := iri.Make(ticketsResource, input.TicketID)
		body.Ticket = &ticket
	}

	var created payload.ReviewResponse
	if err := r.client.PostJSON(ctx, ReviewsPath, body, &created); err != nil {
		return payload.ReviewResponse{}, nil, fmt.Errorf("create review: %w", err)
	}

	slog.Info("review created", "review", created.ID, "user", input.UserID)

	var rejected []media.Rejection

	if len(photos) > 0 {
		files, skipped := media.Screen(photos, r.maxBytes)
		rejected = skipped

		if len(files) > 0 {
			parts := make([]portal.Part, 0, len(files))
			for _, file := range files {
				parts = append(parts, portal.Part{Field: reviewImageField, FileName: file.Name, ContentType: file.ContentType, Data: file.Data})
			}

			if err := r.client.PostMultipart(ctx, ReviewPath(created.ID)+"/upload-photo", parts, nil); err != nil {
				return created, rejected, fmt.Errorf("upload review photos: %w", err)
			}
		}
	}

	if _, err := r.Recompute(ctx, input.UserID); err != nil {
		return created, rejected, err
	}

	return created, rejected, nil
}

// dispatch touches the store only when it holds the reviewed user.
func (r *Reviews) dispatch(userID int, value float64, reviews []payload.ReviewResponse) {
	if r.store == nil || r.store.Snapshot().ID != userID {
		return
	}

	r.store.Dispatch(
		store.RatingUpdated{Rating: value, Reviews: len(reviews)},
		store.ReviewsUpdated{Items: Summaries(reviews, LatestReviewsLimit)},
	)
}

// Summaries returns the first n reviews as plain-text excerpts.
func Summaries(reviews []payload.ReviewResponse, n int) []payload.ReviewSummaryData {
	if n > len(reviews) || n <= 0 {
		n = len(reviews)
	}

	out := make([]payload.ReviewSummaryData, 0, n)
	for _, review := range reviews[:n] {
		out = append(out, payload.ReviewSummaryData{
			ID:      review.ID,
			Rating:  review.Rating,
			Excerpt: markup.Excerpt(review.Description, markup.ExcerptLength),
			Author:  review.Author.ID,
		})
	}

	return out
}
