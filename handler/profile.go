package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/address"
	"github.com/oullin/profilesync/pkg/endpoint"
	"github.com/oullin/profilesync/pkg/phone"
	"github.com/oullin/profilesync/pkg/social"
	"github.com/oullin/profilesync/pkg/store"
)

const SelfSubject = "self"

type MutationKind int

const (
	AddressesChanged MutationKind = iota
	EducationChanged
	SocialChanged
	PhonesChanged
	GalleryChanged
	RatingChanged
	AvatarChanged
	EverythingChanged
)

var mutationKindNames = [...]string{"addresses", "education", "social", "phones", "gallery", "rating", "avatar", "everything"}

func (k MutationKind) String() string {
	if k < 0 || int(k) >= len(mutationKindNames) {
		return "unknown"
	}

	return mutationKindNames[k]
}

// ParseMutationKind maps a slice name back to its kind. An empty name
// refreshes everything.
func ParseMutationKind(name string) (MutationKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EverythingChanged, nil
	}

	for i, candidate := range mutationKindNames {
		if candidate == name {
			return MutationKind(i), nil
		}
	}

	return 0, fmt.Errorf("unknown profile slice %q", name)
}

// SnapshotWriter persists every successfully loaded profile.
type SnapshotWriter interface {
	Save(ctx context.Context, subject string, profile payload.ProfileData) error
}

type ProfileViewConfig struct {
	Users     *UsersAPI
	Geo       *Geo
	Store     *store.Store
	Gallery   *Gallery
	Reviews   *Reviews
	Resolve   func(path string) string
	Snapshots SnapshotWriter
}

// ProfileView composes the user aggregate, its gallery and its reviews into
// the read model kept in the store.
type ProfileView struct {
	users     *UsersAPI
	geo       *Geo
	store     *store.Store
	gallery   *Gallery
	reviews   *Reviews
	resolve   func(path string) string
	snapshots SnapshotWriter
}

func MakeProfileView(cfg ProfileViewConfig) *ProfileView {
	resolve := cfg.Resolve
	if resolve == nil {
		resolve = func(path string) string { return path }
	}

	return &ProfileView{
		users:     cfg.Users,
		geo:       cfg.Geo,
		store:     cfg.Store,
		gallery:   cfg.Gallery,
		reviews:   cfg.Reviews,
		resolve:   resolve,
		snapshots: cfg.Snapshots,
	}
}

// Load rebuilds the read model of subject ("self" or a user id). A failed
// fetch of the user aggregate yields an empty profile instead of an error,
// and a previously loaded read model is kept in the store.
func (v *ProfileView) Load(ctx context.Context, subject string) payload.ProfileData {
	user, err := v.fetch(ctx, subject)
	if err != nil {
		slog.Error("could not load profile", "subject", subject, "error", err)
		endpoint.Capture(ctx, err)

		if v.store.Snapshot().IsEmpty() {
			v.store.Dispatch(store.Replaced{})
		}

		return payload.ProfileData{}
	}

	profile := BuildProfile(user, v.occupationTitles(ctx), v.resolve)

	if v.gallery != nil {
		if id, items, err := v.gallery.Images(ctx, user.ID); err != nil {
			slog.Warn("could not load gallery", "user", user.ID, "error", err)
		} else {
			profile.GalleryID = id
			profile.WorkExamples = items
		}
	}

	if v.reviews != nil {
		if reviews, err := v.reviews.List(ctx, user.ID); err != nil {
			slog.Warn("could not load reviews", "user", user.ID, "error", err)
		} else {
			profile.Reviews = len(reviews)
			profile.LatestReviews = Summaries(reviews, LatestReviewsLimit)
		}
	}

	v.store.Dispatch(store.Replaced{Profile: profile})

	if v.snapshots != nil {
		if err := v.snapshots.Save(ctx, subject, profile); err != nil {
			slog.Warn("could not save profile snapshot", "subject", subject, "error", err)
		}
	}

	slog.Info("profile loaded", "subject", subject, "user", profile.ID)

	return profile
}

// RefreshAfter reloads only the slice a mutation touched.
func (v *ProfileView) RefreshAfter(ctx context.Context, kind MutationKind) error {
	current := v.store.Snapshot()
	if current.IsEmpty() {
		return ErrProfileNotLoaded
	}

	switch kind {
	case GalleryChanged:
		if v.gallery == nil {
			return nil
		}

		id, items, err := v.gallery.Images(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("refresh gallery: %w", err)
		}

		v.store.Dispatch(store.GalleryUpdated{GalleryID: id, Items: items})

		return nil
	case RatingChanged:
		if v.reviews == nil {
			return nil
		}

		reviews, err := v.reviews.List(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("refresh reviews: %w", err)
		}

		user, err := v.users.GetUser(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("refresh rating: %w", err)
		}

		v.store.Dispatch(
			store.RatingUpdated{Rating: user.Rating, Reviews: len(reviews)},
			store.ReviewsUpdated{Items: Summaries(reviews, LatestReviewsLimit)},
		)

		return nil
	case EverythingChanged:
		if v.Load(ctx, strconv.Itoa(current.ID)).IsEmpty() {
			return fmt.Errorf("refresh profile %d failed", current.ID)
		}

		return nil
	}

	user, err := v.users.GetUser(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", kind, err)
	}

	fresh := BuildProfile(user, v.occupationTitles(ctx), v.resolve)

	switch kind {
	case AddressesChanged:
		v.store.Dispatch(store.AddressesUpdated{Items: fresh.Addresses})
	case EducationChanged:
		v.store.Dispatch(store.EducationUpdated{Items: fresh.Education})
	case SocialChanged:
		v.store.Dispatch(store.SocialUpdated{Items: fresh.SocialNetworks})
	case PhonesChanged:
		v.store.Dispatch(store.PhonesUpdated{Items: fresh.Phones})
	case AvatarChanged:
		v.store.Dispatch(store.AvatarUpdated{URL: fresh.Avatar})
	}

	return nil
}

func (v *ProfileView) Current() payload.ProfileData {
	return v.store.Snapshot()
}

func (v *ProfileView) fetch(ctx context.Context, subject string) (payload.UserResponse, error) {
	subject = strings.TrimSpace(subject)

	if subject == "" || strings.EqualFold(subject, SelfSubject) {
		return v.users.GetMe(ctx)
	}

	id, err := strconv.Atoi(subject)
	if err != nil || id <= 0 {
		return payload.UserResponse{}, fmt.Errorf("invalid subject %q", subject)
	}

	return v.users.GetUser(ctx, id)
}

// occupationTitles degrades to an empty catalog so unresolved specialties
// render as empty strings.
func (v *ProfileView) occupationTitles(ctx context.Context) map[int]string {
	if v.geo == nil {
		return map[int]string{}
	}

	titles, err := v.geo.OccupationTitles(ctx)
	if err != nil {
		slog.Warn("could not load occupation catalog", "error", err)

		return map[int]string{}
	}

	return titles
}

// BuildProfile derives the read model from the user aggregate.
func BuildProfile(user payload.UserResponse, occupations map[int]string, resolve func(string) string) payload.ProfileData {
	profile := payload.ProfileData{
		ID:              user.ID,
		Name:            user.DisplayName(),
		Email:           user.Email,
		Gender:          user.Gender,
		DateOfBirth:     user.DateOfBirth,
		Rating:          user.Rating,
		Avatar:          Avatar(user, resolve),
		CanWorkRemotely: user.RemoteWork,
		Phones:          phone.FromFields(user.Phone1, user.Phone2),
	}

	for _, ref := range user.Occupation {
		title := ref.Title
		if title == "" {
			title = occupations[ref.ID]
		}

		if title != "" {
			profile.Specialties = append(profile.Specialties, title)
		}
	}

	for _, item := range user.Addresses {
		profile.Addresses = append(profile.Addresses, address.ToData(item))
	}

	profile.WorkArea = address.WorkArea(profile.Addresses)

	for _, item := range user.SocialNetworks {
		profile.SocialNetworks = append(profile.SocialNetworks, social.ToData(item))
	}

	for _, item := range user.Educations {
		profile.Education = append(profile.Education, EducationDataFrom(item, occupations))
	}

	for _, ticket := range user.Tickets {
		profile.Services = append(profile.Services, payload.ServiceData{
			ID:     ticket.ID,
			Title:  ticket.Title,
			Budget: ticket.Budget,
			Active: ticket.Active,
		})
	}

	return profile
}

// Avatar prefers the locally hosted image over the external provider URL.
func Avatar(user payload.UserResponse, resolve func(string) string) string {
	if image := strings.TrimSpace(user.Image); image != "" {
		return resolve(image)
	}

	return strings.TrimSpace(user.ImageExternalURL)
}

func EducationDataFrom(res payload.EducationResponse, occupations map[int]string) payload.EducationData {
	specialty := ""
	if !res.Occupation.IsZero() {
		specialty = res.Occupation.Title
		if specialty == "" {
			specialty = occupations[res.Occupation.ID]
		}
	}

	data := payload.EducationData{
		ID:                strconv.Itoa(res.ID),
		Institution:       res.Institution,
		Specialty:         specialty,
		OccupationIRI:     res.Occupation.Canonical(occupationsResource),
		StartYear:         int(res.DateStart),
		CurrentlyStudying: res.CurrentlyStudying,
	}

	if !res.CurrentlyStudying {
		data.EndYear = res.DateEnd.Ptr()
	}

	return data
}
