package store

import (
	"slices"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/address"
	"github.com/oullin/profilesync/pkg/optimistic"
)

// Replaced swaps the whole model after a full load.
type Replaced struct {
	Profile payload.ProfileData
}

func (u Replaced) Apply(p *payload.ProfileData) {
	*p = u.Profile.Clone()
}

// AddressesUpdated also rederives the work area.
type AddressesUpdated struct {
	Items []payload.AddressData
}

func (u AddressesUpdated) Apply(p *payload.ProfileData) {
	p.Addresses = slices.Clone(u.Items)
	p.WorkArea = address.WorkArea(u.Items)
}

type EducationUpdated struct {
	Items []payload.EducationData
}

func (u EducationUpdated) Apply(p *payload.ProfileData) {
	p.Education = slices.Clone(u.Items)
}

// EducationRemoved drops one entry and records it in Removal so a failed
// delete can be undone with EducationRestored.
type EducationRemoved struct {
	ID      string
	Removal *optimistic.Removal[payload.EducationData]
}

func (u EducationRemoved) Apply(p *payload.ProfileData) {
	next, removal := optimistic.Remove(p.Education, func(e payload.EducationData) bool { return e.ID == u.ID })
	p.Education = next

	if u.Removal != nil {
		*u.Removal = removal
	}
}

type EducationRestored struct {
	Removal optimistic.Removal[payload.EducationData]
}

func (u EducationRestored) Apply(p *payload.ProfileData) {
	p.Education = optimistic.Restore(p.Education, u.Removal, func(a, b payload.EducationData) bool { return a.ID == b.ID })
}

type SocialUpdated struct {
	Items []payload.SocialData
}

func (u SocialUpdated) Apply(p *payload.ProfileData) {
	p.SocialNetworks = slices.Clone(u.Items)
}

type PhonesUpdated struct {
	Items []payload.PhoneData
}

func (u PhonesUpdated) Apply(p *payload.ProfileData) {
	p.Phones = slices.Clone(u.Items)
}

type GalleryUpdated struct {
	GalleryID int
	Items     []payload.WorkExampleData
}

func (u GalleryUpdated) Apply(p *payload.ProfileData) {
	if u.GalleryID > 0 {
		p.GalleryID = u.GalleryID
	}

	p.WorkExamples = slices.Clone(u.Items)
}

type RatingUpdated struct {
	Rating  float64
	Reviews int
}

func (u RatingUpdated) Apply(p *payload.ProfileData) {
	p.Rating = u.Rating
	p.Reviews = u.Reviews
}

type ReviewsUpdated struct {
	Items []payload.ReviewSummaryData
}

func (u ReviewsUpdated) Apply(p *payload.ProfileData) {
	p.LatestReviews = slices.Clone(u.Items)
}

type AvatarUpdated struct {
	URL string
}

func (u AvatarUpdated) Apply(p *payload.ProfileData) {
	p.Avatar = u.URL
}
