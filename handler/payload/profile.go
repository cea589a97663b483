package payload

import "slices"

// ProfileData is the denormalized read model consumed by presentational code.
type ProfileData struct {
	ID              int                 `json:"id"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Gender          string              `json:"gender"`
	DateOfBirth     string              `json:"dateOfBirth"`
	Specialties     []string            `json:"specialties"`
	Rating          float64             `json:"rating"`
	Reviews         int                 `json:"reviews"`
	Avatar          string              `json:"avatar"`
	Education       []EducationData     `json:"education"`
	WorkExamples    []WorkExampleData   `json:"workExamples"`
	GalleryID       int                 `json:"galleryId"`
	WorkArea        string              `json:"workArea"`
	Addresses       []AddressData       `json:"addresses"`
	CanWorkRemotely bool                `json:"canWorkRemotely"`
	Services        []ServiceData       `json:"services"`
	SocialNetworks  []SocialData        `json:"socialNetworks"`
	Phones          []PhoneData         `json:"phones"`
	LatestReviews   []ReviewSummaryData `json:"latestReviews"`
}

func (p ProfileData) IsEmpty() bool {
	return p.ID == 0
}

// Clone returns a copy that shares no slices with the receiver.
func (p ProfileData) Clone() ProfileData {
	out := p

	out.Specialties = slices.Clone(p.Specialties)
	out.WorkExamples = slices.Clone(p.WorkExamples)
	out.Services = slices.Clone(p.Services)
	out.SocialNetworks = slices.Clone(p.SocialNetworks)
	out.Phones = slices.Clone(p.Phones)
	out.LatestReviews = slices.Clone(p.LatestReviews)

	out.Education = make([]EducationData, len(p.Education))
	for i, item := range p.Education {
		out.Education[i] = item
		if item.EndYear != nil {
			year := *item.EndYear
			out.Education[i].EndYear = &year
		}
	}

	out.Addresses = make([]AddressData, len(p.Addresses))
	for i, item := range p.Addresses {
		out.Addresses[i] = item
		out.Addresses[i].Value = item.Value.Clone()
	}

	if p.Education == nil {
		out.Education = nil
	}

	if p.Addresses == nil {
		out.Addresses = nil
	}

	return out
}

func (v AddressValue) Clone() AddressValue {
	return AddressValue{
		ProvinceID:   clonePtr(v.ProvinceID),
		CityID:       clonePtr(v.CityID),
		DistrictIDs:  slices.Clone(v.DistrictIDs),
		SuburbID:     clonePtr(v.SuburbID),
		SettlementID: clonePtr(v.SettlementID),
		CommunityID:  clonePtr(v.CommunityID),
		VillageID:    clonePtr(v.VillageID),
	}
}

func clonePtr(v *int) *int {
	if v == nil {
		return nil
	}

	out := *v

	return &out
}
