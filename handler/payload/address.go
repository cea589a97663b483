package payload

import "github.com/oullin/profilesync/pkg/iri"

// AddressResponse is the object-expanded address received on GET.
type AddressResponse struct {
	ID         int      `json:"id"`
	Province   iri.Ref  `json:"province"`
	City       iri.Ref  `json:"city"`
	Districts  iri.Refs `json:"districts"`
	Suburb     iri.Ref  `json:"suburb"`
	Settlement iri.Ref  `json:"settlement"`
	Community  iri.Ref  `json:"community"`
	Village    iri.Ref  `json:"village"`
}

// AddressValue is the normalized local selection of administrative levels.
type AddressValue struct {
	ProvinceID   *int  `json:"provinceId" validate:"required"`
	CityID       *int  `json:"cityId" validate:"required_without=DistrictIDs"`
	DistrictIDs  []int `json:"districtIds" validate:"required_without=CityID,dive,gt=0"`
	SuburbID     *int  `json:"suburbId"`
	SettlementID *int  `json:"settlementId"`
	CommunityID  *int  `json:"communityId"`
	VillageID    *int  `json:"villageId"`
}

// AddressSubmission is the IRI form of an address required on PATCH.
type AddressSubmission map[string]any

type AddressData struct {
	ID          string       `json:"id"`
	DisplayText string       `json:"displayText"`
	Value       AddressValue `json:"value"`
}
