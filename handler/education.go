package handler

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/iri"
	"github.com/oullin/profilesync/pkg/optimistic"
	"github.com/oullin/profilesync/pkg/portal"
	"github.com/oullin/profilesync/pkg/reconcile"
	"github.com/oullin/profilesync/pkg/store"
)

type EducationHandler struct {
	users     *UsersAPI
	geo       *Geo
	store     *store.Store
	validator *portal.Validator
}

func MakeEducationHandler(users *UsersAPI, geo *Geo, s *store.Store, validator *portal.Validator) *EducationHandler {
	return &EducationHandler{
		users:     users,
		geo:       geo,
		store:     s,
		validator: validator,
	}
}

func (h *EducationHandler) Add(ctx context.Context, input payload.EducationInput) ([]payload.EducationData, error) {
	member, err := h.payload("new-"+uuid.NewString(), nil, input)
	if err != nil {
		return nil, err
	}

	return h.commit(ctx, reconcile.InsertOf(member))
}

func (h *EducationHandler) Update(ctx context.Context, id string, input payload.EducationInput) ([]payload.EducationData, error) {
	serverID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("education %s is not saved yet", id)
	}

	member, err := h.payload(id, &serverID, input)
	if err != nil {
		return nil, err
	}

	return h.commit(ctx, reconcile.UpdateOf(id, member))
}

// Delete removes the entry from the read model first and puts it back at its
// old position when the write fails.
func (h *EducationHandler) Delete(ctx context.Context, id string) ([]payload.EducationData, error) {
	userID, err := subjectOf(h.store)
	if err != nil {
		return nil, err
	}

	var removal optimistic.Removal[payload.EducationData]
	var next []payload.EducationPayload

	err = optimistic.Run(ctx, optimistic.Action{
		Name:  "delete education",
		Apply: func() { h.store.Dispatch(store.EducationRemoved{ID: id, Removal: &removal}) },
		Commit: func(ctx context.Context) error {
			next, err = reconcile.Reconcile(ctx, h.users, userID, reconcile.Education, reconcile.DeleteOf[payload.EducationPayload](id))

			return err
		},
		Compensate: func() { h.store.Dispatch(store.EducationRestored{Removal: removal}) },
	})

	if err != nil {
		return nil, err
	}

	items := h.data(next)
	h.store.Dispatch(store.EducationUpdated{Items: items})

	return items, nil
}

func (h *EducationHandler) commit(ctx context.Context, m reconcile.Mutation[payload.EducationPayload]) ([]payload.EducationData, error) {
	userID, err := subjectOf(h.store)
	if err != nil {
		return nil, err
	}

	next, err := reconcile.Reconcile(ctx, h.users, userID, reconcile.Education, m)
	if err != nil {
		return nil, err
	}

	items := h.data(next)
	h.store.Dispatch(store.EducationUpdated{Items: items})

	return items, nil
}

func (h *EducationHandler) payload(key string, id *int, input payload.EducationInput) (payload.EducationPayload, error) {
	if h.validator != nil {
		if _, err := h.validator.Rejects(input); err != nil {
			return payload.EducationPayload{}, fmt.Errorf("invalid education: %s", h.validator.GetErrorsAsJson())
		}
	}

	out := payload.EducationPayload{
		Key:               key,
		ID:                id,
		Institution:       input.Institution,
		DateStart:         input.StartYear,
		CurrentlyStudying: input.CurrentlyStudying,
	}

	if input.OccupationID > 0 {
		occupation := iri.Make(occupationsResource, input.OccupationID)
		out.Occupation = &occupation
	}

	if !input.CurrentlyStudying && input.EndYear != nil {
		year := *input.EndYear
		out.DateEnd = &year
	}

	return out, nil
}

// data renders the submitted collection for the read model. New entries keep
// their placeholder id until the next full load.
func (h *EducationHandler) data(members []payload.EducationPayload) []payload.EducationData {
	out := make([]payload.EducationData, 0, len(members))

	for _, m := range members {
		item := payload.EducationData{
			ID:                m.Key,
			Institution:       m.Institution,
			StartYear:         m.DateStart,
			EndYear:           m.DateEnd,
			CurrentlyStudying: m.CurrentlyStudying,
		}

		if m.Occupation != nil {
			item.OccupationIRI = *m.Occupation

			if id, ok := iri.ParseID(*m.Occupation); ok && h.geo != nil {
				item.Specialty = h.geo.OccupationTitle(id)
			}
		}

		out = append(out, item)
	}

	return slices.Clip(out)
}
