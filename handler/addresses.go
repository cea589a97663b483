package handler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/address"
	"github.com/oullin/profilesync/pkg/optimistic"
	"github.com/oullin/profilesync/pkg/portal"
	"github.com/oullin/profilesync/pkg/reconcile"
	"github.com/oullin/profilesync/pkg/store"
)

type AddressesHandler struct {
	users     *UsersAPI
	geo       *Geo
	store     *store.Store
	validator *portal.Validator
	now       func() time.Time
}

func MakeAddressesHandler(users *UsersAPI, geo *Geo, s *store.Store, validator *portal.Validator) *AddressesHandler {
	return &AddressesHandler{
		users:     users,
		geo:       geo,
		store:     s,
		validator: validator,
		now:       time.Now,
	}
}

// Add shows the address under a placeholder id right away and replaces the
// collection with the server state once the write succeeds.
func (h *AddressesHandler) Add(ctx context.Context, value payload.AddressValue) ([]payload.AddressData, error) {
	submission, err := h.submission(value)
	if err != nil {
		return nil, err
	}

	placeholder := payload.AddressData{
		ID:          address.NewPlaceholderID(h.now()),
		DisplayText: address.DisplayTextFrom(value, h.titles()),
		Value:       value.Clone(),
	}

	return h.write(ctx, "add address", reconcile.InsertOf(submission), func(items []payload.AddressData) []payload.AddressData {
		return append(slices.Clone(items), placeholder)
	})
}

func (h *AddressesHandler) Update(ctx context.Context, id string, value payload.AddressValue) ([]payload.AddressData, error) {
	if address.IsPlaceholder(id) {
		return nil, fmt.Errorf("address %s is not saved yet", id)
	}

	submission, err := h.submission(value)
	if err != nil {
		return nil, err
	}

	serverID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid address id %q", id)
	}

	submission["id"] = serverID
	display := address.DisplayTextFrom(value, h.titles())

	return h.write(ctx, "update address", reconcile.UpdateOf(id, submission), func(items []payload.AddressData) []payload.AddressData {
		out := slices.Clone(items)
		for i := range out {
			if out[i].ID == id {
				out[i] = payload.AddressData{ID: id, DisplayText: display, Value: value.Clone()}
			}
		}

		return out
	})
}

func (h *AddressesHandler) Delete(ctx context.Context, id string) ([]payload.AddressData, error) {
	return h.write(ctx, "delete address", reconcile.DeleteOf[payload.AddressSubmission](id), func(items []payload.AddressData) []payload.AddressData {
		out, _ := optimistic.Remove(items, func(a payload.AddressData) bool { return a.ID == id })

		return out
	})
}

func (h *AddressesHandler) submission(value payload.AddressValue) (payload.AddressSubmission, error) {
	if h.validator != nil {
		if _, err := h.validator.Rejects(value); err != nil {
			return nil, fmt.Errorf("invalid address: %s", h.validator.GetErrorsAsJson())
		}
	}

	submission := address.Encode(value)
	if submission == nil {
		return nil, fmt.Errorf("invalid address: a province and a city or district are required")
	}

	return submission, nil
}

// write applies local optimistically, reconciles and re-fetches so newly
// created members get their server ids.
func (h *AddressesHandler) write(
	ctx context.Context,
	name string,
	m reconcile.Mutation[payload.AddressSubmission],
	local func([]payload.AddressData) []payload.AddressData,
) ([]payload.AddressData, error) {
	userID, err := subjectOf(h.store)
	if err != nil {
		return nil, err
	}

	before := h.store.Snapshot().Addresses

	err = optimistic.Run(ctx, optimistic.Action{
		Name:  name,
		Apply: func() { h.store.Dispatch(store.AddressesUpdated{Items: local(before)}) },
		Commit: func(ctx context.Context) error {
			_, err := reconcile.Reconcile(ctx, h.users, userID, reconcile.Addresses, m)

			return err
		},
		Compensate: func() { h.store.Dispatch(store.AddressesUpdated{Items: before}) },
	})

	if err != nil {
		return nil, err
	}

	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		slog.Warn("address saved but re-fetch failed", "user", userID, "error", err)

		return h.store.Snapshot().Addresses, nil
	}

	items := make([]payload.AddressData, 0, len(user.Addresses))
	for _, res := range user.Addresses {
		items = append(items, address.ToData(res))
	}

	h.store.Dispatch(store.AddressesUpdated{Items: items})

	return items, nil
}

func (h *AddressesHandler) titles() address.Titles {
	if h.geo == nil {
		return nil
	}

	return h.geo
}
