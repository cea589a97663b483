package handler

import (
	"context"
	"fmt"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/phone"
	"github.com/oullin/profilesync/pkg/reconcile"
	"github.com/oullin/profilesync/pkg/store"
)

type PhonesHandler struct {
	users *UsersAPI
	store *store.Store
}

func MakePhonesHandler(users *UsersAPI, s *store.Store) *PhonesHandler {
	return &PhonesHandler{users: users, store: s}
}

// Set stores the number of the given type, replacing the existing one.
func (h *PhonesHandler) Set(ctx context.Context, kind, number string) ([]payload.PhoneData, error) {
	if err := phone.Validate(kind, number); err != nil {
		return nil, err
	}

	member := payload.PhoneData{ID: phone.IDFor(kind), Number: phone.Normalize(number), Type: kind}

	return h.commit(ctx, reconcile.UpsertOf(member.ID, member))
}

func (h *PhonesHandler) Remove(ctx context.Context, kind string) ([]payload.PhoneData, error) {
	if kind != phone.TypeTJ && kind != phone.TypeInternational {
		return nil, fmt.Errorf("%w: %q", phone.ErrUnknownType, kind)
	}

	return h.commit(ctx, reconcile.DeleteOf[payload.PhoneData](phone.IDFor(kind)))
}

func (h *PhonesHandler) commit(ctx context.Context, m reconcile.Mutation[payload.PhoneData]) ([]payload.PhoneData, error) {
	userID, err := subjectOf(h.store)
	if err != nil {
		return nil, err
	}

	next, err := reconcile.Reconcile(ctx, h.users, userID, reconcile.Phones, m)
	if err != nil {
		return nil, err
	}

	h.store.Dispatch(store.PhonesUpdated{Items: next})

	return next, nil
}
