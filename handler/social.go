package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/reconcile"
	"github.com/oullin/profilesync/pkg/social"
	"github.com/oullin/profilesync/pkg/store"
)

type SocialHandler struct {
	users *UsersAPI
	store *store.Store
}

func MakeSocialHandler(users *UsersAPI, s *store.Store) *SocialHandler {
	return &SocialHandler{users: users, store: s}
}

// Add appends a network. An empty handle is kept as "present but unset".
func (h *SocialHandler) Add(ctx context.Context, network, raw string) ([]payload.SocialData, error) {
	handle, err := social.Prepare(network, raw)
	if err != nil {
		return nil, err
	}

	for _, item := range h.store.Snapshot().SocialNetworks {
		if item.Network == network {
			return nil, fmt.Errorf("social network %s is already on the profile", network)
		}
	}

	member := payload.SocialPayload{
		Key:     "new-" + uuid.NewString(),
		Network: network,
		Handle:  handlePtr(handle),
	}

	return h.commit(ctx, reconcile.InsertOf(member))
}

func (h *SocialHandler) Update(ctx context.Context, id, raw string) ([]payload.SocialData, error) {
	var current *payload.SocialData

	for _, item := range h.store.Snapshot().SocialNetworks {
		if item.ID == id {
			current = &item
			break
		}
	}

	if current == nil {
		return nil, fmt.Errorf("%w: social network %s", reconcile.ErrMemberNotFound, id)
	}

	handle, err := social.Prepare(current.Network, raw)
	if err != nil {
		return nil, err
	}

	member := payload.SocialPayload{
		Key:     id,
		Network: current.Network,
		Handle:  handlePtr(handle),
	}

	if serverID, err := strconv.Atoi(id); err == nil {
		member.ID = &serverID
	}

	return h.commit(ctx, reconcile.UpdateOf(id, member))
}

func (h *SocialHandler) Delete(ctx context.Context, id string) ([]payload.SocialData, error) {
	return h.commit(ctx, reconcile.DeleteOf[payload.SocialPayload](id))
}

// Available lists the catalog networks the profile can still add.
func (h *SocialHandler) Available(ctx context.Context) ([]string, error) {
	catalog, err := h.users.SocialNetworks(ctx)
	if err != nil {
		return nil, err
	}

	return social.Available(catalog, h.store.Snapshot().SocialNetworks), nil
}

func (h *SocialHandler) commit(ctx context.Context, m reconcile.Mutation[payload.SocialPayload]) ([]payload.SocialData, error) {
	userID, err := subjectOf(h.store)
	if err != nil {
		return nil, err
	}

	next, err := reconcile.Reconcile(ctx, h.users, userID, reconcile.Social, m)
	if err != nil {
		return nil, err
	}

	items := make([]payload.SocialData, 0, len(next))
	for _, member := range next {
		res := payload.SocialResponse{Network: member.Network, Handle: member.Handle}
		data := social.ToData(res)
		data.ID = member.Key
		items = append(items, data)
	}

	h.store.Dispatch(store.SocialUpdated{Items: items})

	return items, nil
}

func handlePtr(handle string) *string {
	if handle == "" {
		return nil
	}

	return &handle
}
