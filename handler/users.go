package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/portal"
)

const UsersPath = "/api/users"

var ErrProfileNotLoaded = errors.New("profile is not loaded")

// UsersAPI reads and merge-patches the user aggregate.
type UsersAPI struct {
	client *portal.Client
}

func MakeUsersAPI(client *portal.Client) *UsersAPI {
	return &UsersAPI{client: client}
}

func UserPath(id int) string {
	return fmt.Sprintf("%s/%d", UsersPath, id)
}

func (u *UsersAPI) GetUser(ctx context.Context, id int) (payload.UserResponse, error) {
	var user payload.UserResponse

	if err := u.client.GetJSON(ctx, UserPath(id), &user); err != nil {
		return payload.UserResponse{}, fmt.Errorf("get user %d: %w", id, err)
	}

	return user, nil
}

func (u *UsersAPI) GetMe(ctx context.Context) (payload.UserResponse, error) {
	var user payload.UserResponse

	if err := u.client.GetJSON(ctx, UsersPath+"/me", &user); err != nil {
		return payload.UserResponse{}, fmt.Errorf("get current user: %w", err)
	}

	return user, nil
}

func (u *UsersAPI) PatchUser(ctx context.Context, id int, body map[string]any) error {
	if err := u.client.PatchJSON(ctx, UserPath(id), body, nil); err != nil {
		return fmt.Errorf("patch user %d: %w", id, err)
	}

	return nil
}

// SocialNetworks returns the catalog of networks the backend accepts.
func (u *UsersAPI) SocialNetworks(ctx context.Context) ([]string, error) {
	var keys payload.NetworkKeys

	if err := u.client.GetJSON(ctx, UsersPath+"/social-networks", &keys); err != nil {
		return nil, fmt.Errorf("get social network catalog: %w", err)
	}

	return keys, nil
}
