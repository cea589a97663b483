package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oullin/profilesync/pkg/media"
	"github.com/oullin/profilesync/pkg/portal"
)

const avatarField = "imageFile"

type AvatarHandler struct {
	client   *portal.Client
	view     *ProfileView
	maxBytes int64
}

func MakeAvatarHandler(client *portal.Client, view *ProfileView, maxBytes int64) *AvatarHandler {
	return &AvatarHandler{client: client, view: view, maxBytes: maxBytes}
}

// Upload replaces the profile photo and reloads only the avatar.
func (h *AvatarHandler) Upload(ctx context.Context, path string) (string, error) {
	userID, err := subjectOf(h.view.store)
	if err != nil {
		return "", err
	}

	file, err := media.Load(path, h.maxBytes)
	if err != nil {
		return "", err
	}

	part := portal.Part{
		Field:       avatarField,
		FileName:    file.Name,
		ContentType: file.ContentType,
		Data:        file.Data,
	}

	if err := h.client.PostMultipart(ctx, UserPath(userID)+"/update-photo", []portal.Part{part}, nil); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	slog.Info("avatar uploaded", "user", userID, "file", file.Name)

	if err := h.view.RefreshAfter(ctx, AvatarChanged); err != nil {
		return "", err
	}

	return h.view.Current().Avatar, nil
}
