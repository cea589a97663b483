package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oullin/profilesync/handler/payload"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/oullin/profilesync/pkg/reconcile"

var ErrMemberNotFound = errors.New("reconcile: member not found")

type Op int

const (
	Insert Op = iota
	Update
	Delete
	Upsert
)

func (o Op) String() string {
	switch o {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Upsert:
		return "upsert"
	default:
		return "unknown"
	}
}

// Mutation is the one logical change applied to a collection. Key names the
// member to update or delete; Member is the new value for insert and update.
type Mutation[W any] struct {
	Op     Op
	Key    string
	Member W
}

func InsertOf[W any](member W) Mutation[W] {
	return Mutation[W]{Op: Insert, Member: member}
}

func UpdateOf[W any](key string, member W) Mutation[W] {
	return Mutation[W]{Op: Update, Key: key, Member: member}
}

// UpsertOf replaces the member with the given key, or appends it.
func UpsertOf[W any](key string, member W) Mutation[W] {
	return Mutation[W]{Op: Upsert, Key: key, Member: member}
}

func DeleteOf[W any](key string) Mutation[W] {
	return Mutation[W]{Op: Delete, Key: key}
}

// Users is the owning aggregate: one GET and one merge-patch per reconcile.
type Users interface {
	GetUser(ctx context.Context, id int) (payload.UserResponse, error)
	PatchUser(ctx context.Context, id int, body map[string]any) error
}

// Collection describes one sub-collection of the user aggregate. S is the shape
// received on GET and W the write shape.
type Collection[S any, W any] struct {
	// Field is the aggregate field the collection is written to.
	Field string
	// Extract picks the collection out of the aggregate.
	Extract func(payload.UserResponse) []S
	// Normalize renders one received member in its write shape.
	Normalize func(S) W
	// Key returns the identity of a write member.
	Key func(W) string
	// Encode builds the patch body. When nil the collection is sent under Field.
	Encode func([]W) map[string]any
}

// Reconcile fetches the aggregate, normalizes every member of the
// collection, applies m and writes the whole collection back. The returned
// slice is what was submitted.
func Reconcile[S any, W any](ctx context.Context, users Users, userID int, c Collection[S, W], m Mutation[W]) ([]W, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "reconcile "+c.Field)
	defer span.End()

	span.SetAttributes(
		attribute.String("reconcile.op", m.Op.String()),
		attribute.Int("reconcile.user", userID),
	)

	user, err := users.GetUser(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("reconcile %s: fetch user %d: %w", c.Field, userID, err)
	}

	current := c.Extract(user)
	members := make([]W, 0, len(current)+1)

	for _, item := range current {
		members = append(members, c.Normalize(item))
	}

	next, err := Apply(members, c.Key, m)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("reconcile %s: %w", c.Field, err)
	}

	body := map[string]any{c.Field: next}
	if c.Encode != nil {
		body = c.Encode(next)
	}

	if err := users.PatchUser(ctx, userID, body); err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("reconcile %s: patch user %d: %w", c.Field, userID, err)
	}

	span.SetAttributes(attribute.Int("reconcile.size", len(next)))
	slog.Info("collection reconciled", "field", c.Field, "op", m.Op.String(), "user", userID, "size", len(next))

	return next, nil
}

// Apply performs one mutation on an already normalized collection. The
// result is never nil so an emptied collection is written as [].
func Apply[W any](members []W, key func(W) string, m Mutation[W]) ([]W, error) {
	out := make([]W, 0, len(members)+1)

	switch m.Op {
	case Insert:
		out = append(out, members...)
		out = append(out, m.Member)

		return out, nil
	case Update, Upsert:
		found := false

		for _, item := range members {
			if key(item) == m.Key {
				out = append(out, m.Member)
				found = true

				continue
			}

			out = append(out, item)
		}

		if !found && m.Op == Upsert {
			out = append(out, m.Member)
			found = true
		}

		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, m.Key)
		}

		return out, nil
	case Delete:
		found := false

		for _, item := range members {
			if key(item) == m.Key {
				found = true

				continue
			}

			out = append(out, item)
		}

		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, m.Key)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("reconcile: unknown op %d", m.Op)
	}
}
