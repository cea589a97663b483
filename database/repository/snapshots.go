package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oullin/profilesync/database"
	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/metal/env"
	"github.com/oullin/profilesync/pkg/gorm"
	"gorm.io/datatypes"
	stdgorm "gorm.io/gorm"
)

// Snapshots keeps the history of synced profiles per subject.
type Snapshots struct {
	DB *database.Connection
}

type SnapshotRecord struct {
	Subject   string
	Profile   payload.ProfileData
	CreatedAt time.Time
}

func (r Snapshots) Save(ctx context.Context, subject string, profile payload.ProfileData) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	row := database.Snapshot{
		UUID:    uuid.NewString(),
		Subject: normaliseSubject(subject),
		UserID:  profile.ID,
		Payload: datatypes.JSON(data),
	}

	if err := r.DB.Sql().WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save snapshot of %s: %w", row.Subject, err)
	}

	return nil
}

// Latest returns the newest snapshot of subject. The boolean is false when
// none has been stored yet.
func (r Snapshots) Latest(ctx context.Context, subject string) (SnapshotRecord, bool, error) {
	row := database.Snapshot{}

	result := r.DB.Sql().
		WithContext(ctx).
		Where("subject = ?", normaliseSubject(subject)).
		Order("created_at DESC").
		Order("id DESC").
		First(&row)

	if gorm.IsNotFound(result.Error) {
		return SnapshotRecord{}, false, nil
	}

	if gorm.HasDbIssues(result.Error) {
		return SnapshotRecord{}, false, fmt.Errorf("find snapshot: %w", result.Error)
	}

	record := SnapshotRecord{Subject: row.Subject, CreatedAt: row.CreatedAt}
	if err := json.Unmarshal(row.Payload, &record.Profile); err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("decode snapshot %s: %w", row.UUID, err)
	}

	return record, true, nil
}

// Prune keeps the newest keep snapshots of subject and deletes the rest.
func (r Snapshots) Prune(ctx context.Context, subject string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	subject = normaliseSubject(subject)

	var removed int64

	err := r.DB.Transaction(ctx, func(tx *stdgorm.DB) error {
		var ids []uint64

		err := tx.Model(&database.Snapshot{}).
			Where("subject = ?", subject).
			Order("created_at DESC").
			Order("id DESC").
			Pluck("id", &ids).Error

		if err != nil {
			return fmt.Errorf("list snapshots to prune: %w", err)
		}

		if len(ids) <= keep {
			return nil
		}

		result := tx.Where("id IN ?", ids[keep:]).Delete(&database.Snapshot{})
		if result.Error != nil {
			return fmt.Errorf("prune snapshots: %w", result.Error)
		}

		removed = result.RowsAffected

		return nil
	})

	return removed, err
}

func normaliseSubject(subject string) string {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return env.SelfSubject
	}

	return subject
}
