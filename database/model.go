package database

import (
	"regexp"
	"slices"
	"time"

	"gorm.io/datatypes"
)

const SnapshotsTable = "profile_snapshots"

var tableNamePattern = regexp.MustCompile(`^[a-z_]{1,63}$`)

// Snapshot stores one successfully loaded profile.
type Snapshot struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	UUID      string         `gorm:"type:varchar(36);uniqueIndex;not null"`
	Subject   string         `gorm:"type:varchar(32);index:idx_snapshots_subject_created;not null"`
	UserID    int            `gorm:"index;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"index:idx_snapshots_subject_created"`
}

func (Snapshot) TableName() string {
	return SnapshotsTable
}

func Models() []any {
	return []any{&Snapshot{}}
}

func GetSchemaTables() []string {
	return []string{SnapshotsTable}
}

func isValidTable(name string) bool {
	return tableNamePattern.MatchString(name) && slices.Contains(GetSchemaTables(), name)
}
