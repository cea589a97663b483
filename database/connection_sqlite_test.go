package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/oullin/profilesync/database"
	"github.com/oullin/profilesync/metal/env"
)

func openSqliteFile(t *testing.T) *database.Connection {
	t.Helper()

	conn, err := database.MakeConnection(&env.Environment{
		DB: env.DBEnvironment{
			DriverName: env.DriverSqlite,
			DSN:        filepath.Join(t.TempDir(), "profilesync.db"),
		},
	})
	if err != nil {
		t.Fatalf("make connection: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestSqliteConnectionLifecycle(t *testing.T) {
	conn := openSqliteFile(t)

	if conn.DriverName() != env.DriverSqlite {
		t.Fatalf("unexpected driver %q", conn.DriverName())
	}

	if err := conn.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if !conn.Sql().Migrator().HasTable(database.SnapshotsTable) {
		t.Fatalf("expected %s to exist", database.SnapshotsTable)
	}

	if err := conn.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if !conn.Close() {
		t.Fatalf("expected close to succeed")
	}

	if err := conn.Ping(); err == nil {
		t.Fatalf("ping must fail once the pool is closed")
	}
}

func TestTransactionCommitsOrRollsBack(t *testing.T) {
	conn := openSqliteFile(t)

	if err := conn.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	insert := func(uuid string, fail error) error {
		return conn.Transaction(context.Background(), func(tx *gorm.DB) error {
			row := database.Snapshot{UUID: uuid, Subject: "7", UserID: 7, Payload: []byte(`{}`)}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			return fail
		})
	}

	if err := insert("kept", nil); err != nil {
		t.Fatalf("commit: %v", err)
	}

	rollback := errors.New("abort")
	if err := insert("dropped", rollback); !errors.Is(err, rollback) {
		t.Fatalf("expected callback error, got %v", err)
	}

	var uuids []string
	conn.Sql().Model(&database.Snapshot{}).Pluck("uuid", &uuids)

	if len(uuids) != 1 || uuids[0] != "kept" {
		t.Fatalf("unexpected rows %v", uuids)
	}
}

func TestCloseReportsDriverFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}

	mock.ExpectClose().WillReturnError(errors.New("socket closed"))

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	conn := database.NewConnectionFromGorm(db)

	if conn.Close() {
		t.Fatalf("expected close to report failure")
	}

	if conn.Sql() != db {
		t.Fatalf("expected the wrapped gorm handle")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("close expectations: %v", err)
	}
}

func TestMakeConnectionRejectsUnknownDriver(t *testing.T) {
	if _, err := database.MakeConnection(&env.Environment{DB: env.DBEnvironment{DriverName: "mysql", DSN: "x"}}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
