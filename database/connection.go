package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oullin/profilesync/metal/env"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Connection struct {
	driverName string
	driver     *gorm.DB
}

func MakeConnection(e *env.Environment) (*Connection, error) {
	dbEnv := e.DB

	dialector, err := dialectorFor(dbEnv.DriverName, dbEnv.DSN)
	if err != nil {
		return nil, err
	}

	driver, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dbEnv.DriverName, err)
	}

	return &Connection{
		driver:     driver,
		driverName: dbEnv.DriverName,
	}, nil
}

func dialectorFor(driverName, dsn string) (gorm.Dialector, error) {
	switch driverName {
	case env.DriverSqlite:
		return sqlite.Open(dsn), nil
	case env.DriverPostgres:
		return postgres.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", driverName)
}

// Migrate creates or updates the tables of every model.
func (c *Connection) Migrate() error {
	if err := c.driver.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}

func (c *Connection) Close() bool {
	sqlDB, err := c.driver.DB()
	if err == nil {
		err = sqlDB.Close()
	}

	if err != nil {
		slog.Error("could not close the database", "driver", c.driverName, "error", err)

		return false
	}

	return true
}

// Ping checks that the underlying pool can still reach the database.
func (c *Connection) Ping() error {
	sqlDB, err := c.driver.DB()
	if err != nil {
		return fmt.Errorf("retrieve the %s pool: %w", c.driverName, err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("ping %s: %w", c.driverName, err)
	}

	slog.Debug("database reachable", "driver", c.driverName, "open", sqlDB.Stats().OpenConnections)

	return nil
}

func (c *Connection) DriverName() string {
	return c.driverName
}

func (c *Connection) Sql() *gorm.DB {
	return c.driver
}

// Transaction runs callback in a transaction bound to ctx. The transaction
// rolls back when callback returns an error.
func (c *Connection) Transaction(ctx context.Context, callback func(tx *gorm.DB) error) error {
	return c.driver.WithContext(ctx).Transaction(callback)
}
