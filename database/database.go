package database

import (
	"context"
	"embed"
	"log"
	"strings"

	"Socialgram/config"
	"Socialgram/models"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Open connects to the configured database. SQLite connections always
// enforce foreign keys; an in-memory SQLite database is pinned to a single
// connection so every query sees the same schema.
func Open(c *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if c.IsProduction() {
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	switch c.DBDriver {
	case config.DriverPostgres:
		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN: c.PostgresDSN(),
		}), gormConfig)
		if err != nil {
			return nil, errors.Wrap(err, "cannot connect to postgres")
		}
		return db, nil
	case config.DriverSQLite, "":
		return openSQLite(c.SQLitePath, gormConfig)
	default:
		return nil, errors.Errorf("unsupported db driver %q", c.DBDriver)
	}
}

func openSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open sqlite database %s", path)
	}
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "cannot reach sqlite pool")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate brings the schema up to date. PostgreSQL deployments that opt into
// SQL migrations run the embedded goose files; everything else uses
// AutoMigrate.
func Migrate(ctx context.Context, db *gorm.DB, c *config.Config) error {
	if c.DBDriver == config.DriverPostgres && c.SQLMigrations {
		return runSQLMigrations(ctx, db)
	}

	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "unable to run migrations")
	}
	if c.DBDriver == config.DriverPostgres {
		if err := ensureCascadeConstraints(db); err != nil {
			log.Printf("warning: cascade constraints not ensured: %v", err)
		}
	}
	return nil
}

func runSQLMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "cannot reach database pool")
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return errors.Wrap(err, "goose up")
	}
	return nil
}

type cascadeConstraint struct {
	table      string
	name       string
	column     string
	references string
}

var cascadeConstraints = []cascadeConstraint{
	{table: "media", name: "fk_post_media", column: "post_id", references: "post(id)"},
	{table: "comment", name: "fk_post_comments", column: "post_id", references: "post(id)"},
}

// ensureCascadeConstraints upgrades child foreign keys created before they
// cascaded. AutoMigrate only checks that a constraint with the name exists.
func ensureCascadeConstraints(db *gorm.DB) error {
	for _, fk := range cascadeConstraints {
		var deleteAction string
		if err := db.Raw(
			"SELECT confdeltype FROM pg_constraint WHERE conname = ?",
			fk.name,
		).Scan(&deleteAction).Error; err != nil {
			return err
		}
		if deleteAction == "c" {
			continue
		}

		if deleteAction != "" {
			if err := db.Exec(
				"ALTER TABLE " + fk.table + " DROP CONSTRAINT " + fk.name,
			).Error; err != nil {
				return err
			}
		}
		if err := db.Exec(
			"ALTER TABLE " + fk.table + " ADD CONSTRAINT " + fk.name +
				" FOREIGN KEY (" + fk.column + ") REFERENCES " + fk.references + " ON DELETE CASCADE",
		).Error; err != nil {
			return err
		}
	}
	return nil
}
