package socialgram

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"

	"Socialgram/cache"
	"Socialgram/config"
	"Socialgram/database"
	"Socialgram/mediastore"
	"Socialgram/metrics"
	"Socialgram/seed"
	"Socialgram/snapshot"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const usage = "usage: socialgram migrate | seed [-reset] | export-post [-presign] <id> | delete-post <id>"

var ErrUsage = errors.New(usage)

type app struct {
	cfg      *config.Config
	db       *gorm.DB
	registry *prometheus.Registry
	stdout   io.Writer
}

// Run executes one operator subcommand against the configured database.
func Run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	var cmd func(context.Context, *app, []string) error
	switch args[0] {
	case "migrate":
		cmd = runMigrate
	case "seed":
		cmd = runSeed
	case "export-post":
		cmd = runExportPost
	case "delete-post":
		cmd = runDeletePost
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()
	a, err := open(ctx, cfg, stdout)
	if err != nil {
		return err
	}
	defer a.close()

	return cmd(ctx, a, args[1:])
}

func open(ctx context.Context, cfg *config.Config, stdout io.Writer) (*app, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	plugin, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	if err := db.Use(plugin); err != nil {
		return nil, fmt.Errorf("failed to register metrics plugin: %w", err)
	}
	if err := snapshot.RegisterInvalidation(db); err != nil {
		return nil, fmt.Errorf("failed to register snapshot callbacks: %w", err)
	}

	if err := cache.Init(ctx, cfg.RedisURL); err != nil {
		// Snapshots still work straight from the database.
		log.Printf("cache disabled: %v", err)
	}

	return &app{cfg: cfg, db: db, registry: registry, stdout: stdout}, nil
}

func (a *app) close() {
	if err := cache.Close(); err != nil {
		log.Printf("failed to close redis: %v", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func runMigrate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := database.Migrate(ctx, a.db, a.cfg); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "schema is up to date")
	return nil
}

func runSeed(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	reset := fs.Bool("reset", false, "drop and recreate the tables before seeding")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := seed.Load(a.db.WithContext(ctx), *reset); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "seed data loaded")

	if a.cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsTextfile, a.registry); err != nil {
			return fmt.Errorf("failed to write metrics textfile: %w", err)
		}
	}
	return nil
}

func runExportPost(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export-post", flag.ContinueOnError)
	presign := fs.Bool("presign", false, "replace s3:// media urls with presigned links")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parsePostID(fs)
	if err != nil {
		return err
	}

	payload, err := snapshot.PostJSON(ctx, a.db, id, a.cfg.SnapshotTTL)
	if err != nil {
		return err
	}

	if *presign {
		store, err := mediastore.New(ctx, a.cfg.AWSRegion, a.cfg.PresignExpiry)
		if err != nil {
			return err
		}
		var post map[string]interface{}
		if err := json.Unmarshal(payload, &post); err != nil {
			return fmt.Errorf("failed to decode post snapshot: %w", err)
		}
		if err := store.ResolvePostMedia(ctx, post); err != nil {
			return err
		}
		if payload, err = json.Marshal(post); err != nil {
			return fmt.Errorf("failed to encode post %d: %w", id, err)
		}
	}

	_, err = fmt.Fprintf(a.stdout, "%s\n", payload)
	return err
}

func runDeletePost(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("delete-post", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parsePostID(fs)
	if err != nil {
		return err
	}

	deleted, err := snapshot.DeletePost(ctx, a.db, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("post %d not found", id)
	}
	fmt.Fprintf(a.stdout, "deleted post %d\n", id)
	return nil
}

func parsePostID(fs *flag.FlagSet) (uint, error) {
	if fs.NArg() != 1 {
		return 0, ErrUsage
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q", fs.Arg(0))
	}
	return uint(id), nil
}
