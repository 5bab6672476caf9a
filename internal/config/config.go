package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pressly/goose/v3"

	"github.com/fluffyriot/ttsync/internal/database"

	_ "github.com/lib/pq"
)

const envPrefix = "TTSYNC_"

type AppConfig struct {
	ListenAddr string `koanf:"listen_addr"`

	// External API
	APIBaseURL string        `koanf:"api_base_url"`
	APIKey     string        `koanf:"api_key"`
	APITimeout time.Duration `koanf:"api_timeout"`

	// Avatar cache
	AvatarDir          string `koanf:"avatar_dir"`
	AvatarPublicPrefix string `koanf:"avatar_public_prefix"`

	// Image proxy
	AllowedImageHosts []string `koanf:"allowed_image_hosts"`
	PlaceholderImage  string   `koanf:"placeholder_image"`

	// Batch pacing: fixed delays between successive profiles, the only
	// rate limiting the external API gets from us.
	ResolveDelay time.Duration `koanf:"resolve_delay"`
	PullDelay    time.Duration `koanf:"pull_delay"`

	SyncInterval time.Duration `koanf:"sync_interval"`
	FailuresLog  string        `koanf:"failures_log"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		ListenAddr:         ":8080",
		APIBaseURL:         "https://api.tikapi.io",
		APITimeout:         60 * time.Second,
		AvatarDir:          "./data/avatars",
		AvatarPublicPrefix: "/avatars",
		AllowedImageHosts:  []string{"tiktokcdn.com", "tiktokcdn-us.com", "tiktokcdn-eu.com"},
		PlaceholderImage:   "/static/default-avatar.png",
		ResolveDelay:       300 * time.Millisecond,
		PullDelay:          500 * time.Millisecond,
		SyncInterval:       6 * time.Hour,
		FailuresLog:        "failed-usernames.txt",
	}
}

// Load layers defaults, an optional YAML file and TTSYNC_* environment
// variables, in that order.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
			log.Printf("Config: loaded %s", path)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if cfg.APIKey == "" {
		log.Println("Config: no API key set, external lookups will be rejected upstream")
	}
	return cfg, nil
}

// LoadDatabase opens Postgres from the POSTGRES_* environment, runs the
// goose migrations and returns the query layer plus the raw handle for
// health pings.
func LoadDatabase() (*database.Queries, *sql.DB, error) {
	dbName := os.Getenv("POSTGRES_DB")
	dbUserName := os.Getenv("POSTGRES_USER")
	dbPassword := os.Getenv("POSTGRES_PASSWORD")
	dbHost := os.Getenv("POSTGRES_HOST")
	if dbHost == "" {
		dbHost = "db:5432"
	}

	if dbName == "" || dbUserName == "" || dbPassword == "" {
		return nil, nil, fmt.Errorf("missing POSTGRES_DB, POSTGRES_USER or POSTGRES_PASSWORD")
	}

	connectDbUrl := fmt.Sprintf("postgres://%v:%v@%v/%v?sslmode=disable", dbUserName, dbPassword, dbHost, dbName)

	db, err := sql.Open("postgres", connectDbUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to the DB: %v", err)
	}

	migrationsDir := "./sql/schema"
	if err := goose.Up(db, migrationsDir); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	version, err := goose.EnsureDBVersion(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get DB version: %v", err)
	}
	log.Printf("Migrations applied successfully. Current DB version: %d", version)

	return database.New(db), db, nil
}
