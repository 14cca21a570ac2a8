// Package commands holds the vitiharvest CLI command tree.
package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"vitiharvest-backend/lib/configutil"
	"vitiharvest-backend/services/harvest"
	"vitiharvest-backend/services/harvest/db"
	"vitiharvest-backend/services/harvest/scraper"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vitiharvest-cli",
	Short: "vitiharvest-cli harvests VitiBrasil viticulture tables and manages their snapshot store.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	Database db.Config `json:"database"`
	// defaults to the live VitiBrasil site
	BaseUrl string `json:"base_url"`
	// request timeout in seconds, defaults to 30
	TimeoutSeconds int `json:"timeout_seconds"`
}

func defaultConfig() Config {
	return Config{
		Database: db.Config{Driver: "sqlite", Dsn: "snapshots.db"},
	}
}

// createService wires the scrape client and snapshot store per config.json5
// (falling back to a local sqlite store when there is none).
func createService() (harvest.Service, func(), error) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if os.IsNotExist(err) {
		cfg = defaultConfig()
	} else if err != nil {
		return harvest.Service{}, nil, err
	}
	if cfg.Database.Driver == "" {
		cfg.Database = defaultConfig().Database
	}

	store, err := db.Open(cfg.Database)
	if err != nil {
		return harvest.Service{}, nil, err
	}

	client := scraper.NewClient(scraper.ClientOptions{
		BaseUrl: cfg.BaseUrl,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})

	cleanup := func() { store.Close() }
	return harvest.NewService(client, store), cleanup, nil
}
