// Package cli implements the ratnav commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ratnav/internal/config"
	"ratnav/internal/db"
	"ratnav/internal/edsm"
	"ratnav/internal/logger"
	"ratnav/internal/starmap"
)

var (
	cfgPath string
	dbPath  string
	noStore bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "ratnav",
	Short: "Jump calculator for rescue dispatch signals",
	Long: "ratnav watches chat for rescue dispatch announcements, resolves the\n" +
		"destination system through EDSM, and computes how many jumps your ship\n" +
		"needs — accounting for neutron-star and white-dwarf range boosts.",
	SilenceUsage: true,
}

// Execute runs the CLI. version becomes `ratnav --version`.
func Execute(version string) {
	RootCmd.Version = version
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default: "+config.DefaultPath()+")")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ./ratnav.db)")
	RootCmd.PersistentFlags().BoolVar(&noStore, "no-db", false, "Run without the persistent coordinate cache")
}

func configPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath())
}

// openStore opens the SQLite store, or returns nil when disabled or
// unavailable. A broken local database degrades to network-only lookups.
func openStore() *db.DB {
	if noStore {
		return nil
	}
	path := dbPath
	if path == "" {
		path = db.DefaultPath()
	}
	store, err := db.Open(path)
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("persistent cache unavailable: %v", err))
		return nil
	}
	return store
}

// newResolver builds the coordinate resolver around the EDSM client.
// store may be nil.
func newResolver(cfg *config.Config, store *db.DB) *starmap.Resolver {
	var l2 starmap.Store
	if store != nil {
		l2 = store
	}
	return starmap.NewResolver(edsm.NewClient(), l2,
		time.Duration(cfg.CacheTTL), time.Duration(cfg.LookupTimeout))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
