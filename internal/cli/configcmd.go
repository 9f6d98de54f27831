package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ratnav/internal/config"
	"ratnav/internal/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented sample configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath()
		if err := config.WriteSample(path); err != nil {
			exitErr("write config", err)
		}
		logger.Success("Config", fmt.Sprintf("sample written to %s", path))
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(configPath())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}
		logger.Section("Configuration")
		logger.Stats("Announcer", cfg.Announcer)
		logger.Stats("Signal keyword", cfg.SignalKeyword)
		logger.Stats("Home system", cfg.HomeSystem)
		logger.Stats("Ship", fmt.Sprintf("%s (%.1f LY laden)", cfg.Ship.Name, cfg.Ship.LadenJumpRangeLY))
		logger.Stats("Cache TTL", time.Duration(cfg.CacheTTL))
		logger.Stats("Lookup timeout", time.Duration(cfg.LookupTimeout))
		logger.Stats("Neutron threshold", fmt.Sprintf("%.1f LY", cfg.NeutronThresholdLY))
		logger.Stats("White dwarf threshold", fmt.Sprintf("%.1f LY", cfg.WhiteDwarfThresholdLY))
		logger.Stats("Result format", cfg.ResultFormat)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configPathCmd, configShowCmd)
	RootCmd.AddCommand(configCmd)
}
