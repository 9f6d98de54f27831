package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ratnav/internal/logger"
	"ratnav/internal/render"
	"ratnav/internal/route"
	"ratnav/internal/starmap"
)

var routeCmd = &cobra.Command{
	Use:   "route <destination> [origin]",
	Short: "Calculate jumps to a system",
	Long: "Resolves both systems through EDSM and prints the jump count.\n" +
		"Origin defaults to home_system from the config.",
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}

		destName := args[0]
		originName := cfg.HomeSystem
		if len(args) == 2 {
			originName = args[1]
		}

		store := openStore()
		if store != nil {
			defer store.Close()
		}
		resolver := newResolver(cfg, store)
		ctx := context.Background()

		logger.Info("EDSM", fmt.Sprintf("Looking up %s...", originName))
		origin, err := resolver.Resolve(ctx, originName)
		if err != nil {
			exitErr("resolve origin", err)
		}
		logger.Success("EDSM", fmt.Sprintf("%s at (%.1f, %.1f, %.1f)", origin.Name, origin.X, origin.Y, origin.Z))

		logger.Info("EDSM", fmt.Sprintf("Looking up %s...", destName))
		dest, err := resolver.Resolve(ctx, destName)
		if err != nil {
			exitErr("resolve destination", err)
		}
		logger.Success("EDSM", fmt.Sprintf("%s at (%.1f, %.1f, %.1f)", dest.Name, dest.X, dest.Y, dest.Z))
		describeBoosts(dest)

		plan, err := route.Compute(origin, dest,
			cfg.Ship.LadenJumpRangeLY, cfg.NeutronThresholdLY, cfg.WhiteDwarfThresholdLY)
		if err != nil {
			exitErr("plan route", err)
		}

		logger.Section("Route")
		logger.Stats("Ship", fmt.Sprintf("%s (%.1f LY laden)", cfg.Ship.Name, cfg.Ship.LadenJumpRangeLY))
		logger.Stats("Distance", fmt.Sprintf("%.1f LY", plan.TotalDistanceLY))
		logger.Stats("Route class", plan.Class.String())
		logger.Stats("Effective range", fmt.Sprintf("%.1f LY", plan.EffectiveRangeLY))
		logger.Stats("Jumps", plan.JumpCount)
		fmt.Println()
		fmt.Println(render.Render(cfg.ResultFormat, plan))
	},
}

func describeBoosts(sys starmap.StarSystem) {
	if sys.NeutronDistanceLY != nil {
		logger.Info("EDSM", fmt.Sprintf("%s has a neutron star %.0f LY out", sys.Name, *sys.NeutronDistanceLY))
	}
	if sys.WhiteDwarfDistanceLY != nil {
		logger.Info("EDSM", fmt.Sprintf("%s has a white dwarf %.0f LY out", sys.Name, *sys.WhiteDwarfDistanceLY))
	}
}

func init() {
	RootCmd.AddCommand(routeCmd)
}
