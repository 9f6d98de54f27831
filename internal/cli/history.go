package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ratnav/internal/logger"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently handled dispatches",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		if store == nil {
			exitErr("history", fmt.Errorf("no database available"))
		}
		defer store.Close()

		dispatches, err := store.RecentDispatches(historyLimit)
		if err != nil {
			exitErr("list dispatches", err)
		}
		if len(dispatches) == 0 {
			logger.Info("History", "no dispatches recorded yet")
			return
		}

		logger.Section("Dispatch history")
		for _, d := range dispatches {
			caseID := d.CaseID
			if caseID == "" {
				caseID = "-"
			}
			fmt.Printf("  %s  #%-4s %-20s %s -> %s: %d jumps, %.1f LY (%s)\n",
				d.CreatedAt.Local().Format("2006-01-02 15:04"),
				caseID, d.Commander, d.Origin, d.Destination,
				d.Jumps, d.DistanceLY, d.RouteClass)
		}
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to show")
	RootCmd.AddCommand(historyCmd)
}
