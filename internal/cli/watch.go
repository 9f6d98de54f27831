package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ratnav/internal/logger"
	"ratnav/internal/pipeline"
)

var watchOrigin string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a chat stream on stdin for dispatch signals",
	Long: "Reads chat lines from stdin and prints a jump calculation for every\n" +
		"dispatch announcement. Lines may carry the speaker as \"<nick> message\"\n" +
		"or \"nick: message\"; bare lines are attributed to the configured\n" +
		"announcer, which makes piping raw logs easy.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}

		origin := watchOrigin
		if origin == "" {
			origin = cfg.HomeSystem
		}

		store := openStore()
		if store != nil {
			defer store.Close()
		}
		resolver := newResolver(cfg, store)

		var history pipeline.History
		if store != nil {
			history = store
		}
		pipe := pipeline.New(cfg, resolver, history)

		logger.Banner(RootCmd.Version)
		logger.Info("Watch", fmt.Sprintf("announcer=%s origin=%s range=%.1f LY",
			cfg.Announcer, origin, cfg.Ship.LadenJumpRangeLY))

		// The stream must never block on a slow lookup: each line is handled
		// on its own goroutine, bounded by a semaphore.
		var (
			wg  sync.WaitGroup
			sem = make(chan struct{}, 8)
			out sync.Mutex
		)
		ctx := context.Background()

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			announcer, msg := splitChatLine(line, cfg.Announcer)

			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				result, ok := pipe.HandleLine(ctx, msg, announcer, origin)
				if !ok {
					return
				}
				out.Lock()
				defer out.Unlock()
				logger.Success("Signal", result)
			}()
		}
		wg.Wait()

		if err := scanner.Err(); err != nil {
			exitErr("read stdin", err)
		}
	},
}

// splitChatLine separates the speaker from the message. Supported shapes:
// "<nick> message", "nick: message" (nick without spaces), and bare
// messages, which are attributed to fallback.
func splitChatLine(line, fallback string) (announcer, msg string) {
	if strings.HasPrefix(line, "<") {
		if end := strings.Index(line, ">"); end > 0 {
			return line[1:end], strings.TrimSpace(line[end+1:])
		}
	}
	if i := strings.Index(line, ": "); i > 0 && !strings.ContainsAny(line[:i], " \t") {
		return line[:i], strings.TrimSpace(line[i+2:])
	}
	return fallback, line
}

func init() {
	watchCmd.Flags().StringVar(&watchOrigin, "origin", "", "Origin system (default: home_system from config)")
	RootCmd.AddCommand(watchCmd)
}
