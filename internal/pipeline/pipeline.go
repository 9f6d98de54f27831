// Package pipeline wires parser, cache, planner, and renderer into the
// single entry point the chat adapter calls per incoming line.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"ratnav/internal/config"
	"ratnav/internal/render"
	"ratnav/internal/route"
	"ratnav/internal/signal"
	"ratnav/internal/starmap"
)

// History records handled dispatches. Optional.
type History interface {
	RecordDispatch(sig *signal.DispatchSignal, plan route.Plan) error
}

// Pipeline handles one chat line end to end. Safe for concurrent use; the
// resolver is the only shared mutable state.
type Pipeline struct {
	cfg      *config.Config
	parser   *signal.Parser
	resolver *starmap.Resolver
	history  History // may be nil
}

// New builds a pipeline around a validated config and an explicitly owned
// resolver. history may be nil.
func New(cfg *config.Config, resolver *starmap.Resolver, history History) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		parser:   &signal.Parser{Keyword: cfg.SignalKeyword},
		resolver: resolver,
		history:  history,
	}
}

// HandleLine processes one chat line. It returns ("", false) when the line
// is not a dispatch (wrong announcer or no grammar match — never logged as
// a failure), and (message, true) otherwise: the rendered route on success,
// or a user-visible notice when parsing was incomplete or a downstream step
// failed. It never panics or aborts the host.
func (p *Pipeline) HandleLine(ctx context.Context, raw, announcer, originName string) (string, bool) {
	if !strings.EqualFold(strings.TrimSpace(announcer), p.cfg.Announcer) {
		return "", false
	}

	sig := p.parser.Parse(raw)
	if sig == nil {
		return "", false
	}
	if sig.Incomplete {
		who := sig.Commander
		if who == "" {
			who = "unknown CMDR"
		}
		return fmt.Sprintf("dispatch for %s has no readable destination system", who), true
	}

	var origin, dest starmap.StarSystem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		origin, err = p.resolver.Resolve(gctx, originName)
		if err != nil {
			return fmt.Errorf("origin %q: %w", originName, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		dest, err = p.resolver.Resolve(gctx, sig.DestinationSystem)
		if err != nil {
			return fmt.Errorf("destination %q: %w", sig.DestinationSystem, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		// The wrapped error names the failing system.
		return fmt.Sprintf("jump calculation failed, %v", err), true
	}

	dest = applyHint(dest, sig.Hint)

	plan, err := route.Compute(origin, dest,
		p.cfg.Ship.LadenJumpRangeLY, p.cfg.NeutronThresholdLY, p.cfg.WhiteDwarfThresholdLY)
	if err != nil {
		return fmt.Sprintf("route calculation to %s failed: %v", sig.DestinationSystem, err), true
	}

	if p.history != nil {
		if err := p.history.RecordDispatch(sig, plan); err != nil {
			log.Printf("[Pipeline] record dispatch: %v", err)
		}
	}

	return render.Render(p.cfg.ResultFormat, plan), true
}

// applyHint backfills boost proximity from the dispatch's parenthesized
// reference clause when the lookup source reported none. The hint names the
// star type near the destination, so it only ever adds data, never
// overrides the source.
func applyHint(sys starmap.StarSystem, hint *signal.ProximityHint) starmap.StarSystem {
	if hint == nil {
		return sys
	}
	dist := hint.DistanceLY
	if strings.EqualFold(hint.Unit, "KLY") {
		dist *= 1000
	}
	starType := strings.ToLower(hint.StarType)
	switch {
	case strings.Contains(starType, "neutron"):
		if sys.NeutronDistanceLY == nil {
			sys.NeutronDistanceLY = &dist
		}
	case strings.Contains(starType, "white dwarf"):
		if sys.WhiteDwarfDistanceLY == nil {
			sys.WhiteDwarfDistanceLY = &dist
		}
	}
	return sys
}
