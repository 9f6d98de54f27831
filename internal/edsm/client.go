// Package edsm is the EDSM API client used as the coordinate source.
package edsm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ratnav/internal/starmap"
)

const defaultBaseURL = "https://www.edsm.net/api-v1"

// Client is a rate-limited EDSM HTTP client implementing starmap.Source.
type Client struct {
	http *http.Client
	base string
	sem  chan struct{}
}

// NewClient creates an EDSM client with a 30s request timeout and at most
// 4 concurrent lookups (EDSM rate-limits aggressively).
func NewClient() *Client {
	return NewClientWithBase(defaultBaseURL)
}

// NewClientWithBase creates a client against a custom base URL (tests).
func NewClientWithBase(base string) *Client {
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		base: strings.TrimRight(base, "/"),
		sem:  make(chan struct{}, 4),
	}
}

// systemResponse is the EDSM /system payload, reduced to what we use.
type systemResponse struct {
	Name   string `json:"name"`
	Coords *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"coords"`
	PrimaryStar *struct {
		Type    string `json:"type"`
		SubType string `json:"subType"`
	} `json:"primaryStar"`
}

// Lookup fetches coordinates and primary-star info for a system by name.
// EDSM answers an empty object or array for unknown names; both map to
// starmap.ErrNotFound. Transport failures and non-200 statuses map to
// starmap.ErrSourceUnavailable.
func (c *Client) Lookup(ctx context.Context, name string) (starmap.StarSystem, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	q := url.Values{}
	q.Set("systemName", name)
	q.Set("showCoordinates", "1")
	q.Set("showPrimaryStar", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/system?"+q.Encode(), nil)
	if err != nil {
		return starmap.StarSystem{}, fmt.Errorf("edsm: build request: %w", err)
	}
	req.Header.Set("User-Agent", "ratnav/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return starmap.StarSystem{}, fmt.Errorf("edsm: lookup %q: %w", name, ctx.Err())
		}
		return starmap.StarSystem{}, fmt.Errorf("edsm: lookup %q: %w: %v", name, starmap.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return starmap.StarSystem{}, fmt.Errorf("edsm: %d %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), starmap.ErrSourceUnavailable)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return starmap.StarSystem{}, fmt.Errorf("edsm: read response: %w: %v", starmap.ErrSourceUnavailable, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}")) || bytes.Equal(trimmed, []byte("[]")) {
		return starmap.StarSystem{}, fmt.Errorf("edsm: %q: %w", name, starmap.ErrNotFound)
	}

	var sys systemResponse
	if err := json.Unmarshal(trimmed, &sys); err != nil {
		return starmap.StarSystem{}, fmt.Errorf("edsm: decode %q: %w: %v", name, starmap.ErrSourceUnavailable, err)
	}
	if sys.Coords == nil {
		// Known name but no coordinates submitted yet; useless for routing.
		return starmap.StarSystem{}, fmt.Errorf("edsm: %q has no coordinates: %w", name, starmap.ErrNotFound)
	}

	out := starmap.StarSystem{
		Name: sys.Name,
		X:    sys.Coords.X,
		Y:    sys.Coords.Y,
		Z:    sys.Coords.Z,
	}
	if sys.PrimaryStar != nil {
		out.NeutronDistanceLY, out.WhiteDwarfDistanceLY = boostDistances(sys.PrimaryStar.Type, sys.PrimaryStar.SubType)
	}
	return out, nil
}

// boostDistances maps a primary-star classification to boost proximity.
// The primary star sits at the arrival point, so a matching classification
// means distance 0.
func boostDistances(starType, subType string) (neutron, whiteDwarf *float64) {
	if strings.Contains(starType, "Neutron") || strings.Contains(subType, "Neutron") {
		d := 0.0
		neutron = &d
	}
	if strings.Contains(starType, "White Dwarf") ||
		strings.Contains(subType, "DA") || strings.Contains(subType, "DB") || strings.Contains(subType, "DC") {
		d := 0.0
		whiteDwarf = &d
	}
	return neutron, whiteDwarf
}
