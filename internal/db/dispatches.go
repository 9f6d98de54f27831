package db

import (
	"fmt"
	"time"

	"ratnav/internal/route"
	"ratnav/internal/signal"
)

// Dispatch is one handled rescue announcement with its computed plan.
type Dispatch struct {
	ID          string
	CreatedAt   time.Time
	CaseID      string
	Commander   string
	Origin      string
	Destination string
	DistanceLY  float64
	Jumps       int
	RouteClass  string
}

// RecordDispatch stores a handled signal and its route plan.
func (d *DB) RecordDispatch(sig *signal.DispatchSignal, plan route.Plan) error {
	_, err := d.sql.Exec(
		`INSERT INTO dispatches (id, created_at, case_id, commander, origin, destination, distance_ly, jumps, route_class)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.newID(),
		time.Now().UTC().Format(time.RFC3339Nano),
		sig.CaseID,
		sig.Commander,
		plan.Origin,
		plan.Destination,
		plan.TotalDistanceLY,
		plan.JumpCount,
		plan.Class.String(),
	)
	if err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}
	return nil
}

// RecentDispatches returns the newest dispatches, most recent first.
func (d *DB) RecentDispatches(limit int) ([]Dispatch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.Query(
		`SELECT id, created_at, case_id, commander, origin, destination, distance_ly, jumps, route_class
		 FROM dispatches ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	var out []Dispatch
	for rows.Next() {
		var (
			dp        Dispatch
			createdAt string
		)
		if err := rows.Scan(&dp.ID, &createdAt, &dp.CaseID, &dp.Commander, &dp.Origin, &dp.Destination,
			&dp.DistanceLY, &dp.Jumps, &dp.RouteClass); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		dp.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, dp)
	}
	return out, rows.Err()
}
