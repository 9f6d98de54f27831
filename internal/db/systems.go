package db

import (
	"database/sql"
	"log"
	"time"

	"ratnav/internal/starmap"
)

// GetSystem implements starmap.Store. It returns the stored system, its
// resolution time, and whether a row exists. Freshness is the resolver's
// call, not ours.
func (d *DB) GetSystem(key string) (starmap.StarSystem, time.Time, bool) {
	var (
		sys        starmap.StarSystem
		neutron    sql.NullFloat64
		whiteDwarf sql.NullFloat64
		resolvedAt string
	)
	err := d.sql.QueryRow(
		`SELECT name, x, y, z, neutron_ly, white_dwarf_ly, resolved_at FROM systems WHERE name_key = ?`, key,
	).Scan(&sys.Name, &sys.X, &sys.Y, &sys.Z, &neutron, &whiteDwarf, &resolvedAt)
	if err != nil {
		return starmap.StarSystem{}, time.Time{}, false
	}

	if neutron.Valid {
		v := neutron.Float64
		sys.NeutronDistanceLY = &v
	}
	if whiteDwarf.Valid {
		v := whiteDwarf.Float64
		sys.WhiteDwarfDistanceLY = &v
	}
	at, err := time.Parse(time.RFC3339Nano, resolvedAt)
	if err != nil {
		return starmap.StarSystem{}, time.Time{}, false
	}
	return sys, at, true
}

// PutSystem implements starmap.Store, replacing any existing row for key.
func (d *DB) PutSystem(key string, sys starmap.StarSystem, resolvedAt time.Time) {
	var neutron, whiteDwarf sql.NullFloat64
	if sys.NeutronDistanceLY != nil {
		neutron = sql.NullFloat64{Float64: *sys.NeutronDistanceLY, Valid: true}
	}
	if sys.WhiteDwarfDistanceLY != nil {
		whiteDwarf = sql.NullFloat64{Float64: *sys.WhiteDwarfDistanceLY, Valid: true}
	}
	_, err := d.sql.Exec(
		`INSERT INTO systems (name_key, name, x, y, z, neutron_ly, white_dwarf_ly, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name_key) DO UPDATE SET
			name = excluded.name, x = excluded.x, y = excluded.y, z = excluded.z,
			neutron_ly = excluded.neutron_ly, white_dwarf_ly = excluded.white_dwarf_ly,
			resolved_at = excluded.resolved_at`,
		key, sys.Name, sys.X, sys.Y, sys.Z, neutron, whiteDwarf,
		resolvedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		log.Printf("[DB] put system %q: %v", key, err)
	}
}
