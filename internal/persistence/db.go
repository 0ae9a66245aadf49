// Package persistence provides SQLite-based storage for caravans, exposures, and events.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/engine"
	"github.com/talgya/caravan-needs/internal/exposure"
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/water"
	"github.com/talgya/caravan-needs/internal/world"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS caravans (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		in_flight INTEGER NOT NULL,
		airship INTEGER NOT NULL,
		destination TEXT NOT NULL,
		route_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS members (
		id INTEGER PRIMARY KEY,
		caravan_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		airborne INTEGER NOT NULL,
		dry_ticks INTEGER NOT NULL,
		needs_json TEXT NOT NULL,
		inventory_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exposures (
		id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		caravan_id INTEGER NOT NULL,
		member_id INTEGER NOT NULL,
		member TEXT NOT NULL,
		tier TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_members_caravan ON members(caravan_id, seq);
	CREATE INDEX IF NOT EXISTS idx_exposures_tick ON exposures(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// inTx runs fn in a transaction and commits when it returns nil.
func (db *DB) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveCaravans writes all caravans and their members to the database (full replace).
func (db *DB) SaveCaravans(list []*caravan.Caravan) error {
	return db.inTx(func(tx *sqlx.Tx) error { return writeCaravans(tx, list) })
}

func writeCaravans(tx *sqlx.Tx, list []*caravan.Caravan) error {
	if _, err := tx.Exec("DELETE FROM members"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM caravans"); err != nil {
		return err
	}

	memberStmt, err := tx.Preparex(`INSERT INTO members
		(id, caravan_id, seq, name, kind, alive, airborne, dry_ticks, needs_json, inventory_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer memberStmt.Close()

	for _, c := range list {
		routeJSON, err := json.Marshal(c.Route)
		if err != nil {
			return fmt.Errorf("encode route of caravan %d: %w", c.ID, err)
		}
		_, err = tx.Exec(`INSERT INTO caravans
			(id, name, kind, pos_q, pos_r, in_flight, airship, destination, route_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Kind, c.Position.Q, c.Position.R,
			c.InFlight, c.Airship, c.Dest, string(routeJSON),
		)
		if err != nil {
			return fmt.Errorf("insert caravan %d: %w", c.ID, err)
		}

		for seq, m := range c.Members {
			needsJSON, err := json.Marshal(m.Needs)
			if err != nil {
				return fmt.Errorf("encode needs of member %d: %w", m.ID, err)
			}
			invJSON, err := json.Marshal(m.Inventory)
			if err != nil {
				return fmt.Errorf("encode inventory of member %d: %w", m.ID, err)
			}
			_, err = memberStmt.Exec(
				m.ID, c.ID, seq, m.Name, m.Kind, m.Alive, m.Airborne, m.DryTicks,
				string(needsJSON), string(invJSON),
			)
			if err != nil {
				return fmt.Errorf("insert member %d: %w", m.ID, err)
			}
		}
	}
	return nil
}

type caravanRow struct {
	ID        uint64 `db:"id"`
	Name      string `db:"name"`
	Kind      uint8  `db:"kind"`
	PosQ      int    `db:"pos_q"`
	PosR      int    `db:"pos_r"`
	InFlight  bool   `db:"in_flight"`
	Airship   bool   `db:"airship"`
	Dest      string `db:"destination"`
	RouteJSON string `db:"route_json"`
}

type memberRow struct {
	ID            uint64 `db:"id"`
	CaravanID     uint64 `db:"caravan_id"`
	Seq           int    `db:"seq"`
	Name          string `db:"name"`
	Kind          uint8  `db:"kind"`
	Alive         bool   `db:"alive"`
	Airborne      bool   `db:"airborne"`
	DryTicks      int    `db:"dry_ticks"`
	NeedsJSON     string `db:"needs_json"`
	InventoryJSON string `db:"inventory_json"`
}

// LoadCaravans restores every caravan with its members in their saved order.
func (db *DB) LoadCaravans() ([]*caravan.Caravan, error) {
	var rows []caravanRow
	if err := db.conn.Select(&rows, "SELECT * FROM caravans ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select caravans: %w", err)
	}

	out := make([]*caravan.Caravan, 0, len(rows))
	index := make(map[uint64]*caravan.Caravan, len(rows))
	for _, r := range rows {
		c := &caravan.Caravan{
			ID:       r.ID,
			Name:     r.Name,
			Kind:     caravan.Kind(r.Kind),
			Position: world.HexCoord{Q: r.PosQ, R: r.PosR},
			InFlight: r.InFlight,
			Airship:  r.Airship,
			Dest:     r.Dest,
		}
		if err := json.Unmarshal([]byte(r.RouteJSON), &c.Route); err != nil {
			return nil, fmt.Errorf("decode route of caravan %d: %w", r.ID, err)
		}
		out = append(out, c)
		index[c.ID] = c
	}

	var mrows []memberRow
	if err := db.conn.Select(&mrows, "SELECT * FROM members ORDER BY caravan_id, seq"); err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}
	for _, r := range mrows {
		c := index[r.CaravanID]
		if c == nil {
			slog.Warn("member without caravan", "member", r.ID, "caravan", r.CaravanID)
			continue
		}
		m := &agents.Member{
			ID:        agents.MemberID(r.ID),
			Name:      r.Name,
			Kind:      agents.Kind(r.Kind),
			Alive:     r.Alive,
			Airborne:  r.Airborne,
			CaravanID: r.CaravanID,
			DryTicks:  r.DryTicks,
		}
		if err := json.Unmarshal([]byte(r.NeedsJSON), &m.Needs); err != nil {
			return nil, fmt.Errorf("decode needs of member %d: %w", r.ID, err)
		}
		var inv items.Inventory
		if err := json.Unmarshal([]byte(r.InventoryJSON), &inv); err != nil {
			return nil, fmt.Errorf("decode inventory of member %d: %w", r.ID, err)
		}
		m.Inventory = inv
		c.Members = append(c.Members, m)
	}
	return out, nil
}

// SaveExposures appends exposure records.
func (db *DB) SaveExposures(recs []exposure.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return db.inTx(func(tx *sqlx.Tx) error { return writeExposures(tx, recs) })
}

func writeExposures(tx *sqlx.Tx, recs []exposure.Record) error {
	for _, r := range recs {
		_, err := tx.Exec(
			"INSERT INTO exposures (id, tick, caravan_id, member_id, member, tier) VALUES (?, ?, ?, ?, ?, ?)",
			r.ID.String(), r.Tick, r.CaravanID, r.MemberID, r.Member, r.Tier.String(),
		)
		if err != nil {
			return fmt.Errorf("insert exposure %s: %w", r.ID, err)
		}
	}
	return nil
}

type exposureRow struct {
	ID        string `db:"id"`
	Tick      uint64 `db:"tick"`
	CaravanID uint64 `db:"caravan_id"`
	MemberID  uint64 `db:"member_id"`
	Member    string `db:"member"`
	Tier      string `db:"tier"`
}

// RecentExposures returns the most recent N exposures, newest first.
func (db *DB) RecentExposures(limit int) ([]exposure.Record, error) {
	var rows []exposureRow
	err := db.conn.Select(&rows,
		"SELECT id, tick, caravan_id, member_id, member, tier FROM exposures ORDER BY tick DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	out := make([]exposure.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r exposureRow) record() (exposure.Record, error) {
	var rec exposure.Record
	if err := rec.ID.UnmarshalText([]byte(r.ID)); err != nil {
		return rec, fmt.Errorf("exposure id %q: %w", r.ID, err)
	}
	tier, err := water.ParseTier(r.Tier)
	if err != nil {
		return rec, err
	}
	rec.Tick = r.Tick
	rec.CaravanID = r.CaravanID
	rec.MemberID = agents.MemberID(r.MemberID)
	rec.Member = r.Member
	rec.Tier = tier
	return rec, nil
}

// ExposureCounts returns the number of stored exposures per tier name.
func (db *DB) ExposureCounts() (map[string]int, error) {
	var rows []struct {
		Tier  string `db:"tier"`
		Count int    `db:"n"`
	}
	if err := db.conn.Select(&rows, "SELECT tier, COUNT(*) AS n FROM exposures GROUP BY tier"); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Tier] = r.Count
	}
	return out, nil
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	return db.inTx(func(tx *sqlx.Tx) error { return writeEvents(tx, events) })
}

func writeEvents(tx *sqlx.Tx, events []engine.Event) error {
	for _, e := range events {
		meta := ""
		if len(e.Meta) > 0 {
			raw, err := json.Marshal(e.Meta)
			if err != nil {
				return fmt.Errorf("encode event meta: %w", err)
			}
			meta = string(raw)
		}
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category, meta_json) VALUES (?, ?, ?, ?)",
			e.Tick, e.Description, e.Category, meta,
		)
		if err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}
	return nil
}

const upsertMeta = "INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)"

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(upsertMeta, key, value)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasWorldState reports whether a previous run saved its state.
func (db *DB) HasWorldState() bool {
	_, err := db.GetMeta("last_tick")
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		slog.Warn("checking saved state failed", "error", err)
		return false
	}
	return true
}

// LoadClock returns the tick and season of the last save. A fresh database gives zeros.
func (db *DB) LoadClock() (tick uint64, season uint8, err error) {
	if !db.HasWorldState() {
		return 0, 0, nil
	}
	raw, err := db.GetMeta("last_tick")
	if err != nil {
		return 0, 0, err
	}
	if tick, err = strconv.ParseUint(raw, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("last_tick %q: %w", raw, err)
	}
	if raw, err = db.GetMeta("season"); err != nil {
		return tick, engine.SeasonAt(tick), nil
	}
	s, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("season %q: %w", raw, err)
	}
	return tick, uint8(s), nil
}

// SaveWorldState performs a full save in one transaction: caravans, pending exposures
// and events, and the tick/season metadata. It holds the simulation write lock while
// saving. Pending records leave memory only after the commit succeeds.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	var err error
	sim.Update(func(s *engine.Simulation) {
		err = db.saveLocked(s)
	})
	return err
}

func (db *DB) saveLocked(s *engine.Simulation) error {
	slog.Info("saving world state", "caravans", len(s.Caravans), "pending_exposures", s.Exposures.Pending())

	recs := s.Exposures.Unsaved()
	events := s.UnsavedEvents()
	err := db.inTx(func(tx *sqlx.Tx) error {
		if err := writeCaravans(tx, s.Caravans); err != nil {
			return fmt.Errorf("save caravans: %w", err)
		}
		if err := writeExposures(tx, recs); err != nil {
			return fmt.Errorf("save exposures: %w", err)
		}
		if err := writeEvents(tx, events); err != nil {
			return fmt.Errorf("save events: %w", err)
		}
		meta := [][2]string{
			{"last_tick", strconv.FormatUint(s.CurrentTick(), 10)},
			{"season", strconv.Itoa(int(s.CurrentSeason))},
		}
		for _, kv := range meta {
			if _, err := tx.Exec(upsertMeta, kv[0], kv[1]); err != nil {
				return fmt.Errorf("save meta %s: %w", kv[0], err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Exposures.Ack(len(recs))
	s.AckEvents(len(events))

	slog.Info("world state saved", "exposures", len(recs), "events", len(events))
	return nil
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
