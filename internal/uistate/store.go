// Package uistate persists canvas view state: where each configuration is
// drawn, whether it is hidden, and the global pan/zoom.
//
// View state lives in its own database (by default a separate file) with its
// own migrations. Nothing in the domain packages reads it.
package uistate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/nerrad567/asset-desk/internal/infrastructure/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the view-state schema for database.DB.MigrateSource.
func Migrations() database.Source {
	return database.Source{FS: migrationsFS, Dir: "migrations"}
}

// Position is where a configuration sits on the canvas.
type Position struct {
	ConfigID int64   `json:"config_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Hidden   bool    `json:"hidden"`
}

// CanvasState is the global zoom and centre of the canvas.
type CanvasState struct {
	Scale   float64 `json:"scale"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// DefaultCanvasState is used when nothing has been saved yet.
var DefaultCanvasState = CanvasState{Scale: 1}

// Store is the view-state capability consumed by front-ends.
type Store interface {
	LoadPositions(ctx context.Context) (map[int64]Position, error)
	// SavePosition moves a configuration and keeps its hidden flag.
	SavePosition(ctx context.Context, configID int64, x, y float64) error
	// SetHidden changes visibility and keeps the position (0,0 when new).
	SetHidden(ctx context.Context, configID int64, hidden bool) error
	// Forget drops the view state of a deleted configuration.
	Forget(ctx context.Context, configID int64) error
	// LoadCanvasState reports ok=false when nothing has been saved.
	LoadCanvasState(ctx context.Context) (state CanvasState, ok bool, err error)
	SaveCanvasState(ctx context.Context, state CanvasState) error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a view-state store. The schema must already be
// applied with Migrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// LoadPositions returns every saved position keyed by configuration id.
func (s *SQLiteStore) LoadPositions(ctx context.Context) (map[int64]Position, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT config_id, x, y, hidden FROM ui_config_positions`)
	if err != nil {
		return nil, fmt.Errorf("querying positions: %w", err)
	}
	defer rows.Close()

	positions := make(map[int64]Position)
	for rows.Next() {
		var p Position
		var hidden int
		if err := rows.Scan(&p.ConfigID, &p.X, &p.Y, &hidden); err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		p.Hidden = hidden != 0
		positions[p.ConfigID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating positions: %w", err)
	}
	return positions, nil
}

// SavePosition upserts the position of a configuration.
func (s *SQLiteStore) SavePosition(ctx context.Context, configID int64, x, y float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ui_config_positions (config_id, x, y, hidden)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(config_id) DO UPDATE SET x = excluded.x, y = excluded.y`,
		configID, x, y,
	)
	if err != nil {
		return fmt.Errorf("saving position: %w", err)
	}
	return nil
}

// SetHidden upserts the hidden flag of a configuration.
func (s *SQLiteStore) SetHidden(ctx context.Context, configID int64, hidden bool) error {
	flag := 0
	if hidden {
		flag = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ui_config_positions (config_id, x, y, hidden)
		VALUES (?, 0, 0, ?)
		ON CONFLICT(config_id) DO UPDATE SET hidden = excluded.hidden`,
		configID, flag,
	)
	if err != nil {
		return fmt.Errorf("saving hidden flag: %w", err)
	}
	return nil
}

// Forget deletes the view state of a configuration. Unknown ids are ignored.
func (s *SQLiteStore) Forget(ctx context.Context, configID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM ui_config_positions WHERE config_id = ?`, configID,
	); err != nil {
		return fmt.Errorf("forgetting position: %w", err)
	}
	return nil
}

// LoadCanvasState returns the saved pan/zoom.
func (s *SQLiteStore) LoadCanvasState(ctx context.Context) (CanvasState, bool, error) {
	var st CanvasState
	err := s.db.QueryRowContext(ctx,
		`SELECT scale, center_x, center_y FROM ui_canvas_state WHERE id = 1`,
	).Scan(&st.Scale, &st.CenterX, &st.CenterY)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultCanvasState, false, nil
	}
	if err != nil {
		return CanvasState{}, false, fmt.Errorf("querying canvas state: %w", err)
	}
	return st, true, nil
}

// SaveCanvasState replaces the saved pan/zoom.
func (s *SQLiteStore) SaveCanvasState(ctx context.Context, state CanvasState) error {
	if state.Scale <= 0 {
		return fmt.Errorf("saving canvas state: scale must be positive, got %v", state.Scale)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ui_canvas_state (id, scale, center_x, center_y)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scale = excluded.scale, center_x = excluded.center_x, center_y = excluded.center_y`,
		state.Scale, state.CenterX, state.CenterY,
	)
	if err != nil {
		return fmt.Errorf("saving canvas state: %w", err)
	}
	return nil
}
