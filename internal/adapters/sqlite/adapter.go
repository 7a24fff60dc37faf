// Package sqlite provides SQLite-backed implementations of the repository ports.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/cadenza-labs/cadenza/internal/core/domain"
	"github.com/cadenza-labs/cadenza/internal/core/ports"
)

// Adapter implements ProfileRepository and EnergyStore over a single SQLite file.
type Adapter struct {
	db *sql.DB
}

var (
	_ ports.ProfileRepository = (*Adapter)(nil)
	_ ports.EnergyStore       = (*Adapter)(nil)
)

// NewAdapter opens the database and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return adapter, nil
}

// Close ensures the DB connection is closed gracefully.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		user_id      TEXT PRIMARY KEY,
		profile_id   TEXT NOT NULL,
		snapshot     TEXT NOT NULL,
		last_updated TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS track_energy (
		track_id    TEXT PRIMARY KEY,
		energy      REAL NOT NULL,
		measured_at TIMESTAMP NOT NULL
	);`
	_, err := a.db.Exec(schema)
	return err
}

// GetProfile loads the cached snapshot for a user.
func (a *Adapter) GetProfile(ctx context.Context, userID string) (domain.TasteProfile, error) {
	row := a.db.QueryRowContext(ctx,
		"SELECT snapshot FROM profiles WHERE user_id = ?", userID)

	var snapshot string
	if err := row.Scan(&snapshot); err != nil {
		if err == sql.ErrNoRows {
			return domain.TasteProfile{}, domain.ErrNotFound
		}
		return domain.TasteProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile domain.TasteProfile
	if err := json.Unmarshal([]byte(snapshot), &profile); err != nil {
		return domain.TasteProfile{}, fmt.Errorf("failed to decode profile snapshot: %w", err)
	}
	return profile, nil
}

// SaveProfile upserts the snapshot for a user; refreshes replace, never patch.
func (a *Adapter) SaveProfile(ctx context.Context, profile domain.TasteProfile) error {
	snapshot, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile snapshot: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, profile_id, snapshot, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			profile_id = excluded.profile_id,
			snapshot = excluded.snapshot,
			last_updated = excluded.last_updated
	`, profile.UserID, profile.ID, string(snapshot), profile.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// UpdateTrackEnergy stores a measured preview energy for a track.
func (a *Adapter) UpdateTrackEnergy(ctx context.Context, trackID string, energy float64) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO track_energy (track_id, energy, measured_at)
		VALUES (?, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			energy = excluded.energy,
			measured_at = excluded.measured_at
	`, trackID, energy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save track energy: %w", err)
	}
	return nil
}

// TrackEnergies returns stored energies for the requested tracks. Missing
// tracks are simply absent from the result map.
func (a *Adapter) TrackEnergies(ctx context.Context, trackIDs []string) (map[string]float64, error) {
	energies := make(map[string]float64, len(trackIDs))
	if len(trackIDs) == 0 {
		return energies, nil
	}

	placeholders := strings.Repeat("?,", len(trackIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(trackIDs))
	for i, id := range trackIDs {
		args[i] = id
	}

	rows, err := a.db.QueryContext(ctx,
		"SELECT track_id, energy FROM track_energy WHERE track_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load track energies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var trackID string
		var energy float64
		if err := rows.Scan(&trackID, &energy); err != nil {
			return nil, fmt.Errorf("failed to scan track energy: %w", err)
		}
		energies[trackID] = energy
	}
	return energies, rows.Err()
}
