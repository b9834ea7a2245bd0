package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

const snapshotColumns = `id, seq, spec_hash, ir_version, compiler_version, spec, created_at`

// ReadSnapshot returns the snapshot with the given ID.
// Returns ErrNotFound if it does not exist.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE id = ?
	`, id)
	return s.loadSnapshot(ctx, row)
}

// ReadSnapshotByHash returns the snapshot holding the spec with the given
// hash. Returns ErrNotFound if it does not exist.
func (s *Store) ReadSnapshotByHash(ctx context.Context, specHash string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE spec_hash = ?
	`, specHash)
	return s.loadSnapshot(ctx, row)
}

// LatestSnapshot returns the most recently inserted snapshot.
// Returns ErrNotFound on an empty store.
func (s *Store) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		ORDER BY seq DESC
		LIMIT 1
	`)
	return s.loadSnapshot(ctx, row)
}

// ListSnapshots returns every snapshot without its spec, ordered by seq.
// Returns an empty slice (not nil) on an empty store.
func (s *Store) ListSnapshots(ctx context.Context) ([]SnapshotSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, spec_hash, ir_version, enum_count, message_count, service_count, created_at
		FROM snapshots
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := []SnapshotSummary{}
	for rows.Next() {
		var sum SnapshotSummary
		var createdAt string
		if err := rows.Scan(
			&sum.ID,
			&sum.Seq,
			&sum.SpecHash,
			&sum.IRVersion,
			&sum.EnumCount,
			&sum.MessageCount,
			&sum.ServiceCount,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if sum.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return out, nil
}

// readSources returns the sources of a snapshot in position order.
func (s *Store) readSources(ctx context.Context, snapshotID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source
		FROM snapshot_sources
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := []string{}
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}

	return sources, nil
}

func (s *Store) loadSnapshot(ctx context.Context, row *sql.Row) (Snapshot, error) {
	var snap Snapshot
	var specJSON, createdAt string
	err := row.Scan(
		&snap.ID,
		&snap.Seq,
		&snap.SpecHash,
		&snap.IRVersion,
		&snap.CompilerVersion,
		&specJSON,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}

	if snap.Spec, err = unmarshalSpec(specJSON); err != nil {
		return Snapshot{}, err
	}
	if snap.CreatedAt, err = parseTime(createdAt); err != nil {
		return Snapshot{}, err
	}
	if snap.Sources, err = s.readSources(ctx, snap.ID); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
