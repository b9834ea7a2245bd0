package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mattinsler/protos/internal/ir"
)

// Snapshot is one stored compile result.
type Snapshot struct {
	ID              string       `json:"id"`
	Seq             int64        `json:"seq"`
	SpecHash        string       `json:"spec_hash"`
	IRVersion       string       `json:"ir_version"`
	CompilerVersion string       `json:"compiler_version"`
	Sources         []string     `json:"sources"` // descriptor paths, in compile order
	Spec            ir.ProtoSpec `json:"spec"`
	CreatedAt       time.Time    `json:"created_at"`
}

// SnapshotSummary is a Snapshot without its spec, as returned by
// ListSnapshots.
type SnapshotSummary struct {
	ID           string    `json:"id"`
	Seq          int64     `json:"seq"`
	SpecHash     string    `json:"spec_hash"`
	IRVersion    string    `json:"ir_version"`
	EnumCount    int       `json:"enums"`
	MessageCount int       `json:"messages"`
	ServiceCount int       `json:"services"`
	CreatedAt    time.Time `json:"created_at"`
}

// WriteSnapshot records spec and the sources it was compiled from.
// Uses ON CONFLICT(spec_hash) DO NOTHING for idempotency: when an identical
// spec is already stored, the existing snapshot is returned with
// inserted=false and sources are left untouched.
func (s *Store) WriteSnapshot(ctx context.Context, spec ir.ProtoSpec, sources []string) (snap Snapshot, inserted bool, err error) {
	hash, err := ir.SpecHash(spec)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("write snapshot: %w", err)
	}

	sorted := ir.ProtoSpec{
		Enums:    append([]ir.EnumSpec(nil), spec.Enums...),
		Messages: append([]ir.MessageSpec(nil), spec.Messages...),
		Services: append([]ir.ServiceSpec(nil), spec.Services...),
	}
	sorted.Sort()
	specJSON, err := marshalSpec(sorted)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("write snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("write snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id := s.newID()
	createdAt := s.now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots
		(id, spec_hash, ir_version, compiler_version, spec, enum_count, message_count, service_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spec_hash) DO NOTHING
	`,
		id,
		hash,
		ir.IRVersion,
		ir.CompilerVersion,
		specJSON,
		len(sorted.Enums),
		len(sorted.Messages),
		len(sorted.Services),
		formatTime(createdAt),
	)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("write snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("write snapshot: rows affected: %w", err)
	}

	if affected == 0 {
		if err := tx.Commit(); err != nil {
			return Snapshot{}, false, fmt.Errorf("write snapshot: commit: %w", err)
		}
		s.logger.Debug("snapshot already stored", "spec_hash", hash)
		existing, err := s.ReadSnapshotByHash(ctx, hash)
		if err != nil {
			return Snapshot{}, false, fmt.Errorf("write snapshot: %w", err)
		}
		return existing, false, nil
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("write snapshot: last insert id: %w", err)
	}

	for i, src := range sources {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_sources (snapshot_id, position, source)
			VALUES (?, ?, ?)
		`, id, i, src); err != nil {
			return Snapshot{}, false, fmt.Errorf("write snapshot source %q: %w", src, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, false, fmt.Errorf("write snapshot: commit: %w", err)
	}

	s.logger.Debug("snapshot stored",
		"id", id,
		"seq", seq,
		"spec_hash", hash,
		"sources", len(sources))

	stored, err := parseTime(formatTime(createdAt))
	if err != nil {
		return Snapshot{}, false, err
	}
	return Snapshot{
		ID:              id,
		Seq:             seq,
		SpecHash:        hash,
		IRVersion:       ir.IRVersion,
		CompilerVersion: ir.CompilerVersion,
		Sources:         append([]string{}, sources...),
		Spec:            sorted,
		CreatedAt:       stored,
	}, true, nil
}
