package firmware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Repository defines the persistence operations for firmware images.
// The SQLite implementation is the production one; tests may substitute
// their own.
type Repository interface {
	// Get retrieves a firmware by (type, version), including its data.
	// Returns ErrNotFound if absent.
	Get(ctx context.Context, fwType, version int32) (*Firmware, error)

	// List retrieves all firmwares without their data payloads.
	List(ctx context.Context) ([]Firmware, error)

	// Create inserts a new firmware and applies the auto-upgrade rule,
	// returning the number of nodes scheduled. Returns ErrExists when the
	// (type, version) pair is already present.
	Create(ctx context.Context, fw *Firmware) (int, error)

	// Update replaces an existing firmware and applies the auto-upgrade
	// rule, returning the number of nodes scheduled. Returns ErrNotFound
	// when the pair is absent.
	Update(ctx context.Context, fw *Firmware) (int, error)

	// Delete removes a firmware. Returns ErrNotFound when absent.
	Delete(ctx context.Context, fwType, version int32) error
}

// SQLiteRepository implements Repository on the shared SQLite handle.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed firmware repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves a firmware by (type, version).
func (r *SQLiteRepository) Get(ctx context.Context, fwType, version int32) (*Firmware, error) {
	query := `
		SELECT firmware_type, firmware_version, name, blocks, crc, data
		FROM firmwares
		WHERE firmware_type = ? AND firmware_version = ?`

	var fw Firmware
	err := r.db.QueryRowContext(ctx, query, fwType, version).Scan(
		&fw.Type, &fw.Version, &fw.Name, &fw.Blocks, &fw.CRC, &fw.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying firmware: %w", err)
	}
	return &fw, nil
}

// List retrieves all firmwares, ordered by key, without data payloads.
func (r *SQLiteRepository) List(ctx context.Context) ([]Firmware, error) {
	query := `
		SELECT firmware_type, firmware_version, name, blocks, crc
		FROM firmwares
		ORDER BY firmware_type, firmware_version`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing firmwares: %w", err)
	}
	defer rows.Close()

	var firmwares []Firmware
	for rows.Next() {
		var fw Firmware
		if err := rows.Scan(&fw.Type, &fw.Version, &fw.Name, &fw.Blocks, &fw.CRC); err != nil {
			return nil, fmt.Errorf("scanning firmware: %w", err)
		}
		firmwares = append(firmwares, fw)
	}
	return firmwares, rows.Err()
}

// Create inserts a new firmware. The insert and the auto-upgrade scan run
// in one transaction so a concurrent FwConfigRequest observes either the
// pre- or post-upload state, never a torn one.
func (r *SQLiteRepository) Create(ctx context.Context, fw *Firmware) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO firmwares (firmware_type, firmware_version, name, blocks, crc, data)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fw.Type, fw.Version, fw.Name, fw.Blocks, fw.CRC, fw.Data)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrExists
		}
		return 0, fmt.Errorf("inserting firmware: %w", err)
	}

	scheduled, err := scheduleAutoUpdates(ctx, tx, fw.Type, fw.Version)
	if err != nil {
		return 0, err
	}

	return scheduled, tx.Commit()
}

// Update replaces an existing firmware in the same transaction as the
// auto-upgrade scan.
func (r *SQLiteRepository) Update(ctx context.Context, fw *Firmware) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE firmwares
		SET name = ?, blocks = ?, crc = ?, data = ?
		WHERE firmware_type = ? AND firmware_version = ?`,
		fw.Name, fw.Blocks, fw.CRC, fw.Data, fw.Type, fw.Version)
	if err != nil {
		return 0, fmt.Errorf("updating firmware: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating firmware: %w", err)
	}
	if affected == 0 {
		return 0, ErrNotFound
	}

	scheduled, err := scheduleAutoUpdates(ctx, tx, fw.Type, fw.Version)
	if err != nil {
		return 0, err
	}

	return scheduled, tx.Commit()
}

// Delete removes a firmware by (type, version).
func (r *SQLiteRepository) Delete(ctx context.Context, fwType, version int32) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM firmwares
		WHERE firmware_type = ? AND firmware_version = ?`,
		fwType, version)
	if err != nil {
		return fmt.Errorf("deleting firmware: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting firmware: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scheduleAutoUpdates bumps the desired version of every node that opted
// into auto-update for this firmware type and is still below the new
// version, marking it scheduled. Returns the number of nodes touched.
func scheduleAutoUpdates(ctx context.Context, tx *sql.Tx, fwType, version int32) (int, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE nodes
		SET desired_firmware_version = ?, scheduled = 1
		WHERE auto_update = 1
		  AND desired_firmware_type = ?
		  AND desired_firmware_version < ?`,
		version, fwType, version)
	if err != nil {
		return 0, fmt.Errorf("scheduling auto updates: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("scheduling auto updates: %w", err)
	}
	return int(affected), nil
}

// isUniqueViolation detects a primary-key collision without depending on
// driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
