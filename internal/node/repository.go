package node

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository defines the persistence operations for nodes.
type Repository interface {
	// Get retrieves a node by id. Returns ErrNodeNotFound if absent.
	Get(ctx context.Context, id uint8) (*Node, error)

	// List retrieves all nodes ordered by id.
	List(ctx context.Context) ([]Node, error)

	// Create inserts a node record.
	Create(ctx context.Context, n *Node) error

	// Update modifies the user-editable fields of a node: name, desired
	// firmware, auto-update flag. Returns ErrNodeNotFound if absent.
	Update(ctx context.Context, n *Node) error

	// Delete removes a node and its sensors. Returns ErrNodeNotFound if
	// absent.
	Delete(ctx context.Context, id uint8) error

	// NextFreeID returns the least id in [MinNodeID, MaxNodeID] not yet in
	// use, or ErrNoFreeNodeID when the range is exhausted.
	NextFreeID(ctx context.Context) (uint8, error)

	// UpdateReportedFirmware records the firmware a node advertised in a
	// config request.
	UpdateReportedFirmware(ctx context.Context, id uint8, fwType, fwVersion int32) error

	// SetParent records the parent reported in a discover response.
	SetParent(ctx context.Context, id, parentID uint8) error
}

// SQLiteRepository implements Repository on the shared SQLite handle.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed node repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const nodeColumns = `node_id, node_name, firmware_type, firmware_version,
	desired_firmware_type, desired_firmware_version, auto_update, scheduled,
	parent_node_id`

// Get retrieves a node by id.
func (r *SQLiteRepository) Get(ctx context.Context, id uint8) (*Node, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE node_id = ?`, id)

	var n Node
	err := row.Scan(&n.ID, &n.Name, &n.FirmwareType, &n.FirmwareVersion,
		&n.DesiredFirmwareType, &n.DesiredFirmwareVersion,
		&n.AutoUpdate, &n.Scheduled, &n.ParentNodeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("querying node: %w", err)
	}
	return &n, nil
}

// List retrieves all nodes ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Node, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes ORDER BY node_id`)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Name, &n.FirmwareType, &n.FirmwareVersion,
			&n.DesiredFirmwareType, &n.DesiredFirmwareVersion,
			&n.AutoUpdate, &n.Scheduled, &n.ParentNodeID); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// Create inserts a node record.
func (r *SQLiteRepository) Create(ctx context.Context, n *Node) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO nodes (node_id, node_name, firmware_type, firmware_version,
			desired_firmware_type, desired_firmware_version, auto_update,
			scheduled, parent_node_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Name, n.FirmwareType, n.FirmwareVersion,
		n.DesiredFirmwareType, n.DesiredFirmwareVersion,
		n.AutoUpdate, n.Scheduled, n.ParentNodeID)
	if err != nil {
		return fmt.Errorf("inserting node: %w", err)
	}
	return nil
}

// Update modifies the user-editable fields of a node.
func (r *SQLiteRepository) Update(ctx context.Context, n *Node) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE nodes
		SET node_name = ?, desired_firmware_type = ?,
			desired_firmware_version = ?, auto_update = ?, scheduled = ?
		WHERE node_id = ?`,
		n.Name, n.DesiredFirmwareType, n.DesiredFirmwareVersion,
		n.AutoUpdate, n.Scheduled, n.ID)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	return requireAffected(result, ErrNodeNotFound)
}

// Delete removes a node. Its sensors are removed by the foreign-key
// cascade.
func (r *SQLiteRepository) Delete(ctx context.Context, id uint8) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE node_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}
	return requireAffected(result, ErrNodeNotFound)
}

// NextFreeID scans the id range for the least unused value.
func (r *SQLiteRepository) NextFreeID(ctx context.Context) (uint8, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT node_id FROM nodes ORDER BY node_id`)
	if err != nil {
		return 0, fmt.Errorf("listing node ids: %w", err)
	}
	defer rows.Close()

	used := make(map[uint8]bool)
	for rows.Next() {
		var id uint8
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scanning node id: %w", err)
		}
		used[id] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for id := MinNodeID; id <= MaxNodeID; id++ {
		if !used[id] {
			return id, nil
		}
	}
	return 0, ErrNoFreeNodeID
}

// UpdateReportedFirmware records the firmware a node advertised.
func (r *SQLiteRepository) UpdateReportedFirmware(ctx context.Context, id uint8, fwType, fwVersion int32) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE nodes SET firmware_type = ?, firmware_version = ?
		WHERE node_id = ?`,
		fwType, fwVersion, id)
	if err != nil {
		return fmt.Errorf("updating reported firmware: %w", err)
	}
	return requireAffected(result, ErrNodeNotFound)
}

// SetParent records the parent node reported in a discover response.
func (r *SQLiteRepository) SetParent(ctx context.Context, id, parentID uint8) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE nodes SET parent_node_id = ? WHERE node_id = ?`,
		parentID, id)
	if err != nil {
		return fmt.Errorf("updating network topology: %w", err)
	}
	return requireAffected(result, ErrNodeNotFound)
}

// requireAffected maps a zero-row write to the package's not-found error.
func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
