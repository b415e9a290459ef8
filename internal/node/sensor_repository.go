package node

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertOutcome describes what Upsert did with a presentation.
type UpsertOutcome int

const (
	// UpsertCreated indicates a new sensor row was inserted.
	UpsertCreated UpsertOutcome = iota

	// UpsertUpdated indicates an existing row's type or description changed.
	UpsertUpdated

	// UpsertUnchanged indicates the presentation matched the stored row.
	UpsertUnchanged
)

// SensorRepository defines the persistence operations for sensors.
type SensorRepository interface {
	// Get retrieves a sensor by its composite key. Returns
	// ErrSensorNotFound if absent.
	Get(ctx context.Context, nodeID, childSensorID uint8) (*Sensor, error)

	// List retrieves all sensors ordered by key.
	List(ctx context.Context) ([]Sensor, error)

	// ListByNode retrieves the sensors belonging to one node.
	ListByNode(ctx context.Context, nodeID uint8) ([]Sensor, error)

	// Upsert inserts the sensor, updates it when the stored type or
	// description differ, or leaves it untouched when identical.
	Upsert(ctx context.Context, s *Sensor) (UpsertOutcome, error)

	// Delete removes a sensor. Returns ErrSensorNotFound if absent.
	Delete(ctx context.Context, nodeID, childSensorID uint8) error
}

// SQLiteSensorRepository implements SensorRepository on the shared handle.
type SQLiteSensorRepository struct {
	db *sql.DB
}

// NewSQLiteSensorRepository creates a SQLite-backed sensor repository.
func NewSQLiteSensorRepository(db *sql.DB) *SQLiteSensorRepository {
	return &SQLiteSensorRepository{db: db}
}

// Get retrieves a sensor by its composite key.
func (r *SQLiteSensorRepository) Get(ctx context.Context, nodeID, childSensorID uint8) (*Sensor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT node_id, child_sensor_id, sensor_type, description
		FROM sensors
		WHERE node_id = ? AND child_sensor_id = ?`,
		nodeID, childSensorID)

	var s Sensor
	if err := row.Scan(&s.NodeID, &s.ChildSensorID, &s.Type, &s.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("querying sensor: %w", err)
	}
	return &s, nil
}

// List retrieves all sensors ordered by key.
func (r *SQLiteSensorRepository) List(ctx context.Context) ([]Sensor, error) {
	return r.query(ctx, `
		SELECT node_id, child_sensor_id, sensor_type, description
		FROM sensors
		ORDER BY node_id, child_sensor_id`)
}

// ListByNode retrieves the sensors belonging to one node.
func (r *SQLiteSensorRepository) ListByNode(ctx context.Context, nodeID uint8) ([]Sensor, error) {
	return r.query(ctx, `
		SELECT node_id, child_sensor_id, sensor_type, description
		FROM sensors
		WHERE node_id = ?
		ORDER BY child_sensor_id`, nodeID)
}

func (r *SQLiteSensorRepository) query(ctx context.Context, query string, args ...any) ([]Sensor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sensors: %w", err)
	}
	defer rows.Close()

	var sensors []Sensor
	for rows.Next() {
		var s Sensor
		if err := rows.Scan(&s.NodeID, &s.ChildSensorID, &s.Type, &s.Description); err != nil {
			return nil, fmt.Errorf("scanning sensor: %w", err)
		}
		sensors = append(sensors, s)
	}
	return sensors, rows.Err()
}

// Upsert inserts or reconciles a sensor row against a presentation.
func (r *SQLiteSensorRepository) Upsert(ctx context.Context, s *Sensor) (UpsertOutcome, error) {
	existing, err := r.Get(ctx, s.NodeID, s.ChildSensorID)
	switch {
	case errors.Is(err, ErrSensorNotFound):
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO sensors (node_id, child_sensor_id, sensor_type, description)
			VALUES (?, ?, ?, ?)`,
			s.NodeID, s.ChildSensorID, s.Type, s.Description)
		if err != nil {
			return 0, fmt.Errorf("inserting sensor: %w", err)
		}
		return UpsertCreated, nil

	case err != nil:
		return 0, err

	case existing.Type == s.Type && existing.Description == s.Description:
		return UpsertUnchanged, nil

	default:
		_, err := r.db.ExecContext(ctx, `
			UPDATE sensors SET sensor_type = ?, description = ?
			WHERE node_id = ? AND child_sensor_id = ?`,
			s.Type, s.Description, s.NodeID, s.ChildSensorID)
		if err != nil {
			return 0, fmt.Errorf("updating sensor: %w", err)
		}
		return UpsertUpdated, nil
	}
}

// Delete removes a sensor by its composite key.
func (r *SQLiteSensorRepository) Delete(ctx context.Context, nodeID, childSensorID uint8) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM sensors
		WHERE node_id = ? AND child_sensor_id = ?`,
		nodeID, childSensorID)
	if err != nil {
		return fmt.Errorf("deleting sensor: %w", err)
	}
	return requireAffected(result, ErrSensorNotFound)
}
