package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	dispatchsvc "github.com/rescuelink/dispatch/services/dispatch"
)

const requestColumns = `
	id, requester_id, service_type,
	(location[0])::float8 as longitude,
	(location[1])::float8 as latitude,
	address, description, status, responder_id,
	created_at, updated_at,
	estimated_arrival_at, actual_arrival_at, completed_at
`

// RequestRepo implements the emergency request store on Postgres.
type RequestRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(cfg *models.Config, db *sqlx.DB) *RequestRepo {
	return &RequestRepo{
		cfg: cfg,
		db:  db,
	}
}

func scanRequest(row *sql.Row) (*models.EmergencyRequest, error) {
	var dto models.EmergencyRequestDTO
	err := row.Scan(
		&dto.ID, &dto.RequesterID, &dto.ServiceType,
		&dto.Longitude, &dto.Latitude,
		&dto.Address, &dto.Description, &dto.Status, &dto.ResponderID,
		&dto.CreatedAt, &dto.UpdatedAt,
		&dto.EstimatedArrivalAt, &dto.ActualArrivalAt, &dto.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return dto.ToRequest(), nil
}

// CreateRequest inserts a new emergency request in pending status
func (r *RequestRepo) CreateRequest(ctx context.Context, req *models.EmergencyRequest) (*models.EmergencyRequest, error) {
	req.ID = uuid.New()
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Status = models.RequestStatusPending

	insertQuery := `
		INSERT INTO requests (
			id, requester_id, service_type, location,
			address, description, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, point($4, $5),
			$6, $7, $8,
			$9, $10
		)
	`
	_, err := r.db.ExecContext(ctx, insertQuery,
		req.ID, req.RequesterID, req.ServiceType,
		req.Location.Longitude, req.Location.Latitude,
		req.Address, req.Description, req.Status,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert request: %w", err)
	}

	return req, nil
}

// GetRequest retrieves an emergency request by ID
func (r *RequestRepo) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.EmergencyRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	req, err := scanRequest(r.db.QueryRowContext(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dispatchsvc.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// UpdateRequestLocation persists a repaired request location
func (r *RequestRepo) UpdateRequestLocation(ctx context.Context, requestID uuid.UUID, location models.Location) error {
	updateQuery := `
		UPDATE requests
		SET location = point($1, $2), updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, updateQuery, location.Longitude, location.Latitude, time.Now(), requestID)
	if err != nil {
		return fmt.Errorf("failed to update request location: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return dispatchsvc.ErrRequestNotFound
	}
	return nil
}

// AssignAtomically claims the request for the responder in one transaction.
// Both conditional updates must hit exactly one row: the request must still
// be pending and the responder must still be available. Zero rows on either
// means a concurrent dispatch or status change won, and the whole claim
// rolls back with ErrAssignmentConflict.
func (r *RequestRepo) AssignAtomically(ctx context.Context, requestID, responderID uuid.UUID, estimatedArrival time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	requestQuery := `
		UPDATE requests
		SET status = $1, responder_id = $2, estimated_arrival_at = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`
	result, err := tx.ExecContext(ctx, requestQuery,
		models.RequestStatusAccepted, responderID, estimatedArrival, now,
		requestID, models.RequestStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to claim request: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return dispatchsvc.ErrAssignmentConflict
	}

	responderQuery := `
		UPDATE responders
		SET availability = $1, last_updated = $2
		WHERE id = $3 AND availability = $4
	`
	result, err = tx.ExecContext(ctx, responderQuery,
		models.AvailabilityBusy, now,
		responderID, models.AvailabilityAvailable,
	)
	if err != nil {
		return fmt.Errorf("failed to claim responder: %w", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return dispatchsvc.ErrAssignmentConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// TransitionStatus moves the request from exactly the from status to the to
// status. Side-effect columns are written in the same transaction:
// in-progress stamps actual_arrival_at, completed stamps completed_at, and
// terminal transitions release the assigned responder back to available.
// The released responder id, if any, is returned so the caller can restore
// the Redis availability pool after commit.
func (r *RequestRepo) TransitionStatus(ctx context.Context, requestID uuid.UUID, from, to models.RequestStatus) (*models.EmergencyRequest, *uuid.UUID, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	updateQuery := `
		UPDATE requests
		SET status = $1,
			updated_at = $2,
			actual_arrival_at = CASE WHEN $1 = 'in-progress' THEN $2 ELSE actual_arrival_at END,
			completed_at = CASE WHEN $1 = 'completed' THEN $2 ELSE completed_at END
		WHERE id = $3 AND status = $4
	`
	result, err := tx.ExecContext(ctx, updateQuery, to, now, requestID, from)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update request status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil, dispatchsvc.ErrAssignmentConflict
	}

	selectQuery := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	var dto models.EmergencyRequestDTO
	err = tx.QueryRowxContext(ctx, selectQuery, requestID).Scan(
		&dto.ID, &dto.RequesterID, &dto.ServiceType,
		&dto.Longitude, &dto.Latitude,
		&dto.Address, &dto.Description, &dto.Status, &dto.ResponderID,
		&dto.CreatedAt, &dto.UpdatedAt,
		&dto.EstimatedArrivalAt, &dto.ActualArrivalAt, &dto.CompletedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload request: %w", err)
	}
	req := dto.ToRequest()

	var released *uuid.UUID
	if to.Terminal() && req.ResponderID != nil {
		responderQuery := `
			UPDATE responders
			SET availability = $1, last_updated = $2
			WHERE id = $3 AND availability = $4
		`
		result, err := tx.ExecContext(ctx, responderQuery,
			models.AvailabilityAvailable, now,
			*req.ResponderID, models.AvailabilityBusy,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to release responder: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected > 0 {
			id := *req.ResponderID
			released = &id
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return req, released, nil
}

// ReleaseAssignment undoes an accepted assignment after a decline: the
// request returns to pending with no responder and the responder returns to
// available, in one transaction. The request must still be held by exactly
// this responder, otherwise ErrOfferNotHeld.
func (r *RequestRepo) ReleaseAssignment(ctx context.Context, requestID, responderID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	requestQuery := `
		UPDATE requests
		SET status = $1, responder_id = NULL, estimated_arrival_at = NULL, updated_at = $2
		WHERE id = $3 AND status = $4 AND responder_id = $5
	`
	result, err := tx.ExecContext(ctx, requestQuery,
		models.RequestStatusPending, now,
		requestID, models.RequestStatusAccepted, responderID,
	)
	if err != nil {
		return fmt.Errorf("failed to release request: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return dispatchsvc.ErrOfferNotHeld
	}

	responderQuery := `
		UPDATE responders
		SET availability = $1, last_updated = $2
		WHERE id = $3 AND availability = $4
	`
	if _, err := tx.ExecContext(ctx, responderQuery,
		models.AvailabilityAvailable, now,
		responderID, models.AvailabilityBusy,
	); err != nil {
		return fmt.Errorf("failed to release responder: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByStatuses returns requests in any of the given statuses, oldest first
func (r *RequestRepo) ListByStatuses(ctx context.Context, statuses []models.RequestStatus) ([]*models.EmergencyRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE status = ANY($1) ORDER BY created_at ASC`

	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, string(s))
	}

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(statusStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.EmergencyRequest
	for rows.Next() {
		var dto models.EmergencyRequestDTO
		err := rows.Scan(
			&dto.ID, &dto.RequesterID, &dto.ServiceType,
			&dto.Longitude, &dto.Latitude,
			&dto.Address, &dto.Description, &dto.Status, &dto.ResponderID,
			&dto.CreatedAt, &dto.UpdatedAt,
			&dto.EstimatedArrivalAt, &dto.ActualArrivalAt, &dto.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, dto.ToRequest())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return requests, nil
}
