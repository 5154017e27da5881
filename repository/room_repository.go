package repository

import (
	"context"
	"errors"
	"fmt"

	"betroom/database"
	"betroom/models"
	"betroom/service"

	"github.com/jackc/pgx/v5"
)

const roomColumns = `id, code, game_type_id, is_open, outcome_option_id, outcome_value,
	total_pool, rounding_remainder, created_at, closed_at`

// RoomRepository implements the RoomRepository interface
type RoomRepository struct {
	q queryable
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *database.DB) *RoomRepository {
	return &RoomRepository{q: db.Pool}
}

// newRoomRepositoryWithTx creates a new room repository with a transaction
func newRoomRepositoryWithTx(tx queryable) *RoomRepository {
	return &RoomRepository{q: tx}
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	err := row.Scan(
		&room.ID,
		&room.Code,
		&room.GameTypeID,
		&room.IsOpen,
		&room.OutcomeOptionID,
		&room.OutcomeValue,
		&room.TotalPool,
		&room.RoundingRemainder,
		&room.CreatedAt,
		&room.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a new open room
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (code, game_type_id)
		VALUES ($1, $2)
		RETURNING id, is_open, created_at
	`

	err := r.q.QueryRow(ctx, query, room.Code, room.GameTypeID).Scan(&room.ID, &room.IsOpen, &room.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room %s: %w", room.Code, translateError(err))
	}

	return nil
}

// GetByCode retrieves a room without locking it
func (r *RoomRepository) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	return r.getByCode(ctx, code, "")
}

// GetByCodeForShare retrieves a room and holds a shared lock on it
func (r *RoomRepository) GetByCodeForShare(ctx context.Context, code string) (*models.Room, error) {
	return r.getByCode(ctx, code, "FOR SHARE")
}

// GetByCodeForUpdate retrieves a room and holds an exclusive lock on it
func (r *RoomRepository) GetByCodeForUpdate(ctx context.Context, code string) (*models.Room, error) {
	return r.getByCode(ctx, code, "FOR UPDATE")
}

func (r *RoomRepository) getByCode(ctx context.Context, code string, lockClause string) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE code = $1 ` + lockClause

	room, err := scanRoom(r.q.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", code, translateError(err))
	}

	return room, nil
}

// Close records the outcome and closes the room. The is_open guard makes a second
// close a no-op that reports ErrRoomAlreadyClosed.
func (r *RoomRepository) Close(ctx context.Context, room *models.Room) error {
	query := `
		UPDATE rooms
		SET is_open = FALSE,
		    outcome_option_id = $2,
		    outcome_value = $3,
		    total_pool = $4,
		    rounding_remainder = $5,
		    closed_at = $6
		WHERE id = $1 AND is_open
	`

	result, err := r.q.Exec(ctx, query,
		room.ID,
		room.OutcomeOptionID,
		room.OutcomeValue,
		room.TotalPool,
		room.RoundingRemainder,
		room.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to close room %s: %w", room.Code, translateError(err))
	}

	if result.RowsAffected() == 0 {
		return service.ErrRoomAlreadyClosed
	}

	room.IsOpen = false
	return nil
}
