package repository

import (
	"context"
	"errors"
	"fmt"

	"betroom/database"
	"betroom/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const wagerColumns = `id, user_id, room_id, option_id, stake, won, payout, created_at, settled_at`

// WagerRepository implements the WagerRepository interface
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

func scanWager(row pgx.Row) (*models.Wager, error) {
	var wager models.Wager
	err := row.Scan(
		&wager.ID,
		&wager.UserID,
		&wager.RoomID,
		&wager.OptionID,
		&wager.Stake,
		&wager.Won,
		&wager.Payout,
		&wager.CreatedAt,
		&wager.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &wager, nil
}

// Create inserts an unsettled wager
func (r *WagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	query := `
		INSERT INTO wagers (user_id, room_id, option_id, stake)
		VALUES ($1, $2, $3, $4)
		RETURNING id, won, created_at
	`

	err := r.q.QueryRow(ctx, query, wager.UserID, wager.RoomID, wager.OptionID, wager.Stake).
		Scan(&wager.ID, &wager.Won, &wager.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wager in room %d: %w", wager.RoomID, translateError(err))
	}

	return nil
}

// GetByUserAndRoom returns the user's wager in a room, or nil
func (r *WagerRepository) GetByUserAndRoom(ctx context.Context, userID uuid.UUID, roomID int64) (*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE user_id = $1 AND room_id = $2`

	wager, err := scanWager(r.q.QueryRow(ctx, query, userID, roomID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager for user %s in room %d: %w", userID, roomID, translateError(err))
	}

	return wager, nil
}

// GetByRoom returns every wager in a room ordered by ID
func (r *WagerRepository) GetByRoom(ctx context.Context, roomID int64) ([]*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE room_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers for room %d: %w", roomID, translateError(err))
	}
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}

	return wagers, nil
}

// GetRoomTotals returns the wager count and pooled stake of a room
func (r *WagerRepository) GetRoomTotals(ctx context.Context, roomID int64) (int, decimal.Decimal, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(stake), 0) FROM wagers WHERE room_id = $1`

	var count int
	var pool decimal.Decimal
	if err := r.q.QueryRow(ctx, query, roomID).Scan(&count, &pool); err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to get totals for room %d: %w", roomID, translateError(err))
	}

	return count, pool, nil
}

// UpdateSettlement writes the settlement fields of each wager
func (r *WagerRepository) UpdateSettlement(ctx context.Context, wagers []*models.Wager) error {
	query := `
		UPDATE wagers
		SET won = $2, payout = $3, settled_at = $4
		WHERE id = $1
	`

	for _, wager := range wagers {
		result, err := r.q.Exec(ctx, query, wager.ID, wager.Won, wager.Payout, wager.SettledAt)
		if err != nil {
			return fmt.Errorf("failed to settle wager %d: %w", wager.ID, translateError(err))
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("wager %d not found", wager.ID)
		}
	}

	return nil
}

// GetHistoryByUser returns the user's wagers newest first
func (r *WagerRepository) GetHistoryByUser(ctx context.Context, userID uuid.UUID, settledOnly bool) ([]*models.HistoryEntry, error) {
	query := `
		SELECT w.id, r.code, r.is_open, g.name, o.label,
		       w.stake, w.won, w.payout, w.created_at, w.settled_at
		FROM wagers w
		JOIN rooms r ON r.id = w.room_id
		JOIN game_types g ON g.id = r.game_type_id
		JOIN outcome_options o ON o.id = w.option_id
		WHERE w.user_id = $1 AND (NOT $2 OR NOT r.is_open)
		ORDER BY w.created_at DESC, w.id DESC
	`

	rows, err := r.q.Query(ctx, query, userID, settledOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager history for user %s: %w", userID, translateError(err))
	}
	defer rows.Close()

	var history []*models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		err := rows.Scan(
			&entry.WagerID,
			&entry.RoomCode,
			&entry.RoomOpen,
			&entry.GameName,
			&entry.OptionLabel,
			&entry.Stake,
			&entry.Won,
			&entry.Payout,
			&entry.PlacedAt,
			&entry.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager history: %w", err)
		}
		history = append(history, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wager history: %w", err)
	}

	return history, nil
}
