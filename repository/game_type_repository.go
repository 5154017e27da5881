package repository

import (
	"context"
	"errors"
	"fmt"

	"betroom/database"
	"betroom/models"

	"github.com/jackc/pgx/v5"
)

// GameTypeRepository implements the GameTypeRepository interface
type GameTypeRepository struct {
	q queryable
}

// NewGameTypeRepository creates a new game type repository
func NewGameTypeRepository(db *database.DB) *GameTypeRepository {
	return &GameTypeRepository{q: db.Pool}
}

// newGameTypeRepositoryWithTx creates a new game type repository with a transaction
func newGameTypeRepositoryWithTx(tx queryable) *GameTypeRepository {
	return &GameTypeRepository{q: tx}
}

// GetByID returns a game type and its options ordered by position
func (r *GameTypeRepository) GetByID(ctx context.Context, id int64) (*models.GameType, error) {
	query := `SELECT id, name, created_at FROM game_types WHERE id = $1`

	var gameType models.GameType
	err := r.q.QueryRow(ctx, query, id).Scan(&gameType.ID, &gameType.Name, &gameType.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game type %d: %w", id, translateError(err))
	}

	options, err := r.getOptions(ctx, `WHERE game_type_id = $1`, id)
	if err != nil {
		return nil, err
	}
	gameType.Options = options

	return &gameType, nil
}

// GetAll returns every game type with its options
func (r *GameTypeRepository) GetAll(ctx context.Context) ([]*models.GameType, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at FROM game_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get game types: %w", translateError(err))
	}
	defer rows.Close()

	var gameTypes []*models.GameType
	byID := make(map[int64]*models.GameType)
	for rows.Next() {
		var gameType models.GameType
		if err := rows.Scan(&gameType.ID, &gameType.Name, &gameType.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game type: %w", err)
		}
		gameTypes = append(gameTypes, &gameType)
		byID[gameType.ID] = &gameType
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game types: %w", err)
	}

	options, err := r.getOptions(ctx, ``)
	if err != nil {
		return nil, err
	}
	for _, opt := range options {
		if gameType, ok := byID[opt.GameTypeID]; ok {
			gameType.Options = append(gameType.Options, opt)
		}
	}

	return gameTypes, nil
}

func (r *GameTypeRepository) getOptions(ctx context.Context, where string, args ...any) ([]*models.OutcomeOption, error) {
	query := `
		SELECT id, game_type_id, label, position
		FROM outcome_options
		` + where + `
		ORDER BY game_type_id, position, id
	`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome options: %w", translateError(err))
	}
	defer rows.Close()

	var options []*models.OutcomeOption
	for rows.Next() {
		var opt models.OutcomeOption
		if err := rows.Scan(&opt.ID, &opt.GameTypeID, &opt.Label, &opt.Position); err != nil {
			return nil, fmt.Errorf("failed to scan outcome option: %w", err)
		}
		options = append(options, &opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcome options: %w", err)
	}

	return options, nil
}
