package testutil

import (
	"context"
	"testing"

	"betroom/database"
	"betroom/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// CreateTestUser creates a test user with a fresh ID and default balance
func CreateTestUser(nickname string) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Nickname: nickname,
		Balance:  decimal.RequireFromString("2000.00"),
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(nickname, balance string) *models.User {
	user := CreateTestUser(nickname)
	user.Balance = decimal.RequireFromString(balance)
	return user
}

// InsertUser stores user directly, bypassing the repository under test
func InsertUser(t *testing.T, db *database.DB, user *models.User) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO users (id, nickname, discord_id, balance) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Nickname, user.DiscordID, user.Balance)
	require.NoError(t, err)
}

// Balance reads a user's balance straight from the table
func Balance(t *testing.T, db *database.DB, userID uuid.UUID) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := db.QueryRow(context.Background(), `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// GameOptions returns the seeded game type ID and its option IDs keyed by label
func GameOptions(t *testing.T, db *database.DB, game string) (int64, map[string]int64) {
	t.Helper()
	ctx := context.Background()

	var gameTypeID int64
	require.NoError(t, db.QueryRow(ctx, `SELECT id FROM game_types WHERE name = $1`, game).Scan(&gameTypeID))

	rows, err := db.Query(ctx, `SELECT id, label FROM outcome_options WHERE game_type_id = $1`, gameTypeID)
	require.NoError(t, err)
	defer rows.Close()

	options := make(map[string]int64)
	for rows.Next() {
		var (
			id    int64
			label string
		)
		require.NoError(t, rows.Scan(&id, &label))
		options[label] = id
	}
	require.NoError(t, rows.Err())
	return gameTypeID, options
}

// InsertRoom opens a room with the given code for a seeded game
func InsertRoom(t *testing.T, db *database.DB, code, game string) *models.Room {
	t.Helper()
	gameTypeID, _ := GameOptions(t, db, game)

	room := &models.Room{Code: code, GameTypeID: gameTypeID}
	err := db.QueryRow(context.Background(),
		`INSERT INTO rooms (code, game_type_id) VALUES ($1, $2) RETURNING id, is_open, created_at`,
		code, gameTypeID).Scan(&room.ID, &room.IsOpen, &room.CreatedAt)
	require.NoError(t, err)
	return room
}
