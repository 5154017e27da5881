package service

import (
	"context"

	"betroom/betting"
	"betroom/events"
	"betroom/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, returning nil if none exists
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByDiscordID retrieves a user linked to a Discord account, returning nil if none exists
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// List returns a page of users ordered by registration
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// Create inserts a new user. A taken nickname fails with ErrDuplicateNickname.
	Create(ctx context.Context, user *models.User) error

	// DeductBalance subtracts amount in a single conditional statement and returns the new balance.
	// Fails with ErrInsufficientBalance without modifying anything when the balance is too low.
	DeductBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)

	// AddBalance adds amount atomically and returns the new balance
	AddBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
}

// GameTypeRepository defines the interface for the game catalogue
type GameTypeRepository interface {
	// GetByID returns a game type with its options ordered by position, or nil
	GetByID(ctx context.Context, id int64) (*models.GameType, error)

	// GetAll returns every game type with options
	GetAll(ctx context.Context) ([]*models.GameType, error)
}

// RoomRepository defines the interface for room data access
type RoomRepository interface {
	// Create inserts a room. A taken code fails with ErrDuplicateRoomCode.
	Create(ctx context.Context, room *models.Room) error

	// GetByCode returns a room without locking it, or nil
	GetByCode(ctx context.Context, code string) (*models.Room, error)

	// GetByCodeForShare returns a room holding a shared row lock until the transaction ends.
	// Shared locks coexist with each other and exclude GetByCodeForUpdate.
	GetByCodeForShare(ctx context.Context, code string) (*models.Room, error)

	// GetByCodeForUpdate returns a room holding an exclusive row lock until the transaction ends
	GetByCodeForUpdate(ctx context.Context, code string) (*models.Room, error)

	// Close persists the outcome and closes the room. Only an open room can be closed;
	// otherwise it fails with ErrRoomAlreadyClosed.
	Close(ctx context.Context, room *models.Room) error
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create inserts a wager. A second wager by the same user in the same room fails with ErrDuplicateWager.
	Create(ctx context.Context, wager *models.Wager) error

	// GetByUserAndRoom returns the user's wager in a room, or nil
	GetByUserAndRoom(ctx context.Context, userID uuid.UUID, roomID int64) (*models.Wager, error)

	// GetByRoom returns all wagers in a room
	GetByRoom(ctx context.Context, roomID int64) ([]*models.Wager, error)

	// GetRoomTotals returns the number of wagers and the pooled stake of a room
	GetRoomTotals(ctx context.Context, roomID int64) (int, decimal.Decimal, error)

	// UpdateSettlement writes won, payout and settled_at for each wager
	UpdateSettlement(ctx context.Context, wagers []*models.Wager) error

	// GetHistoryByUser returns the user's wagers newest first, joined with room, game and option.
	// settledOnly restricts the result to wagers in closed rooms.
	GetHistoryByUser(ctx context.Context, userID uuid.UUID, settledOnly bool) ([]*models.HistoryEntry, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user, newest first
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// OutcomeGenerator draws a random outcome for a game type
type OutcomeGenerator interface {
	Draw(gameName string) (betting.Draw, error)
}

// RoomCache stores room read models keyed by room code
type RoomCache interface {
	Get(ctx context.Context, code string) (*models.RoomDetail, bool)
	Set(ctx context.Context, detail *models.RoomDetail)
	Invalidate(ctx context.Context, code string)
}

// UserService defines the interface for user operations
type UserService interface {
	// CreateUser registers a user with the configured initial balance
	CreateUser(ctx context.Context, nickname string) (*models.User, error)

	// GetOrCreateDiscordUser returns the user linked to discordID, registering one if needed
	GetOrCreateDiscordUser(ctx context.Context, discordID int64, username string) (*models.User, error)

	// GetUser returns a user by ID
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	// ListUsers returns a page of users, oldest first. A non-positive limit uses the default page size.
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)

	// GetUserProfile returns a user with all their wagers, open and settled
	GetUserProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)

	// GetUserHistory returns the user's settled wagers
	GetUserHistory(ctx context.Context, id uuid.UUID) ([]*models.HistoryEntry, error)

	// GetBalanceHistory returns the user's most recent balance changes
	GetBalanceHistory(ctx context.Context, id uuid.UUID, limit int) ([]*models.BalanceHistory, error)
}

// RoomService defines the interface for room lifecycle and lookups
type RoomService interface {
	// CreateRoom opens a room for a game type under a fresh code
	CreateRoom(ctx context.Context, gameTypeID int64) (*models.Room, error)

	// GetRoomState returns a room with its game, options and pool, open or closed
	GetRoomState(ctx context.Context, code string) (*models.RoomDetail, error)

	// ListGameTypes returns the game catalogue
	ListGameTypes(ctx context.Context) ([]*models.GameType, error)
}

// WagerService defines the interface for the room ledger
type WagerService interface {
	// PlaceWager debits the stake and records the wager in one transaction
	PlaceWager(ctx context.Context, code string, userID uuid.UUID, optionID int64, stake decimal.Decimal) (*models.Wager, error)

	// WagersForRoom returns all wagers in a room
	WagersForRoom(ctx context.Context, roomID int64) ([]*models.Wager, error)
}

// SettlementService defines the interface for closing rooms
type SettlementService interface {
	// CloseRoom draws the outcome, pays the winners and closes the room atomically
	CloseRoom(ctx context.Context, code string) (*models.SettlementResult, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	GameTypeRepository() GameTypeRepository
	RoomRepository() RoomRepository
	WagerRepository() WagerRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
