package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"betroom/config"
	"betroom/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	maxNicknameLength = 64

	defaultBalanceHistoryLimit = 20
	maxBalanceHistoryLimit     = 100

	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

// userService implements the UserService interface
type userService struct {
	uowFactory     UnitOfWorkFactory
	initialBalance decimal.Decimal
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory:     uowFactory,
		initialBalance: cfg.InitialBalance,
	}
}

// CreateUser registers a user with the initial balance
func (s *userService) CreateUser(ctx context.Context, nickname string) (*models.User, error) {
	nickname = strings.TrimSpace(nickname)
	if err := validateNickname(nickname); err != nil {
		return nil, err
	}

	return s.createUser(ctx, nickname, nil)
}

// GetOrCreateDiscordUser returns the user linked to a Discord account, registering it on first use.
// A nickname already taken by someone else is disambiguated with the Discord ID.
func (s *userService) GetOrCreateDiscordUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	user, err := s.getByDiscordID(ctx, discordID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	nickname := truncateNickname(strings.TrimSpace(username))
	if nickname == "" {
		nickname = strconv.FormatInt(discordID, 10)
	}

	user, err = s.createUser(ctx, nickname, &discordID)
	if errors.Is(err, ErrDuplicateNickname) {
		suffix := "-" + strconv.FormatInt(discordID, 10)
		runes := []rune(nickname)
		if keep := maxNicknameLength - len(suffix); len(runes) > keep {
			runes = runes[:keep]
		}
		user, err = s.createUser(ctx, string(runes)+suffix, &discordID)
	}
	if err != nil {
		// Lost a registration race for the same account
		if existing, lookupErr := s.getByDiscordID(ctx, discordID); lookupErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) getByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	return user, nil
}

// createUser inserts the user and its initial balance entry in one transaction
func (s *userService) createUser(ctx context.Context, nickname string, discordID *int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user := &models.User{
		ID:        uuid.New(),
		Nickname:  nickname,
		DiscordID: discordID,
		Balance:   s.initialBalance,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          user.ID,
		BalanceBefore:   decimal.Zero,
		BalanceAfter:    s.initialBalance,
		ChangeAmount:    s.initialBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"nickname": nickname,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   user.ID,
		"nickname": nickname,
		"balance":  user.Balance.StringFixed(2),
	}).Info("User created")

	return user, nil
}

// GetUser returns a user by ID
// ListUsers returns a page of registered users
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 {
		limit = defaultUserPageSize
	}
	limit = min(limit, maxUserPageSize)
	offset = max(offset, 0)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return getExistingUser(ctx, uow, id)
}

// GetUserProfile returns the user together with every wager they placed
func (s *userService) GetUserProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getExistingUser(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	wagers, err := uow.WagerRepository().GetHistoryByUser(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}

	return &models.UserProfile{User: user, Wagers: wagers}, nil
}

// GetUserHistory returns the user's wagers in closed rooms
func (s *userService) GetUserHistory(ctx context.Context, id uuid.UUID) ([]*models.HistoryEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := getExistingUser(ctx, uow, id); err != nil {
		return nil, err
	}

	history, err := uow.WagerRepository().GetHistoryByUser(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return history, nil
}

// GetBalanceHistory returns the user's latest balance changes
func (s *userService) GetBalanceHistory(ctx context.Context, id uuid.UUID, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 {
		limit = defaultBalanceHistoryLimit
	}
	limit = min(limit, maxBalanceHistoryLimit)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := getExistingUser(ctx, uow, id); err != nil {
		return nil, err
	}

	entries, err := uow.BalanceHistoryRepository().GetByUser(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	return entries, nil
}

func getExistingUser(ctx context.Context, uow UnitOfWork, id uuid.UUID) (*models.User, error) {
	user, err := uow.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func validateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n == 0 || n > maxNicknameLength {
		return ErrInvalidNickname
	}
	return nil
}

func truncateNickname(nickname string) string {
	if utf8.RuneCountInString(nickname) <= maxNicknameLength {
		return nickname
	}
	return string([]rune(nickname)[:maxNicknameLength])
}
