package service

import (
	"context"
	"fmt"

	"betroom/betting"
	"betroom/config"
	"betroom/events"
	"betroom/metrics"
	"betroom/models"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// wagerService implements the WagerService interface
type wagerService struct {
	uowFactory   UnitOfWorkFactory
	minimumStake decimal.Decimal
	clock        quartz.Clock
}

// NewWagerService creates a new wager service. A nil clock uses the real clock.
func NewWagerService(uowFactory UnitOfWorkFactory, cfg *config.Config, clock quartz.Clock) WagerService {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &wagerService{
		uowFactory:   uowFactory,
		minimumStake: cfg.MinimumStake,
		clock:        clock,
	}
}

// PlaceWager validates the wager, debits the stake and records the wager atomically.
//
// Checks run in a fixed order and the first failure is returned: room exists, room is
// open, option belongs to the room's game, stake is above the minimum, user exists, user
// has no wager in the room yet, balance covers the stake. The room row is share-locked
// for the whole transaction so a concurrent close either sees this wager or rejects it.
func (s *wagerService) PlaceWager(ctx context.Context, code string, userID uuid.UUID, optionID int64, stake decimal.Decimal) (wager *models.Wager, err error) {
	started := s.clock.Now()
	defer func() {
		metrics.RecordWager(resultLabel(err), s.clock.Since(started))
	}()

	if !betting.IsValidRoomCode(code) {
		return nil, ErrRoomNotFound
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByCodeForShare(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if !room.CanAcceptWagers() {
		return nil, ErrRoomClosed
	}

	gameType, err := uow.GameTypeRepository().GetByID(ctx, room.GameTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game type: %w", err)
	}
	if gameType == nil || gameType.FindOption(optionID) == nil {
		return nil, ErrInvalidOption
	}

	if !stake.GreaterThan(s.minimumStake) {
		return nil, ErrBelowMinimumStake
	}
	if !stake.Equal(stake.Round(betting.MinorUnitPlaces)) {
		return nil, ErrInvalidStake
	}

	user, err := getExistingUser(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	existing, err := uow.WagerRepository().GetByUserAndRoom(ctx, userID, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing wager: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateWager
	}

	newBalance, err := uow.UserRepository().DeductBalance(ctx, userID, stake)
	if err != nil {
		return nil, err
	}

	wager = &models.Wager{
		UserID:   userID,
		RoomID:   room.ID,
		OptionID: optionID,
		Stake:    stake,
	}
	if err := uow.WagerRepository().Create(ctx, wager); err != nil {
		return nil, err
	}

	relatedID, relatedType := relatedRef(models.RelatedTypeWager, wager.ID)
	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   newBalance.Add(stake),
		BalanceAfter:    newBalance,
		ChangeAmount:    stake.Neg(),
		TransactionType: models.TransactionTypeWagerPlaced,
		TransactionMetadata: map[string]any{
			"room_code": room.Code,
			"option_id": optionID,
		},
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		WagerID:  wager.ID,
		RoomID:   room.ID,
		RoomCode: room.Code,
		UserID:   userID,
		OptionID: optionID,
		Stake:    stake,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.RecordStake(stake)
	log.WithFields(log.Fields{
		"wagerID":  wager.ID,
		"room":     room.Code,
		"user":     user.Nickname,
		"optionID": optionID,
		"stake":    stake.StringFixed(betting.MinorUnitPlaces),
	}).Info("Wager placed")

	return wager, nil
}

// WagersForRoom returns every wager placed in a room
func (s *wagerService) WagersForRoom(ctx context.Context, roomID int64) ([]*models.Wager, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wagers, err := uow.WagerRepository().GetByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}
	return wagers, nil
}

// resultLabel turns an operation error into a low-cardinality metric label
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if de, ok := AsDomainError(err); ok {
		return de.Code
	}
	return "internal"
}
