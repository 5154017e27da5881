package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"betroom/betting"
	"betroom/events"
	"betroom/metrics"
	"betroom/models"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// settlementService implements the SettlementService interface
type settlementService struct {
	uowFactory UnitOfWorkFactory
	generator  OutcomeGenerator
	clock      quartz.Clock
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, generator OutcomeGenerator, clock quartz.Clock) SettlementService {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &settlementService{
		uowFactory: uowFactory,
		generator:  generator,
		clock:      clock,
	}
}

// CloseRoom draws the outcome for a room, settles every wager and closes the room.
//
// The room row is locked exclusively before anything else happens, so wagers being
// placed either committed before the lock (and take part in the settlement) or observe
// the room as closed. Any failure rolls back the whole settlement and leaves the room open.
func (s *settlementService) CloseRoom(ctx context.Context, code string) (result *models.SettlementResult, err error) {
	started := s.clock.Now()
	defer func() {
		metrics.RecordSettlement(resultLabel(err), s.clock.Since(started))
	}()

	if !betting.IsValidRoomCode(code) {
		return nil, ErrRoomNotFound
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByCodeForUpdate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if !room.IsOpen {
		return nil, ErrRoomAlreadyClosed
	}

	state, err := models.NextRoomState(room.State(), models.RoomEventClose)
	if err != nil {
		return nil, err
	}

	gameType, err := uow.GameTypeRepository().GetByID(ctx, room.GameTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game type: %w", err)
	}
	if gameType == nil {
		return nil, fmt.Errorf("room %s references missing game type %d", code, room.GameTypeID)
	}

	draw, err := s.generator.Draw(gameType.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutcomeUnresolvable, err)
	}
	winning := gameType.FindOptionByLabel(draw.Label)
	if winning == nil {
		return nil, fmt.Errorf("%w: %s drew %q", ErrOutcomeUnresolvable, gameType.Name, draw.Label)
	}

	wagers, err := uow.WagerRepository().GetByRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}

	stakes := make([]betting.Stake, len(wagers))
	for i, w := range wagers {
		stakes[i] = betting.Stake{WagerID: w.ID, OptionID: w.OptionID, Amount: w.Stake}
	}
	dist := betting.Distribute(stakes, winning.ID)

	now := s.clock.Now()
	payouts := make([]*models.WagerPayout, len(wagers))
	for i, w := range wagers {
		p := dist.Payouts[i]
		w.Won = p.Won
		w.Payout = decimal.NewNullDecimal(p.Amount)
		w.SettledAt = &now
		payouts[i] = &models.WagerPayout{
			WagerID:  w.ID,
			UserID:   w.UserID,
			OptionID: w.OptionID,
			Stake:    w.Stake,
			Payout:   p.Amount,
			Won:      p.Won,
		}
	}

	if err := uow.WagerRepository().UpdateSettlement(ctx, wagers); err != nil {
		return nil, fmt.Errorf("failed to settle wagers: %w", err)
	}

	if err := s.creditWinners(ctx, uow, room, payouts); err != nil {
		return nil, err
	}

	if state, err = models.NextRoomState(state, models.RoomEventSettle); err != nil {
		return nil, err
	}

	value := draw.Value
	room.OutcomeOptionID = &winning.ID
	room.OutcomeValue = &value
	room.TotalPool = decimal.NewNullDecimal(dist.TotalPool)
	room.RoundingRemainder = decimal.NewNullDecimal(dist.Remainder)
	room.ClosedAt = &now
	if err := uow.RoomRepository().Close(ctx, room); err != nil {
		return nil, err
	}

	result = &models.SettlementResult{
		Room:          room,
		WinningOption: winning,
		DrawValue:     draw.Value,
		TotalPool:     dist.TotalPool,
		WinningPool:   dist.WinningPool,
		Remainder:     dist.Remainder,
		HouseRetained: dist.HouseRetained,
		Payouts:       payouts,
	}
	if !dist.Remainder.IsZero() {
		id := dist.RemainderWagerID
		result.RemainderWagerID = &id
	}

	uow.EventBus().Publish(events.RoomClosedEvent{
		RoomID:        room.ID,
		Code:          room.Code,
		OutcomeLabel:  winning.Label,
		DrawValue:     draw.Value,
		TotalPool:     dist.TotalPool,
		WinningPool:   dist.WinningPool,
		WinnerCount:   len(result.Winners()),
		HouseRetained: dist.HouseRetained,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.RecordDraw(gameType.Name, winning.Label)
	metrics.RecordPayout(dist.TotalPool.Sub(dist.HouseRetained), dist.HouseRetained)
	log.WithFields(log.Fields{
		"room":          room.Code,
		"state":         state,
		"outcome":       winning.Label,
		"value":         draw.Value,
		"wagers":        len(wagers),
		"totalPool":     dist.TotalPool.StringFixed(betting.MinorUnitPlaces),
		"houseRetained": dist.HouseRetained.StringFixed(betting.MinorUnitPlaces),
	}).Info("Room settled")

	return result, nil
}

// creditWinners pays out every positive payout. Users are credited in ID order so two
// settlements sharing winners always lock user rows in the same order.
func (s *settlementService) creditWinners(ctx context.Context, uow UnitOfWork, room *models.Room, payouts []*models.WagerPayout) error {
	credits := make([]*models.WagerPayout, 0, len(payouts))
	for _, p := range payouts {
		if p.Won && p.Payout.IsPositive() {
			credits = append(credits, p)
		}
	}
	slices.SortFunc(credits, func(a, b *models.WagerPayout) int {
		return bytes.Compare(a.UserID[:], b.UserID[:])
	})

	for _, p := range credits {
		newBalance, err := uow.UserRepository().AddBalance(ctx, p.UserID, p.Payout)
		if err != nil {
			return fmt.Errorf("failed to credit wager %d: %w", p.WagerID, err)
		}

		relatedID, relatedType := relatedRef(models.RelatedTypeWager, p.WagerID)
		history := &models.BalanceHistory{
			UserID:          p.UserID,
			BalanceBefore:   newBalance.Sub(p.Payout),
			BalanceAfter:    newBalance,
			ChangeAmount:    p.Payout,
			TransactionType: models.TransactionTypeWagerPayout,
			TransactionMetadata: map[string]any{
				"room_code": room.Code,
				"stake":     p.Stake.StringFixed(betting.MinorUnitPlaces),
			},
			RelatedID:   relatedID,
			RelatedType: relatedType,
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return fmt.Errorf("failed to record payout: %w", err)
		}
	}

	return nil
}
