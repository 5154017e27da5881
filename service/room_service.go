package service

import (
	"context"
	"errors"
	"fmt"

	"betroom/betting"
	"betroom/config"
	"betroom/events"
	"betroom/metrics"
	"betroom/models"

	log "github.com/sirupsen/logrus"
)

// roomService implements the RoomService interface
type roomService struct {
	uowFactory   UnitOfWorkFactory
	cache        RoomCache
	codeAttempts int
	generateCode func() (string, error)
}

// NewRoomService creates a new room service. cache may be nil.
func NewRoomService(uowFactory UnitOfWorkFactory, cfg *config.Config, cache RoomCache) RoomService {
	if cache == nil {
		cache = noopRoomCache{}
	}
	return &roomService{
		uowFactory:   uowFactory,
		cache:        cache,
		codeAttempts: max(cfg.RoomCodeAttempts, 1),
		generateCode: betting.GenerateRoomCode,
	}
}

// CreateRoom opens a room under a freshly generated code, regenerating the code on collision
func (s *roomService) CreateRoom(ctx context.Context, gameTypeID int64) (*models.Room, error) {
	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, err
		}

		room, err := s.createRoom(ctx, gameTypeID, code)
		if errors.Is(err, ErrDuplicateRoomCode) {
			metrics.RecordRoomCodeCollision()
			log.WithFields(log.Fields{
				"code":    code,
				"attempt": attempt,
			}).Warn("Room code collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}
		return room, nil
	}

	return nil, fmt.Errorf("no free room code after %d attempts: %w", s.codeAttempts, ErrDuplicateRoomCode)
}

func (s *roomService) createRoom(ctx context.Context, gameTypeID int64, code string) (*models.Room, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gameType, err := uow.GameTypeRepository().GetByID(ctx, gameTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game type: %w", err)
	}
	if gameType == nil {
		return nil, ErrGameTypeNotFound
	}

	room := &models.Room{
		Code:       code,
		GameTypeID: gameType.ID,
	}
	if err := uow.RoomRepository().Create(ctx, room); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.RoomCreatedEvent{
		RoomID:   room.ID,
		Code:     room.Code,
		GameName: gameType.Name,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.RecordRoomCreated(gameType.Name)
	log.WithFields(log.Fields{
		"roomID": room.ID,
		"code":   room.Code,
		"game":   gameType.Name,
	}).Info("Room opened")

	return room, nil
}

// GetRoomState returns the room read model, served from the cache when possible
func (s *roomService) GetRoomState(ctx context.Context, code string) (*models.RoomDetail, error) {
	if !betting.IsValidRoomCode(code) {
		return nil, ErrRoomNotFound
	}

	if detail, ok := s.cache.Get(ctx, code); ok {
		return detail, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	gameType, err := uow.GameTypeRepository().GetByID(ctx, room.GameTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game type: %w", err)
	}
	if gameType == nil {
		return nil, fmt.Errorf("room %s references missing game type %d", code, room.GameTypeID)
	}

	count, total, err := uow.WagerRepository().GetRoomTotals(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room totals: %w", err)
	}

	detail := &models.RoomDetail{
		Room:       room,
		GameType:   gameType,
		WagerCount: count,
		TotalPool:  total,
	}
	if room.OutcomeOptionID != nil {
		detail.OutcomeOption = gameType.FindOption(*room.OutcomeOptionID)
	}

	s.cache.Set(ctx, detail)
	return detail, nil
}

// ListGameTypes returns the game catalogue with options
func (s *roomService) ListGameTypes(ctx context.Context) ([]*models.GameType, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gameTypes, err := uow.GameTypeRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list game types: %w", err)
	}
	return gameTypes, nil
}

type noopRoomCache struct{}

func (noopRoomCache) Get(context.Context, string) (*models.RoomDetail, bool) { return nil, false }
func (noopRoomCache) Set(context.Context, *models.RoomDetail) {}
func (noopRoomCache) Invalidate(context.Context, string) {}
