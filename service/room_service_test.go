package service

import (
	"context"
	"fmt"
	"testing"

	"betroom/config"
	"betroom/events"
	"betroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestRoomService returns a room service that hands out codes from the list in order
func newTestRoomService(m *serviceMocks, cache RoomCache, codes ...string) *roomService {
	svc := NewRoomService(m.factory, config.NewTestConfig(), cache).(*roomService)
	svc.generateCode = func() (string, error) {
		if len(codes) == 0 {
			return "", fmt.Errorf("out of codes")
		}
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
	return svc
}

func TestRoomService_CreateRoom(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectCommit()
	svc := newTestRoomService(m, nil, "Qx7pL2")

	m.gameTypes.On("GetByID", ctx, rouletteID).Return(rouletteGame(), nil)
	m.rooms.On("Create", ctx, mock.MatchedBy(func(r *models.Room) bool {
		return r.Code == "Qx7pL2" && r.GameTypeID == rouletteID
	})).Return(nil).Run(func(args mock.Arguments) {
		r := args.Get(1).(*models.Room)
		r.ID = 9
		r.IsOpen = true
	})

	room, err := svc.CreateRoom(ctx, rouletteID)

	require.NoError(t, err)
	assert.Equal(t, "Qx7pL2", room.Code)
	assert.Equal(t, models.RoomStateOpen, room.State())

	created := m.uow.Published().OfType(events.EventTypeRoomCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "roulette", created[0].(events.RoomCreatedEvent).GameName)
	m.assertExpectations(t)
}

func TestRoomService_CreateRoom_RetriesOnCodeCollision(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectCommit()
	svc := newTestRoomService(m, nil, "Taken1", "Taken2", "Free33")

	m.gameTypes.On("GetByID", ctx, rouletteID).Return(rouletteGame(), nil)
	m.rooms.On("Create", ctx, mock.MatchedBy(func(r *models.Room) bool { return r.Code != "Free33" })).
		Return(fmt.Errorf("failed to create room: %w", ErrDuplicateRoomCode)).Twice()
	m.rooms.On("Create", ctx, mock.MatchedBy(func(r *models.Room) bool { return r.Code == "Free33" })).
		Return(nil).Once()

	room, err := svc.CreateRoom(ctx, rouletteID)

	require.NoError(t, err)
	assert.Equal(t, "Free33", room.Code)
	m.factory.AssertNumberOfCalls(t, "Create", 3)
	m.uow.AssertNumberOfCalls(t, "Commit", 1)
	m.rooms.AssertExpectations(t)
}

func TestRoomService_CreateRoom_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := newTestRoomService(m, nil, "Taken1", "Taken2", "Taken3", "Taken4", "Taken5", "Unused")

	m.gameTypes.On("GetByID", ctx, rouletteID).Return(rouletteGame(), nil)
	m.rooms.On("Create", ctx, mock.Anything).Return(ErrDuplicateRoomCode)

	room, err := svc.CreateRoom(ctx, rouletteID)

	assert.Nil(t, room)
	assert.ErrorIs(t, err, ErrDuplicateRoomCode)
	m.rooms.AssertNumberOfCalls(t, "Create", config.NewTestConfig().RoomCodeAttempts)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestRoomService_CreateRoom_UnknownGameType(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := newTestRoomService(m, nil, "Qx7pL2")

	m.gameTypes.On("GetByID", ctx, int64(77)).Return(nil, nil)

	_, err := svc.CreateRoom(ctx, 77)

	assert.ErrorIs(t, err, ErrGameTypeNotFound)
	m.rooms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoomService_GetRoomState_ClosedRoom(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	cache := new(MockRoomCache)
	svc := newTestRoomService(m, cache)

	room := closedRoom("Ab3xY9")
	cache.On("Get", ctx, "Ab3xY9").Return(nil, false)
	m.rooms.On("GetByCode", ctx, "Ab3xY9").Return(room, nil)
	m.gameTypes.On("GetByID", ctx, rouletteID).Return(rouletteGame(), nil)
	m.wagers.On("GetRoomTotals", ctx, room.ID).Return(3, dec("1001"), nil)
	cache.On("Set", ctx, mock.AnythingOfType("*models.RoomDetail")).Return()

	detail, err := svc.GetRoomState(ctx, "Ab3xY9")

	require.NoError(t, err)
	assert.Equal(t, models.RoomStateClosed, detail.Room.State())
	require.NotNil(t, detail.OutcomeOption)
	assert.Equal(t, "red", detail.OutcomeOption.Label)
	assert.Equal(t, 3, detail.WagerCount)
	assert.True(t, detail.TotalPool.Equal(dec("1001")))
	assert.Len(t, detail.GameType.Options, 3)
	cache.AssertExpectations(t)
}

func TestRoomService_GetRoomState_CacheHit(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	cache := new(MockRoomCache)
	svc := newTestRoomService(m, cache)

	cached := &models.RoomDetail{Room: openRoom("Ab3xY9"), GameType: rouletteGame()}
	cache.On("Get", ctx, "Ab3xY9").Return(cached, true)

	detail, err := svc.GetRoomState(ctx, "Ab3xY9")

	require.NoError(t, err)
	assert.Same(t, cached, detail)
	m.factory.AssertNotCalled(t, "Create")
}

func TestRoomService_GetRoomState_NotFound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := newTestRoomService(m, nil)

	m.rooms.On("GetByCode", ctx, "Zz9Zz9").Return(nil, nil)

	_, err := svc.GetRoomState(ctx, "Zz9Zz9")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.GetRoomState(ctx, "bad code")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomService_ListGameTypes(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	svc := newTestRoomService(m, nil)

	catalogue := []*models.GameType{rouletteGame()}
	m.gameTypes.On("GetAll", ctx).Return(catalogue, nil)

	got, err := svc.ListGameTypes(ctx)

	require.NoError(t, err)
	assert.Equal(t, catalogue, got)
}
