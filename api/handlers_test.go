package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"betroom/models"
	"betroom/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct{ mock.Mock }

func (m *mockUserService) CreateUser(ctx context.Context, nickname string) (*models.User, error) {
	args := m.Called(ctx, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetOrCreateDiscordUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserService) GetUserProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *mockUserService) GetUserHistory(ctx context.Context, id uuid.UUID) ([]*models.HistoryEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryEntry), args.Error(1)
}

func (m *mockUserService) GetBalanceHistory(ctx context.Context, id uuid.UUID, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

type mockRoomService struct{ mock.Mock }

func (m *mockRoomService) CreateRoom(ctx context.Context, gameTypeID int64) (*models.Room, error) {
	args := m.Called(ctx, gameTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockRoomService) GetRoomState(ctx context.Context, code string) (*models.RoomDetail, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomDetail), args.Error(1)
}

func (m *mockRoomService) ListGameTypes(ctx context.Context) ([]*models.GameType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameType), args.Error(1)
}

type mockWagerService struct{ mock.Mock }

func (m *mockWagerService) PlaceWager(ctx context.Context, code string, userID uuid.UUID, optionID int64, stake decimal.Decimal) (*models.Wager, error) {
	args := m.Called(ctx, code, userID, optionID, stake)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *mockWagerService) WagersForRoom(ctx context.Context, roomID int64) ([]*models.Wager, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

type mockSettlementService struct{ mock.Mock }

func (m *mockSettlementService) CloseRoom(ctx context.Context, code string) (*models.SettlementResult, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementResult), args.Error(1)
}

type testServer struct {
	router     *gin.Engine
	users      *mockUserService
	rooms      *mockRoomService
	wagers     *mockWagerService
	settlement *mockSettlementService
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		users:      new(mockUserService),
		rooms:      new(mockRoomService),
		wagers:     new(mockWagerService),
		settlement: new(mockSettlementService),
	}
	s.router = NewRouter(NewHandler(s.users, s.rooms, s.wagers, s.settlement), nil)
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPlaceWager_Created(t *testing.T) {
	s := newTestServer()
	userID := uuid.New()

	s.wagers.On("PlaceWager", mock.Anything, "Ab3xY9", userID, int64(11), mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString("250.5"))
	})).Return(&models.Wager{ID: 8, UserID: userID, OptionID: 11, Stake: decimal.RequireFromString("250.5")}, nil)

	rec := s.do(http.MethodPost, "/rooms/Ab3xY9/wagers",
		`{"user_id":"`+userID.String()+`","option_id":11,"stake":"250.5"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body WagerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(8), body.ID)
	assert.Equal(t, "250.50", body.Stake)
	assert.Equal(t, "Ab3xY9", body.RoomCode)
}

func TestPlaceWager_ErrorMapping(t *testing.T) {
	userID := uuid.New()
	body := `{"user_id":"` + userID.String() + `","option_id":11,"stake":300}`

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"room not found", service.ErrRoomNotFound, http.StatusNotFound, "room_not_found"},
		{"room closed", service.ErrRoomClosed, http.StatusConflict, "room_closed"},
		{"duplicate wager", service.ErrDuplicateWager, http.StatusConflict, "duplicate_wager"},
		{"invalid option", service.ErrInvalidOption, http.StatusUnprocessableEntity, "invalid_option"},
		{"below minimum", service.ErrBelowMinimumStake, http.StatusUnprocessableEntity, "below_minimum_stake"},
		{"insufficient balance", service.ErrInsufficientBalance, http.StatusUnprocessableEntity, "insufficient_balance"},
		{"busy", service.ErrRoomBusy, http.StatusServiceUnavailable, "room_busy"},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.wagers.On("PlaceWager", mock.Anything, "Ab3xY9", userID, int64(11), mock.Anything).Return(nil, tt.err)

			rec := s.do(http.MethodPost, "/rooms/Ab3xY9/wagers", body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Error)
			if tt.wantStatus == http.StatusServiceUnavailable {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestPlaceWager_MalformedBody(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/rooms/Ab3xY9/wagers", `{"option_id":11,"stake":"300"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.wagers.AssertNotCalled(t, "PlaceWager", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRoom_ClosedRoomShowsOutcome(t *testing.T) {
	s := newTestServer()

	red := &models.OutcomeOption{ID: 11, Label: "red"}
	outcome := red.ID
	detail := &models.RoomDetail{
		Room:          &models.Room{Code: "Ab3xY9", IsOpen: false, OutcomeOptionID: &outcome},
		GameType:      &models.GameType{ID: 1, Name: "roulette", Options: []*models.OutcomeOption{{ID: 10, Label: "green"}, red}},
		OutcomeOption: red,
		WagerCount:    3,
		TotalPool:     decimal.RequireFromString("1001"),
	}
	s.rooms.On("GetRoomState", mock.Anything, "Ab3xY9").Return(detail, nil)

	rec := s.do(http.MethodGet, "/rooms/Ab3xY9", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body RoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "closed", body.State)
	require.NotNil(t, body.Outcome)
	assert.Equal(t, "red", *body.Outcome)
	assert.Equal(t, "1001.00", body.TotalPool)
	assert.Len(t, body.Game.Options, 2)
}

func TestCloseRoom_ReturnsPayouts(t *testing.T) {
	s := newTestServer()

	result := &models.SettlementResult{
		Room:          &models.Room{Code: "Ab3xY9"},
		WinningOption: &models.OutcomeOption{ID: 11, Label: "red"},
		DrawValue:     14,
		TotalPool:     decimal.RequireFromString("1001"),
		WinningPool:   decimal.RequireFromString("501"),
		HouseRetained: decimal.Zero,
		Payouts: []*models.WagerPayout{
			{WagerID: 1, Stake: decimal.RequireFromString("300"), Payout: decimal.RequireFromString("599.4"), Won: true},
			{WagerID: 2, Stake: decimal.RequireFromString("500"), Payout: decimal.Zero},
		},
	}
	s.settlement.On("CloseRoom", mock.Anything, "Ab3xY9").Return(result, nil)

	rec := s.do(http.MethodPost, "/admin/rooms/Ab3xY9/close", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body SettlementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "red", body.Outcome)
	assert.Equal(t, "599.40", body.Payouts[0].Payout)
	assert.Equal(t, "0.00", body.Payouts[1].Payout)
}

func TestCloseRoom_AlreadyClosed(t *testing.T) {
	s := newTestServer()
	s.settlement.On("CloseRoom", mock.Anything, "Ab3xY9").Return(nil, service.ErrRoomAlreadyClosed)

	rec := s.do(http.MethodPost, "/admin/rooms/Ab3xY9/close", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "room_already_closed", decodeError(t, rec).Error)
}

func TestCreateUser(t *testing.T) {
	s := newTestServer()
	id := uuid.New()
	s.users.On("CreateUser", mock.Anything, "alice").
		Return(&models.User{ID: id, Nickname: "alice", Balance: decimal.NewFromInt(2000)}, nil)

	rec := s.do(http.MethodPost, "/users", `{"nickname":"alice"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, id, body.ID)
	assert.Equal(t, "2000.00", body.Balance)
}

func TestListUsers(t *testing.T) {
	s := newTestServer()
	users := []*models.User{
		{ID: uuid.New(), Nickname: "alice", Balance: decimal.RequireFromString("1700.5")},
		{ID: uuid.New(), Nickname: "bob", Balance: decimal.NewFromInt(2000)},
	}
	s.users.On("ListUsers", mock.Anything, 2, 40).Return(users, nil)
	s.users.On("ListUsers", mock.Anything, 0, 0).Return([]*models.User{}, nil)

	rec := s.do(http.MethodGet, "/users?limit=2&offset=40", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body UserListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Users, 2)
	assert.Equal(t, "alice", body.Users[0].Nickname)
	assert.Equal(t, "1700.50", body.Users[0].Balance)
	assert.Equal(t, 40, body.Offset)

	rec = s.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":[],"offset":0}`, rec.Body.String())

	for _, q := range []string{"?limit=x", "?offset=-3"} {
		rec = s.do(http.MethodGet, "/users"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	s.users.AssertNumberOfCalls(t, "ListUsers", 2)
}

func TestUserRoutes_RejectMalformedID(t *testing.T) {
	s := newTestServer()

	for _, path := range []string{"/users/nope", "/users/nope/history", "/users/nope/balance-history"} {
		rec := s.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetUserHistory(t *testing.T) {
	s := newTestServer()
	id := uuid.New()
	entries := []*models.HistoryEntry{{
		WagerID:     3,
		RoomCode:    "Ab3xY9",
		GameName:    "roulette",
		OptionLabel: "red",
		Stake:       decimal.RequireFromString("300"),
		Won:         true,
		Payout:      decimal.NewNullDecimal(decimal.RequireFromString("599.4")),
	}}
	s.users.On("GetUserHistory", mock.Anything, id).Return(entries, nil)

	rec := s.do(http.MethodGet, "/users/"+id.String()+"/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []HistoryEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.NotNil(t, body[0].Payout)
	assert.Equal(t, "599.40", *body[0].Payout)
}

func TestGetBalanceHistory_Limit(t *testing.T) {
	s := newTestServer()
	id := uuid.New()
	s.users.On("GetBalanceHistory", mock.Anything, id, 5).Return([]*models.BalanceHistory{}, nil)

	rec := s.do(http.MethodGet, "/users/"+id.String()+"/balance-history?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/users/"+id.String()+"/balance-history?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(new(mockUserService), new(mockRoomService), new(mockWagerService), new(mockSettlementService))

	ok := NewRouter(h, func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewRouter(h, func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
