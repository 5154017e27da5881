package service

import (
	"testing"

	"betroom/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const (
	rouletteID  int64 = 1
	greenOption int64 = 10
	redOption   int64 = 11
	blackOption int64 = 12
)

func rouletteGame() *models.GameType {
	return &models.GameType{
		ID:   rouletteID,
		Name: "roulette",
		Options: []*models.OutcomeOption{
			{ID: greenOption, GameTypeID: rouletteID, Label: "green", Position: 0},
			{ID: redOption, GameTypeID: rouletteID, Label: "red", Position: 1},
			{ID: blackOption, GameTypeID: rouletteID, Label: "black", Position: 2},
		},
	}
}

func openRoom(code string) *models.Room {
	return &models.Room{ID: 5, Code: code, GameTypeID: rouletteID, IsOpen: true}
}

func closedRoom(code string) *models.Room {
	outcome := redOption
	return &models.Room{ID: 5, Code: code, GameTypeID: rouletteID, IsOpen: false, OutcomeOptionID: &outcome}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value rather than representation
func decEq(s string) any {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

type serviceMocks struct {
	factory        *MockUnitOfWorkFactory
	uow            *MockUnitOfWork
	users          *MockUserRepository
	gameTypes      *MockGameTypeRepository
	rooms          *MockRoomRepository
	wagers         *MockWagerRepository
	balanceHistory *MockBalanceHistoryRepository
}

// newServiceMocks wires a single unit of work that every Create call returns.
// Begin and Rollback are always expected, Commit must be set up by the test.
func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		factory:        new(MockUnitOfWorkFactory),
		uow:            new(MockUnitOfWork),
		users:          new(MockUserRepository),
		gameTypes:      new(MockGameTypeRepository),
		rooms:          new(MockRoomRepository),
		wagers:         new(MockWagerRepository),
		balanceHistory: new(MockBalanceHistoryRepository),
	}
	m.uow.SetRepositories(m.users, m.gameTypes, m.rooms, m.wagers, m.balanceHistory)
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Rollback").Return(nil)
	return m
}

func (m *serviceMocks) expectCommit() {
	m.uow.On("Commit").Return(nil)
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.gameTypes.AssertExpectations(t)
	m.rooms.AssertExpectations(t)
	m.wagers.AssertExpectations(t)
	m.balanceHistory.AssertExpectations(t)
}

func decNull(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
