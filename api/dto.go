package api

import (
	"time"

	"betroom/betting"
	"betroom/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request bodies

type CreateUserRequest struct {
	Nickname string `json:"nickname" binding:"required"`
}

type CreateRoomRequest struct {
	GameTypeID int64 `json:"game_type_id" binding:"required,gt=0"`
}

// PlaceWagerRequest accepts the stake as a JSON string or number
type PlaceWagerRequest struct {
	UserID   uuid.UUID       `json:"user_id" binding:"required"`
	OptionID int64           `json:"option_id" binding:"required,gt=0"`
	Stake    decimal.Decimal `json:"stake"`
}

// Responses. Money is always a fixed two-decimal string.

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Nickname  string    `json:"nickname"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users  []UserResponse `json:"users"`
	Offset int            `json:"offset"`
}

type HistoryEntryResponse struct {
	WagerID   int64      `json:"wager_id"`
	RoomCode  string     `json:"room_code"`
	RoomOpen  bool       `json:"room_open"`
	Game      string     `json:"game"`
	Option    string     `json:"option"`
	Stake     string     `json:"stake"`
	Won       bool       `json:"won"`
	Payout    *string    `json:"payout"`
	PlacedAt  time.Time  `json:"placed_at"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

type UserProfileResponse struct {
	UserResponse
	Wagers []HistoryEntryResponse `json:"wagers"`
}

type BalanceHistoryResponse struct {
	ID              int64     `json:"id"`
	BalanceBefore   string    `json:"balance_before"`
	BalanceAfter    string    `json:"balance_after"`
	ChangeAmount    string    `json:"change_amount"`
	TransactionType string    `json:"transaction_type"`
	RelatedID       *int64    `json:"related_id,omitempty"`
	RelatedType     *string   `json:"related_type,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type OptionResponse struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type GameTypeResponse struct {
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	Options []OptionResponse `json:"options"`
}

type RoomResponse struct {
	Code       string           `json:"code"`
	State      string           `json:"state"`
	Game       GameTypeResponse `json:"game"`
	WagerCount int              `json:"wager_count"`
	TotalPool  string           `json:"total_pool"`
	Outcome    *string          `json:"outcome,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	ClosedAt   *time.Time       `json:"closed_at,omitempty"`
}

type CreatedRoomResponse struct {
	Code       string `json:"code"`
	GameTypeID int64  `json:"game_type_id"`
}

type WagerResponse struct {
	ID       int64     `json:"id"`
	RoomCode string    `json:"room_code"`
	UserID   uuid.UUID `json:"user_id"`
	OptionID int64     `json:"option_id"`
	Stake    string    `json:"stake"`
	PlacedAt time.Time `json:"placed_at"`
}

type PayoutResponse struct {
	WagerID  int64     `json:"wager_id"`
	UserID   uuid.UUID `json:"user_id"`
	OptionID int64     `json:"option_id"`
	Stake    string    `json:"stake"`
	Payout   string    `json:"payout"`
	Won      bool      `json:"won"`
}

type SettlementResponse struct {
	Code          string           `json:"code"`
	Outcome       string           `json:"outcome"`
	DrawValue     int              `json:"draw_value"`
	TotalPool     string           `json:"total_pool"`
	WinningPool   string           `json:"winning_pool"`
	HouseRetained string           `json:"house_retained"`
	Payouts       []PayoutResponse `json:"payouts"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(betting.MinorUnitPlaces)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Balance:   money(u.Balance),
		CreatedAt: u.CreatedAt,
	}
}

func toHistoryResponses(entries []*models.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			WagerID:   e.WagerID,
			RoomCode:  e.RoomCode,
			RoomOpen:  e.RoomOpen,
			Game:      e.GameName,
			Option:    e.OptionLabel,
			Stake:     money(e.Stake),
			Won:       e.Won,
			Payout:    nullMoney(e.Payout),
			PlacedAt:  e.PlacedAt,
			SettledAt: e.SettledAt,
		})
	}
	return out
}

func toBalanceHistoryResponses(entries []*models.BalanceHistory) []BalanceHistoryResponse {
	out := make([]BalanceHistoryResponse, 0, len(entries))
	for _, e := range entries {
		r := BalanceHistoryResponse{
			ID:              e.ID,
			BalanceBefore:   money(e.BalanceBefore),
			BalanceAfter:    money(e.BalanceAfter),
			ChangeAmount:    money(e.ChangeAmount),
			TransactionType: string(e.TransactionType),
			RelatedID:       e.RelatedID,
			CreatedAt:       e.CreatedAt,
		}
		if e.RelatedType != nil {
			rt := string(*e.RelatedType)
			r.RelatedType = &rt
		}
		out = append(out, r)
	}
	return out
}

func toGameTypeResponse(g *models.GameType) GameTypeResponse {
	r := GameTypeResponse{ID: g.ID, Name: g.Name, Options: make([]OptionResponse, 0, len(g.Options))}
	for _, o := range g.Options {
		r.Options = append(r.Options, OptionResponse{ID: o.ID, Label: o.Label})
	}
	return r
}

func toRoomResponse(d *models.RoomDetail) RoomResponse {
	r := RoomResponse{
		Code:       d.Room.Code,
		State:      string(d.Room.State()),
		Game:       toGameTypeResponse(d.GameType),
		WagerCount: d.WagerCount,
		TotalPool:  money(d.TotalPool),
		CreatedAt:  d.Room.CreatedAt,
		ClosedAt:   d.Room.ClosedAt,
	}
	if d.OutcomeOption != nil {
		r.Outcome = &d.OutcomeOption.Label
	}
	return r
}

func toSettlementResponse(res *models.SettlementResult) SettlementResponse {
	r := SettlementResponse{
		Code:          res.Room.Code,
		Outcome:       res.WinningOption.Label,
		DrawValue:     res.DrawValue,
		TotalPool:     money(res.TotalPool),
		WinningPool:   money(res.WinningPool),
		HouseRetained: money(res.HouseRetained),
		Payouts:       make([]PayoutResponse, 0, len(res.Payouts)),
	}
	for _, p := range res.Payouts {
		r.Payouts = append(r.Payouts, PayoutResponse{
			WagerID:  p.WagerID,
			UserID:   p.UserID,
			OptionID: p.OptionID,
			Stake:    money(p.Stake),
			Payout:   money(p.Payout),
			Won:      p.Won,
		})
	}
	return r
}
