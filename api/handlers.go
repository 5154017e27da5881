package api

import (
	"net/http"
	"strconv"

	"betroom/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Handler serves the HTTP API on top of the services
type Handler struct {
	users      service.UserService
	rooms      service.RoomService
	wagers     service.WagerService
	settlement service.SettlementService
}

// NewHandler creates a new API handler
func NewHandler(users service.UserService, rooms service.RoomService, wagers service.WagerService, settlement service.SettlementService) *Handler {
	return &Handler{
		users:      users,
		rooms:      rooms,
		wagers:     wagers,
		settlement: settlement,
	}
}

var errorStatus = map[service.ErrorKind]int{
	service.KindNotFound:   http.StatusNotFound,
	service.KindConflict:   http.StatusConflict,
	service.KindValidation: http.StatusUnprocessableEntity,
	service.KindBusy:       http.StatusServiceUnavailable,
}

// writeError maps a service error to a status code. Internal errors are logged and
// reported without detail.
func writeError(c *gin.Context, err error) {
	de, ok := service.AsDomainError(err)
	status, mapped := errorStatus[service.KindOf(err)]
	if !ok || !mapped {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: "internal error"})
		return
	}

	if de.Kind == service.KindBusy {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, ErrorResponse{Error: de.Code, Message: de.Message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: message})
}

// nonNegativeQuery reads an optional integer query parameter, zero when absent
func nonNegativeQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func userIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "user id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "nickname is required")
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Nickname)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// GetUser handles GET /users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	profile, err := h.users.GetUserProfile(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserProfileResponse{
		UserResponse: toUserResponse(profile.User),
		Wagers:       toHistoryResponses(profile.Wagers),
	})
}

// ListUsers handles GET /users?limit=n&offset=m
func (h *Handler) ListUsers(c *gin.Context) {
	limit, ok := nonNegativeQuery(c, "limit")
	if !ok {
		return
	}
	offset, ok := nonNegativeQuery(c, "offset")
	if !ok {
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, UserListResponse{Users: out, Offset: offset})
}

// GetUserHistory handles GET /users/:id/history
func (h *Handler) GetUserHistory(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	history, err := h.users.GetUserHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHistoryResponses(history))
}

// GetBalanceHistory handles GET /users/:id/balance-history?limit=n
func (h *Handler) GetBalanceHistory(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	limit, ok := nonNegativeQuery(c, "limit")
	if !ok {
		return
	}

	entries, err := h.users.GetBalanceHistory(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBalanceHistoryResponses(entries))
}

// ListGameTypes handles GET /game-types
func (h *Handler) ListGameTypes(c *gin.Context) {
	gameTypes, err := h.rooms.ListGameTypes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]GameTypeResponse, 0, len(gameTypes))
	for _, g := range gameTypes {
		out = append(out, toGameTypeResponse(g))
	}
	c.JSON(http.StatusOK, out)
}

// GetRoom handles GET /rooms/:code
func (h *Handler) GetRoom(c *gin.Context) {
	detail, err := h.rooms.GetRoomState(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoomResponse(detail))
}

// PlaceWager handles POST /rooms/:code/wagers
func (h *Handler) PlaceWager(c *gin.Context) {
	var req PlaceWagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user_id, option_id and stake are required")
		return
	}

	code := c.Param("code")
	wager, err := h.wagers.PlaceWager(c.Request.Context(), code, req.UserID, req.OptionID, req.Stake)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, WagerResponse{
		ID:       wager.ID,
		RoomCode: code,
		UserID:   wager.UserID,
		OptionID: wager.OptionID,
		Stake:    money(wager.Stake),
		PlacedAt: wager.CreatedAt,
	})
}

// CreateRoom handles POST /admin/rooms
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "game_type_id is required")
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), req.GameTypeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedRoomResponse{Code: room.Code, GameTypeID: room.GameTypeID})
}

// CloseRoom handles POST /admin/rooms/:code/close
func (h *Handler) CloseRoom(c *gin.Context) {
	result, err := h.settlement.CloseRoom(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettlementResponse(result))
}
