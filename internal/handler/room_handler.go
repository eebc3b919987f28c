package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kelasid/ruangkelas-backend/internal/model"
	"github.com/kelasid/ruangkelas-backend/internal/response"
	"github.com/kelasid/ruangkelas-backend/internal/service"
	"github.com/kelasid/ruangkelas-backend/internal/validator"
)

// RoomHandler handles room credential and teardown endpoints.
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// IssueToken godoc
// POST /api/v1/rooms/token
// Mints a room access credential for one identity.
func (h *RoomHandler) IssueToken(c *gin.Context) {
	var req model.RoomTokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.roomService.IssueToken(c.Request.Context(), req.RoomName, req.Identity, model.RoomRole(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrMissingField) {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"credential": token})
}

// DeleteRoom godoc
// DELETE /api/v1/rooms/:room_name
// Tears down a room at the video provider.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	if err := h.roomService.DeleteRoom(c.Request.Context(), c.Param("room_name")); err != nil {
		if errors.Is(err, service.ErrRoomProvider) {
			response.Fail(c, http.StatusBadGateway, response.ErrRoomProvider)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
