package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/middleware"
	"github.com/thereayou/roomly/internal/services"
)

const (
	defaultSearchSize   = 10
	defaultRoomListSize = 16
)

type RoomHandler struct {
	rooms *services.RoomService
}

func NewRoomHandler(rooms *services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// CreateRoom creates a room; the caller becomes its CREATOR.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Name       string `json:"name" binding:"required"`
		Password   string `json:"password"`
		MaxMembers int    `json:"max_members" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: err.Error()})
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), userID, req.Name, req.Password, req.MaxMembers)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "Room created successfully", room)
}

// JoinRoom joins a room by its 6-character code.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Code     string `json:"code" binding:"required,len=6"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: err.Error()})
		return
	}

	room, err := h.rooms.JoinRoom(c.Request.Context(), userID, req.Code, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "Joined room successfully", room)
}

func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Query("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: "invalid room id"})
		return
	}

	if err := h.rooms.DeleteRoom(c.Request.Context(), userID, roomID); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "Room deleted successfully", nil)
}

func (h *RoomHandler) KickMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Query("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: "invalid room id"})
		return
	}
	targetID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: "invalid user id"})
		return
	}

	if err := h.rooms.KickMember(c.Request.Context(), userID, roomID, targetID); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "User kicked successfully", nil)
}

func (h *RoomHandler) SearchRooms(c *gin.Context) {
	page, size := pageParams(c, defaultSearchSize)

	result, err := h.rooms.SearchRooms(c.Request.Context(), c.Query("query"), page, size)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "Rooms fetched successfully", result)
}

// GetRoomMembers lists members with role and live online flag.
func (h *RoomHandler) GetRoomMembers(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: "invalid room id"})
		return
	}

	members, err := h.rooms.GetRoomMembers(c.Request.Context(), userID, roomID)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "Room members fetched successfully", members)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: "invalid room id"})
		return
	}

	room, err := h.rooms.GetRoomByID(c.Request.Context(), userID, roomID)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "Room details fetched successfully", room)
}

func (h *RoomHandler) GetUserRooms(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	page, size := pageParams(c, defaultRoomListSize)

	result, err := h.rooms.GetUserRooms(c.Request.Context(), userID, page, size)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "User rooms fetched successfully", result)
}

func (h *RoomHandler) GetUserRoomIDs(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	ids, err := h.rooms.GetUserRoomIDs(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "User room IDs fetched successfully", ids)
}

func (h *RoomHandler) GetOwnRooms(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	page, size := pageParams(c, defaultRoomListSize)

	result, err := h.rooms.GetOwnRooms(c.Request.Context(), userID, page, size)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "User own rooms fetched successfully", result)
}
