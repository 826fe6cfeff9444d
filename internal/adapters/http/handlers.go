package http

import (
	"cmp"
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type CreateRoomRequest struct {
	RoomID domain.RoomID `json:"roomId"`
}

type CreateRoomResponse struct {
	RoomID domain.RoomID `json:"roomId"`
	Token  domain.Token  `json:"token"`
}

type handlers struct {
	orch       *orch.Orchestrator
	iceServers []webrtc.ICEServer
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createRoom accepts an empty body, in which case a room id is generated.
func (h *handlers) createRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	room, tok, err := h.orch.IssueRoom(c.Request.Context(), req.RoomID)
	if errors.Is(err, orch.ErrRoomIDTooLong) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId too long"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Str("room_id", string(room)).Msg("room created over http")
	c.JSON(http.StatusCreated, CreateRoomResponse{RoomID: room, Token: tok})
}

func (h *handlers) listRooms(c *gin.Context) {
	rooms := h.orch.Registry.List()
	slices.SortFunc(rooms, func(a, b domain.RoomInfo) int { return cmp.Compare(a.ID, b.ID) })
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *handlers) getRoom(c *gin.Context) {
	info, ok := h.orch.Registry.RoomInfo(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) iceServersList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.iceServers})
}
