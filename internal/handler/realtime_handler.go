package handler

import (
	"errors"
	"net/http"

	"workspace/internal/realtime"
	"workspace/internal/repository"
	"workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	boards   *repository.BoardRepository
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub, boards *repository.BoardRepository, log *logrus.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		boards: boards,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Subscribe upgrades the connection and attaches it to the board's
// channel until the transport drops. Reconnecting is the client's job.
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	const op = "handler.Realtime.Subscribe"

	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		response.NewValidationError("invalid board ID format").JSON(c)
		return
	}

	if _, err := h.boards.GetByID(c.Request.Context(), boardID); err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			response.NewNotFoundError("board not found").JSON(c)
			return
		}
		h.log.WithField("operation", op).WithError(err).Error("board load failed")
		response.NewInternalError().JSON(c)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(h.hub, conn, boardID.String(), h.log)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
