package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "zenstream/internal/errors"
	"zenstream/internal/service"
)

const (
	eventBuffer       = 16
	keepAliveInterval = 15 * time.Second
)

type TimerHandler struct {
	timerService *service.TimerService
}

func NewTimerHandler(timerService *service.TimerService) *TimerHandler {
	return &TimerHandler{timerService: timerService}
}

func (h *TimerHandler) GetState(c *gin.Context) {
	state := h.timerService.GetState(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Start(c *gin.Context) {
	state, apiErr := h.timerService.Start(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Stop(c *gin.Context) {
	state := h.timerService.Stop(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) GetHistory(c *gin.Context) {
	limit := 0
	if rawLimit := c.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil {
			writeError(c, apperrors.BadRequest("invalid_limit", "limit must be an integer"))
			return
		}
		limit = parsed
	}

	intervals, apiErr := h.timerService.GetHistory(c.Request.Context(), limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intervals": intervals})
}

// Events streams timer events as server-sent events until the client goes
// away. The current state is sent first so a client never starts blank.
func (h *TimerHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	events, unsubscribe := h.timerService.Subscribe(eventBuffer)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.SSEvent("state", h.timerService.GetState(ctx))
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"serverTime": time.Now().UTC()})
			c.Writer.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(event.Type), gin.H{
				"event": event,
				"state": h.timerService.View(ctx, event.RunState),
			})
			c.Writer.Flush()
		}
	}
}
