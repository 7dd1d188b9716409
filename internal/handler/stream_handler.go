package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"lunch-order/internal/domain"
	"lunch-order/internal/middleware"
	"lunch-order/internal/service/notification"
)

type StreamHandler struct {
	hub    *notification.StreamHub
	logger *slog.Logger
}

func NewStreamHandler(hub *notification.StreamHub, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, logger: logger.With("component", "stream_handler")}
}

// sseWriter frames notification batches as server-sent events. Every write is
// flushed so a gone client surfaces as an error.
type sseWriter struct {
	w *bufio.Writer
}

func (s *sseWriter) WriteFrame(frame domain.StreamFrame) error {
	if frame.Notifications == nil {
		frame.Notifications = []domain.Notification{}
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *sseWriter) WriteComment(comment string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", comment); err != nil {
		return err
	}
	return s.w.Flush()
}

// Stream registers the connection with the hub only once fasthttp starts
// the body writer, so a client that leaves before the response starts
// leaves nothing behind.
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	select {
	case <-h.hub.Done():
		return middleware.NewError(fiber.StatusServiceUnavailable, "Server is shutting down")
	default:
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		stream, err := h.hub.Open(userID)
		if err != nil {
			if !errors.Is(err, notification.ErrHubClosed) {
				h.logger.Error("failed to open stream", "user_id", userID, "error", err)
			}
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h.logger.Debug("stream opened", "user_id", userID, "active", h.hub.Active())
		if err := h.hub.Serve(ctx, stream, &sseWriter{w: w}); err != nil {
			h.logger.Debug("stream closed", "user_id", userID, "error", err)
		}
	}))

	return nil
}
