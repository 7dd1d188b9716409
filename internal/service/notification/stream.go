package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lunch-order/internal/domain"
)

var ErrHubClosed = errors.New("notification stream hub is shut down")

const heartbeatComment = "ping"

// FrameWriter is the transport side of one stream connection. A write error
// means the client is gone.
type FrameWriter interface {
	WriteFrame(frame domain.StreamFrame) error
	WriteComment(comment string) error
}

type StreamConfig struct {
	TickInterval      time.Duration
	HeartbeatInterval time.Duration
	SnapshotSize      int
}

// Stream tracks what one connection has already been sent. Rows are sent
// when created_at >= watermark and their id is not in sentAtWatermark, which
// holds the ids already sent whose created_at equals the watermark.
type Stream struct {
	svc             Service
	userID          uuid.UUID
	snapshotSize    int
	watermark       time.Time
	sentAtWatermark map[uuid.UUID]struct{}
}

func newStream(svc Service, userID uuid.UUID, snapshotSize int) *Stream {
	return &Stream{
		svc:             svc,
		userID:          userID,
		snapshotSize:    snapshotSize,
		sentAtWatermark: map[uuid.UUID]struct{}{},
	}
}

func (s *Stream) UserID() uuid.UUID {
	return s.userID
}

func (s *Stream) Watermark() time.Time {
	return s.watermark
}

// Snapshot returns the most recent visible rows and moves the watermark to
// the newest of them. An empty snapshot leaves the watermark at zero.
func (s *Stream) Snapshot(ctx context.Context) ([]domain.Notification, error) {
	items, err := s.svc.List(ctx, s.userID, false, s.snapshotSize)
	if err != nil {
		return nil, err
	}
	s.advance(items)
	return items, nil
}

// Next returns visible rows the connection has not seen yet, oldest first.
func (s *Stream) Next(ctx context.Context) ([]domain.Notification, error) {
	items, err := s.svc.ListSince(ctx, s.userID, s.watermark, s.excluded(), MaxListLimit)
	if err != nil {
		return nil, err
	}
	s.advance(items)
	return items, nil
}

func (s *Stream) excluded() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.sentAtWatermark))
	for id := range s.sentAtWatermark {
		ids = append(ids, id)
	}
	return ids
}

func (s *Stream) advance(items []domain.Notification) {
	for _, n := range items {
		switch {
		case n.CreatedAt.After(s.watermark):
			s.watermark = n.CreatedAt
			s.sentAtWatermark = map[uuid.UUID]struct{}{n.ID: {}}
		case n.CreatedAt.Equal(s.watermark):
			s.sentAtWatermark[n.ID] = struct{}{}
		}
	}
}

// StreamHub owns every open stream in the process. Shutdown ends all of them.
type StreamHub struct {
	svc    Service
	cfg    StreamConfig
	logger *slog.Logger

	mu      sync.Mutex
	streams map[*Stream]struct{}
	done    chan struct{}
	closed  bool
}

func NewStreamHub(svc Service, cfg StreamConfig, logger *slog.Logger) *StreamHub {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 5 * time.Second
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 25 * time.Second
	}
	if cfg.SnapshotSize <= 0 {
		cfg.SnapshotSize = 10
	}
	return &StreamHub{
		svc:     svc,
		cfg:     cfg,
		logger:  logger.With("component", "notification_stream"),
		streams: map[*Stream]struct{}{},
		done:    make(chan struct{}),
	}
}

func (h *StreamHub) Open(userID uuid.UUID) (*Stream, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	s := newStream(h.svc, userID, h.cfg.SnapshotSize)
	h.streams[s] = struct{}{}
	return s, nil
}

func (h *StreamHub) Release(s *Stream) {
	h.mu.Lock()
	delete(h.streams, s)
	h.mu.Unlock()
}

func (h *StreamHub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams)
}

func (h *StreamHub) Done() <-chan struct{} {
	return h.done
}

func (h *StreamHub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	h.logger.Info("stream hub shut down", "open_streams", len(h.streams))
}

// Serve writes the snapshot frame and then polls for new rows every tick
// until the client goes away, ctx ends or the hub shuts down. Idle periods
// longer than the heartbeat interval get a comment line.
func (h *StreamHub) Serve(ctx context.Context, s *Stream, w FrameWriter) error {
	defer h.Release(s)

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := w.WriteFrame(domain.StreamFrame{Notifications: snapshot}); err != nil {
		return err
	}

	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()

	lastWrite := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.done:
			return nil
		case <-ticker.C:
		}

		batch, err := s.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.logger.Warn("stream poll failed", "user_id", s.userID, "error", err)
			continue
		}

		if len(batch) > 0 {
			if err := w.WriteFrame(domain.StreamFrame{Notifications: batch}); err != nil {
				return err
			}
			lastWrite = time.Now()
			continue
		}

		if time.Since(lastWrite) >= h.cfg.HeartbeatInterval {
			if err := w.WriteComment(heartbeatComment); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
