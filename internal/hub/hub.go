package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const defaultWriteWait = 10 * time.Second

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// Hub keeps the sessions of this process grouped by room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Session

	locksMu sync.Mutex
	locks   map[string]*roomLock

	writeWait time.Duration
	logger    *slog.Logger
}

func New(writeWait time.Duration, logger *slog.Logger) *Hub {
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}

	return &Hub{
		rooms:     make(map[string]map[string]*Session),
		locks:     make(map[string]*roomLock),
		writeWait: writeWait,
		logger:    logger,
	}
}

// Register adds s to its room. A previous session of the same member in that
// room is closed and replaced.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	sessions, ok := h.rooms[s.roomId]
	if !ok {
		sessions = make(map[string]*Session)
		h.rooms[s.roomId] = sessions
	}
	prev := sessions[s.memberId]
	sessions[s.memberId] = s
	h.mu.Unlock()

	if prev != nil && prev != s {
		h.logger.Info("replacing session", "room_id", s.roomId, "member_id", s.memberId)
		prev.close(websocket.ClosePolicyViolation, "session replaced", h.writeWait)
	}
}

// Unregister removes s from its room. It is a no-op when s was already
// removed or replaced.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.rooms[s.roomId]
	if !ok || sessions[s.memberId] != s {
		return
	}

	delete(sessions, s.memberId)
	if len(sessions) == 0 {
		delete(h.rooms, s.roomId)
	}
}

func (h *Hub) Count(roomId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomId])
}

func (h *Hub) snapshot(roomId, exceptMemberId string) []*Session {
	h.mu.RLock()
	sessions := maps.Values(h.rooms[roomId])
	h.mu.RUnlock()

	return slices.DeleteFunc(sessions, func(s *Session) bool {
		return s.memberId == exceptMemberId
	})
}

// Broadcast sends msg to every session of the room.
func (h *Hub) Broadcast(ctx context.Context, roomId string, msg any) error {
	return h.BroadcastExcept(ctx, roomId, "", msg)
}

// BroadcastExcept sends msg to every session of the room except the one of
// exceptMemberId. Sessions whose write fails are dropped.
func (h *Hub) BroadcastExcept(ctx context.Context, roomId, exceptMemberId string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	for _, s := range h.snapshot(roomId, exceptMemberId) {
		h.writeOrDrop(ctx, s, data)
	}

	return nil
}

func (h *Hub) Send(ctx context.Context, s *Session, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := s.write(data, h.writeWait); err != nil {
		h.drop(ctx, s, err)
		return err
	}

	return nil
}

func (h *Hub) writeOrDrop(ctx context.Context, s *Session, data []byte) {
	if err := s.write(data, h.writeWait); err != nil {
		h.drop(ctx, s, err)
	}
}

func (h *Hub) drop(ctx context.Context, s *Session, err error) {
	h.logger.WarnContext(ctx, "dropping session after failed write",
		"room_id", s.roomId,
		"member_id", s.memberId,
		"error", err,
	)
	h.Unregister(s)
	s.close(websocket.CloseGoingAway, "write failed", h.writeWait)
}

// Close sends msg (when not nil) to s and closes it.
func (h *Hub) Close(ctx context.Context, s *Session, msg any) {
	if msg != nil {
		h.Send(ctx, s, msg)
	}

	h.Unregister(s)
	s.close(websocket.CloseNormalClosure, "", h.writeWait)
}

// Evict delivers msg to every session of the room, then closes them and
// forgets the room.
func (h *Hub) Evict(ctx context.Context, roomId string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.Lock()
	sessions := h.rooms[roomId]
	delete(h.rooms, roomId)
	h.mu.Unlock()

	for _, s := range sessions {
		if err := s.write(data, h.writeWait); err != nil {
			h.logger.DebugContext(ctx, "failed to deliver eviction message", "member_id", s.memberId, "error", err)
		}
		s.close(websocket.CloseNormalClosure, "room ended", h.writeWait)
	}

	return nil
}

// Lock enters the room's critical section and returns the function leaving
// it. Rooms never block each other.
func (h *Hub) Lock(roomId string) func() {
	h.locksMu.Lock()
	l, ok := h.locks[roomId]
	if !ok {
		l = &roomLock{}
		h.locks[roomId] = l
	}
	l.refs++
	h.locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		h.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, roomId)
		}
		h.locksMu.Unlock()
	}
}
