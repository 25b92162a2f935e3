package hub

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrSessionClosed = errors.New("session closed")

// Session is one websocket connection of a room member. Writes are serialized
// by the session's own mutex.
type Session struct {
	memberId string
	roomId   string
	conn     *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func NewSession(memberId, roomId string, conn *websocket.Conn) *Session {
	return &Session{
		memberId: memberId,
		roomId:   roomId,
		conn:     conn,
	}
}

func (s *Session) MemberId() string {
	return s.memberId
}

func (s *Session) RoomId() string {
	return s.roomId
}

func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

func (s *Session) write(data []byte, writeWait time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// close sends a close frame with the given code and drops the connection.
// Calling it more than once is a no-op.
func (s *Session) close(code int, text string, writeWait time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text),
		time.Now().Add(writeWait),
	)
	s.conn.Close()
}
