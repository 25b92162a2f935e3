package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sharetube/jukebox/internal/hub"
	"github.com/sharetube/jukebox/internal/service/room"
	"github.com/sharetube/jukebox/pkg/ctxlogger"
	"github.com/sharetube/jukebox/pkg/wsrouter"
)

var ErrValidationError = errors.New("validation error")

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	authToken := r.URL.Query().Get("auth-token")

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx := context.WithoutCancel(r.Context())
	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", roomId))

	unlock := c.hub.Lock(roomId)
	joinRoomResponse, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId:    roomId,
		AuthToken: authToken,
	})
	if err != nil {
		unlock()

		// The session is never registered, the message goes to the joiner only.
		session := hub.NewSession("", roomId, conn)
		if errors.Is(err, room.ErrRoomNotFound) {
			c.logger.InfoContext(ctx, "room not found")
			c.hub.Close(ctx, session, Output{
				Type:    typeRoomNotFound,
				Payload: roomIdOutput{RoomId: roomId},
			})
			return
		}

		c.logger.ErrorContext(ctx, "failed to join room", "error", err)
		c.hub.Close(ctx, session, Output{
			Type:    typeErrorOccurred,
			Payload: messageOutput{Message: "internal error"},
		})
		return
	}

	memberId := joinRoomResponse.MemberId
	ctx = ctxlogger.AppendCtx(ctx, slog.String("member_id", memberId))
	session := hub.NewSession(memberId, roomId, conn)
	ctx = context.WithValue(ctx, roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, memberIdCtxKey, memberId)
	ctx = context.WithValue(ctx, sessionCtxKey, session)

	c.hub.Register(session)
	defer c.hub.Unregister(session)

	if err := c.hub.Send(ctx, session, Output{
		Type: typeJoinedRoom,
		Payload: joinedRoomOutput{
			RoomId:            roomId,
			MemberId:          memberId,
			IsAdmin:           joinRoomResponse.IsAdmin,
			AuthToken:         joinRoomResponse.AuthToken,
			EstimatedPosition: joinRoomResponse.EstimatedPosition,
			CurrentTrackId:    joinRoomResponse.CurrentTrackId,
			Queue:             joinRoomResponse.Queue,
		},
	}); err != nil {
		unlock()
		c.logger.InfoContext(ctx, "failed to send joined room", "error", err)
		return
	}

	if err := c.hub.BroadcastExcept(ctx, roomId, memberId, Output{
		Type:    typeMemberJoined,
		Payload: memberJoinedOutput{MemberId: memberId},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast member joined", "error", err)
	}
	unlock()

	c.logger.InfoContext(ctx, "member joined", "is_admin", joinRoomResponse.IsAdmin)
	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "reason", err)
	}
}

// handleWSError reports a failed message to its sender only. Messages rejected
// for lack of admin rights are dropped without a reply.
func (c controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	if errors.Is(err, room.ErrPermissionDenied) {
		c.logger.DebugContext(ctx, "dropping message from non-admin", "error", err)
		return
	}

	message := "internal error"
	switch {
	case errors.Is(err, ErrValidationError),
		errors.Is(err, room.ErrInvalidInput),
		errors.Is(err, room.ErrQueueLimitReached),
		errors.Is(err, wsrouter.ErrInvalidPayload),
		errors.Is(err, wsrouter.ErrUnknownMessageType):
		c.logger.InfoContext(ctx, "rejected message", "error", err)
		message = userMessage(err)
	default:
		c.logger.ErrorContext(ctx, "failed to handle message", "error", err)
	}

	session := c.getSessionFromCtx(ctx)
	if session == nil {
		return
	}

	if err := c.hub.Send(ctx, session, Output{
		Type:    typeErrorOccurred,
		Payload: messageOutput{Message: message},
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to send error", "error", err)
	}
}

// userMessage strips the handler prefixes ("failed to x: ") from err.
func userMessage(err error) string {
	msg := err.Error()
	for strings.HasPrefix(msg, "failed to ") {
		i := strings.Index(msg, ": ")
		if i < 0 {
			break
		}
		msg = msg[i+2:]
	}

	return msg
}

func (c controller) validateInput(input any) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %w", ErrValidationError, validationErrors)
	}

	return nil
}

func (c controller) broadcastQueue(ctx context.Context, roomId string, queue []room.Track) error {
	if err := c.hub.Broadcast(ctx, roomId, queueUpdated(queue)); err != nil {
		return fmt.Errorf("failed to broadcast queue: %w", err)
	}

	return nil
}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ any) error {
	return nil
}

type TrackInput struct {
	TrackId string `json:"track_id" validate:"required,max=64,trackid"`
}

func (c controller) handleAddTrack(ctx context.Context, _ *websocket.Conn, input TrackInput) error {
	return c.vote(ctx, input, c.roomService.AddTrack)
}

func (c controller) handleUpvote(ctx context.Context, _ *websocket.Conn, input TrackInput) error {
	return c.vote(ctx, input, c.roomService.Upvote)
}

func (c controller) handleDownvote(ctx context.Context, _ *websocket.Conn, input TrackInput) error {
	return c.vote(ctx, input, c.roomService.Downvote)
}

func (c controller) vote(
	ctx context.Context,
	input TrackInput,
	apply func(context.Context, *room.VoteParams) (room.VoteResponse, error),
) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	roomId := c.getRoomIdFromCtx(ctx)
	unlock := c.hub.Lock(roomId)
	defer unlock()

	voteResponse, err := apply(ctx, &room.VoteParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomId:   roomId,
		TrackId:  input.TrackId,
	})
	if err != nil {
		return fmt.Errorf("failed to vote: %w", err)
	}

	return c.broadcastQueue(ctx, roomId, voteResponse.Queue)
}

func (c controller) handleTrackCompleted(ctx context.Context, _ *websocket.Conn, input TrackInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	roomId := c.getRoomIdFromCtx(ctx)
	unlock := c.hub.Lock(roomId)
	defer unlock()

	trackCompletedResponse, err := c.roomService.TrackCompleted(ctx, &room.TrackCompletedParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomId:   roomId,
		TrackId:  input.TrackId,
	})
	if err != nil {
		return fmt.Errorf("failed to complete track: %w", err)
	}

	if !trackCompletedResponse.Removed {
		return nil
	}

	return c.broadcastQueue(ctx, roomId, trackCompletedResponse.Queue)
}

type HeartbeatInput struct {
	TrackId  string  `json:"track_id"`
	Position float64 `json:"position"`
}

func (c controller) handleAdminHeartbeat(ctx context.Context, _ *websocket.Conn, input HeartbeatInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	unlock := c.hub.Lock(roomId)
	defer unlock()

	heartbeatResponse, err := c.roomService.Heartbeat(ctx, &room.HeartbeatParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomId:   roomId,
		TrackId:  input.TrackId,
		Position: input.Position,
	})
	if err != nil {
		return fmt.Errorf("failed to store heartbeat: %w", err)
	}

	if !heartbeatResponse.ReorderRequired {
		return nil
	}

	return c.broadcastQueue(ctx, roomId, heartbeatResponse.Queue)
}

type ControlInput struct {
	Action   string  `json:"action"`
	Position float64 `json:"position"`
}

func (c controller) handleControl(ctx context.Context, _ *websocket.Conn, input ControlInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	memberId := c.getMemberIdFromCtx(ctx)
	unlock := c.hub.Lock(roomId)
	defer unlock()

	if err := c.roomService.Control(ctx, &room.ControlParams{
		SenderId: memberId,
		RoomId:   roomId,
		Action:   input.Action,
		Position: input.Position,
	}); err != nil {
		return fmt.Errorf("failed to control playback: %w", err)
	}

	if err := c.hub.BroadcastExcept(ctx, roomId, memberId, Output{
		Type: typeControlRelay,
		Payload: controlRelayOutput{
			Action:   input.Action,
			Position: input.Position,
		},
	}); err != nil {
		return fmt.Errorf("failed to relay control: %w", err)
	}

	return nil
}

type SeekInput struct {
	Position float64 `json:"position"`
}

func (c controller) handleSeek(ctx context.Context, _ *websocket.Conn, input SeekInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	memberId := c.getMemberIdFromCtx(ctx)
	unlock := c.hub.Lock(roomId)
	defer unlock()

	if err := c.roomService.Seek(ctx, &room.SeekParams{
		SenderId: memberId,
		RoomId:   roomId,
		Position: input.Position,
	}); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	if err := c.hub.BroadcastExcept(ctx, roomId, memberId, Output{
		Type:    typeSeekRelay,
		Payload: seekRelayOutput{Position: input.Position},
	}); err != nil {
		return fmt.Errorf("failed to relay seek: %w", err)
	}

	return nil
}

func (c controller) handleSkip(ctx context.Context, _ *websocket.Conn, _ any) error {
	roomId := c.getRoomIdFromCtx(ctx)
	memberId := c.getMemberIdFromCtx(ctx)
	unlock := c.hub.Lock(roomId)
	defer unlock()

	skipResponse, err := c.roomService.Skip(ctx, &room.SkipParams{
		SenderId: memberId,
		RoomId:   roomId,
	})
	if err != nil {
		return fmt.Errorf("failed to skip: %w", err)
	}

	if err := c.hub.BroadcastExcept(ctx, roomId, memberId, Output{
		Type:    typeTrackSkipped,
		Payload: trackSkippedOutput{TrackId: skipResponse.SkippedTrackId},
	}); err != nil {
		return fmt.Errorf("failed to broadcast skip: %w", err)
	}

	return c.broadcastQueue(ctx, roomId, skipResponse.Queue)
}

func (c controller) handleEndRoom(ctx context.Context, _ *websocket.Conn, _ any) error {
	roomId := c.getRoomIdFromCtx(ctx)
	unlock := c.hub.Lock(roomId)
	defer unlock()

	if err := c.roomService.EndRoom(ctx, &room.EndRoomParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomId:   roomId,
	}); err != nil {
		return fmt.Errorf("failed to end room: %w", err)
	}

	if err := c.hub.Evict(ctx, roomId, Output{
		Type:    typeRoomEnded,
		Payload: messageOutput{Message: room.FarewellMessage},
	}); err != nil {
		return fmt.Errorf("failed to evict room: %w", err)
	}

	return nil
}
