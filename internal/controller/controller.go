package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/jukebox/internal/hub"
	"github.com/sharetube/jukebox/internal/service/room"
	"github.com/sharetube/jukebox/pkg/validator"
	"github.com/sharetube/jukebox/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	EndRoom(context.Context, *room.EndRoomParams) error
	GetRoomTracks(context.Context, string) ([]room.Track, error)
	AddTrack(context.Context, *room.VoteParams) (room.VoteResponse, error)
	Upvote(context.Context, *room.VoteParams) (room.VoteResponse, error)
	Downvote(context.Context, *room.VoteParams) (room.VoteResponse, error)
	TrackCompleted(context.Context, *room.TrackCompletedParams) (room.TrackCompletedResponse, error)
	Heartbeat(context.Context, *room.HeartbeatParams) (room.HeartbeatResponse, error)
	Control(context.Context, *room.ControlParams) error
	Seek(context.Context, *room.SeekParams) error
	Skip(context.Context, *room.SkipParams) (room.SkipResponse, error)
}

type iHub interface {
	Register(*hub.Session)
	Unregister(*hub.Session)
	Broadcast(ctx context.Context, roomId string, msg any) error
	BroadcastExcept(ctx context.Context, roomId, exceptMemberId string, msg any) error
	Send(ctx context.Context, s *hub.Session, msg any) error
	Close(ctx context.Context, s *hub.Session, msg any)
	Evict(ctx context.Context, roomId string, msg any) error
	Lock(roomId string) func()
}

type controller struct {
	roomService iRoomService
	hub         iHub
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
}

func NewController(roomService iRoomService, hub iHub, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		hub:         hub,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
