package room

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sharetube/jukebox/internal/repository/catalog"
	"github.com/sharetube/jukebox/pkg/events"
)

const FarewellMessage = "Thank you for being part of this space...see you soon"

type CreateRoomParams struct {
	AdminName string
}

type CreateRoomResponse struct {
	RoomId    string
	MemberId  string
	AuthToken string
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	if err := validate(validation.Errors{
		"admin_name": validation.Validate(params.AdminName, AdminNameRule...),
	}); err != nil {
		return CreateRoomResponse{}, err
	}

	roomId := s.generator.GenerateRandomString(roomIdLength)
	memberId := uuid.NewString()
	if err := s.catalogRepo.CreateRoom(ctx, &catalog.Room{
		Id:        roomId,
		AdminId:   memberId,
		AdminName: params.AdminName,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	authToken, err := s.generateJWT(memberId, roomId)
	if err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to generate jwt: %w", err)
	}

	s.publish(ctx, events.EventTypeRoomCreated, roomId, memberId, nil)

	return CreateRoomResponse{
		RoomId:    roomId,
		MemberId:  memberId,
		AuthToken: authToken,
	}, nil
}

type JoinRoomParams struct {
	RoomId    string
	AuthToken string
}

type JoinRoomResponse struct {
	MemberId          string
	IsAdmin           bool
	AuthToken         string
	EstimatedPosition *float64
	CurrentTrackId    *string
	Queue             []Track
}

// JoinRoom identifies the joining member and returns what the member needs to
// catch up: the estimated playback position and the queue snapshot. A token
// issued for this room restores the member id; otherwise a new one is issued.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if err := validate(validation.Errors{
		"room_id": validation.Validate(params.RoomId, RoomIdRule...),
	}); err != nil {
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	r, err := s.getRoom(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	memberId := ""
	if params.AuthToken != "" {
		claims, err := s.parseJWT(params.AuthToken)
		if err != nil {
			s.logger.DebugContext(ctx, "ignoring auth token", "error", err)
		} else if claims.RoomId == params.RoomId {
			memberId = claims.MemberId
		}
	}

	if memberId == "" {
		memberId = uuid.NewString()
	}

	authToken, err := s.generateJWT(memberId, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to generate jwt: %w", err)
	}

	estimatedPosition, currentTrackId, err := s.estimatePosition(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to estimate position: %w", err)
	}

	queue, err := s.getQueue(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}

	s.publish(ctx, events.EventTypeMemberJoined, params.RoomId, memberId, nil)

	return JoinRoomResponse{
		MemberId:          memberId,
		IsAdmin:           r.AdminId == memberId,
		AuthToken:         authToken,
		EstimatedPosition: estimatedPosition,
		CurrentTrackId:    currentTrackId,
		Queue:             queue,
	}, nil
}

type EndRoomParams struct {
	SenderId string
	RoomId   string
}

// EndRoom tears the room down: queue, playback state and the directory entry
// are removed.
func (s service) EndRoom(ctx context.Context, params *EndRoomParams) error {
	if err := s.checkIfMemberAdmin(ctx, params.RoomId, params.SenderId); err != nil {
		return fmt.Errorf("failed to check if member is admin: %w", err)
	}

	if err := s.queueRepo.RemoveRoom(ctx, params.RoomId); err != nil {
		return fmt.Errorf("failed to remove room state: %w", err)
	}

	if err := s.catalogRepo.RemoveRoom(ctx, params.RoomId); err != nil && !errors.Is(err, catalog.ErrRoomNotFound) {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	s.publish(ctx, events.EventTypeRoomEnded, params.RoomId, params.SenderId, nil)

	return nil
}

func (s service) GetRoomTracks(ctx context.Context, roomId string) ([]Track, error) {
	if err := validate(validation.Errors{
		"room_id": validation.Validate(roomId, RoomIdRule...),
	}); err != nil {
		return nil, ErrRoomNotFound
	}

	if _, err := s.getRoom(ctx, roomId); err != nil {
		return nil, err
	}

	return s.getQueue(ctx, roomId)
}
