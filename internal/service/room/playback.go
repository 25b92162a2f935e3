package room

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	roomrepo "github.com/sharetube/jukebox/internal/repository/room"
	"github.com/sharetube/jukebox/pkg/events"
)

type HeartbeatParams struct {
	SenderId string
	RoomId   string
	TrackId  string
	Position float64
}

type HeartbeatResponse struct {
	ReorderRequired bool
	// Queue is set only when ReorderRequired is true.
	Queue []Track
}

// Heartbeat stores the admin's playback state. A track different from the
// stored one (including the first heartbeat) requires a reorder so the new
// track is shown as playing.
func (s service) Heartbeat(ctx context.Context, params *HeartbeatParams) (HeartbeatResponse, error) {
	if err := s.checkIfMemberAdmin(ctx, params.RoomId, params.SenderId); err != nil {
		return HeartbeatResponse{}, fmt.Errorf("failed to check if member is admin: %w", err)
	}

	if err := validate(validation.Errors{
		"track_id": validation.Validate(params.TrackId, TrackIdRule...),
		"position": validation.Validate(params.Position, PositionRule...),
	}); err != nil {
		return HeartbeatResponse{}, err
	}

	prevTrackId, err := s.queueRepo.SetPlayback(ctx, &roomrepo.SetPlaybackParams{
		RoomId:    params.RoomId,
		TrackId:   params.TrackId,
		Position:  params.Position,
		UpdatedAt: s.now().UnixMilli(),
	})
	if err != nil {
		return HeartbeatResponse{}, fmt.Errorf("failed to set playback: %w", err)
	}

	if prevTrackId == params.TrackId {
		return HeartbeatResponse{ReorderRequired: false}, nil
	}

	queue, err := s.getQueue(ctx, params.RoomId)
	if err != nil {
		return HeartbeatResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}

	s.publish(ctx, events.EventTypePlaybackChanged, params.RoomId, params.SenderId, events.TrackPayload{
		TrackId: params.TrackId,
	})

	return HeartbeatResponse{
		ReorderRequired: true,
		Queue:           queue,
	}, nil
}

// estimatePosition returns the live position of the room's player and its
// track, or nils when no heartbeat was received yet.
func (s service) estimatePosition(ctx context.Context, roomId string) (*float64, *string, error) {
	playback, err := s.queueRepo.GetPlayback(ctx, roomId)
	if err != nil {
		if errors.Is(err, roomrepo.ErrPlaybackNotFound) {
			return nil, nil, nil
		}

		return nil, nil, err
	}

	elapsedMs := max(0, s.now().UnixMilli()-playback.UpdatedAt)
	position := playback.Position + float64(elapsedMs)/1000
	trackId := playback.TrackId

	return &position, &trackId, nil
}

type ControlParams struct {
	SenderId string
	RoomId   string
	Action   string
	Position float64
}

// Control authorizes a play or pause command for relay.
func (s service) Control(ctx context.Context, params *ControlParams) error {
	if err := s.checkIfMemberAdmin(ctx, params.RoomId, params.SenderId); err != nil {
		return fmt.Errorf("failed to check if member is admin: %w", err)
	}

	return validate(validation.Errors{
		"action":   validation.Validate(params.Action, ControlActionRule...),
		"position": validation.Validate(params.Position, PositionRule...),
	})
}

type SeekParams struct {
	SenderId string
	RoomId   string
	Position float64
}

func (s service) Seek(ctx context.Context, params *SeekParams) error {
	if err := s.checkIfMemberAdmin(ctx, params.RoomId, params.SenderId); err != nil {
		return fmt.Errorf("failed to check if member is admin: %w", err)
	}

	return validate(validation.Errors{
		"position": validation.Validate(params.Position, PositionRule...),
	})
}

type SkipParams struct {
	SenderId string
	RoomId   string
}

type SkipResponse struct {
	SkippedTrackId string
	Queue          []Track
}

// Skip removes the current track (the playing one, else the queue head) and
// clears the playback state.
func (s service) Skip(ctx context.Context, params *SkipParams) (SkipResponse, error) {
	if err := s.checkIfMemberAdmin(ctx, params.RoomId, params.SenderId); err != nil {
		return SkipResponse{}, fmt.Errorf("failed to check if member is admin: %w", err)
	}

	current := ""
	playback, err := s.queueRepo.GetPlayback(ctx, params.RoomId)
	switch {
	case err == nil:
		current = playback.TrackId
	case !errors.Is(err, roomrepo.ErrPlaybackNotFound):
		return SkipResponse{}, fmt.Errorf("failed to get playback: %w", err)
	}

	if current == "" {
		entries, err := s.queueRepo.GetQueue(ctx, params.RoomId)
		if err != nil {
			return SkipResponse{}, fmt.Errorf("failed to get queue: %w", err)
		}

		if len(entries) > 0 {
			current = entries[0].TrackId
		}
	}

	if current != "" {
		if err := s.queueRepo.RemoveTrack(ctx, &roomrepo.RemoveTrackParams{
			RoomId:  params.RoomId,
			TrackId: current,
		}); err != nil && !errors.Is(err, roomrepo.ErrTrackNotFound) {
			return SkipResponse{}, fmt.Errorf("failed to remove track: %w", err)
		}
	}

	if err := s.queueRepo.RemovePlayback(ctx, params.RoomId); err != nil {
		return SkipResponse{}, fmt.Errorf("failed to remove playback: %w", err)
	}

	queue, err := s.getQueue(ctx, params.RoomId)
	if err != nil {
		return SkipResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}

	s.publish(ctx, events.EventTypeTrackSkipped, params.RoomId, params.SenderId, events.TrackPayload{
		TrackId: current,
	})

	return SkipResponse{
		SkippedTrackId: current,
		Queue:          queue,
	}, nil
}
