package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sharetube/jukebox/internal/repository/catalog"
	"github.com/sharetube/jukebox/pkg/events"
)

const publishTimeout = 5 * time.Second

func (s service) getRoom(ctx context.Context, roomId string) (catalog.Room, error) {
	r, err := s.catalogRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, catalog.ErrRoomNotFound) {
			return catalog.Room{}, ErrRoomNotFound
		}

		return catalog.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return r, nil
}

func (s service) checkIfMemberAdmin(ctx context.Context, roomId, memberId string) error {
	r, err := s.getRoom(ctx, roomId)
	if err != nil {
		return err
	}

	if r.AdminId != memberId {
		return ErrPermissionDenied
	}

	return nil
}

// publish emits an activity event without blocking the caller. Failures are
// only logged.
func (s service) publish(ctx context.Context, eventType events.EventType, roomId, memberId string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to marshal event payload", "error", err)
			return
		}
		raw = data
	}

	event := events.Event{
		Type:      eventType,
		RoomId:    roomId,
		MemberId:  memberId,
		Timestamp: s.now(),
		Payload:   raw,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "error", err)
	}
}
