package events

import (
	"context"
	"encoding/json"
	"time"
)

type EventType string

const (
	EventTypeRoomCreated     EventType = "room_created"
	EventTypeRoomEnded       EventType = "room_ended"
	EventTypeMemberJoined    EventType = "member_joined"
	EventTypeTrackAdded      EventType = "track_added"
	EventTypeTrackVoted      EventType = "track_voted"
	EventTypeTrackCompleted  EventType = "track_completed"
	EventTypeTrackSkipped    EventType = "track_skipped"
	EventTypePlaybackChanged EventType = "playback_changed"
)

type Event struct {
	Type      EventType       `json:"type"`
	RoomId    string          `json:"room_id"`
	MemberId  string          `json:"member_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type TrackPayload struct {
	TrackId string `json:"track_id"`
	Votes   int    `json:"votes,omitempty"`
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
