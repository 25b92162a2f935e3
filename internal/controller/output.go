package controller

import "github.com/sharetube/jukebox/internal/service/room"

const (
	typeJoinedRoom    = "JOINED_ROOM"
	typeMemberJoined  = "MEMBER_JOINED"
	typeRoomNotFound  = "ROOM_NOT_FOUND"
	typeQueueUpdated  = "QUEUE_UPDATED"
	typeControlRelay  = "CONTROL_RELAY"
	typeSeekRelay     = "SEEK_RELAY"
	typeTrackSkipped  = "TRACK_SKIPPED"
	typeRoomEnded     = "ROOM_ENDED"
	typeErrorOccurred = "ERROR"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type joinedRoomOutput struct {
	RoomId            string       `json:"room_id"`
	MemberId          string       `json:"member_id"`
	IsAdmin           bool         `json:"is_admin"`
	AuthToken         string       `json:"auth_token"`
	EstimatedPosition *float64     `json:"estimated_position"`
	CurrentTrackId    *string      `json:"current_track_id"`
	Queue             []room.Track `json:"queue"`
}

type memberJoinedOutput struct {
	MemberId string `json:"member_id"`
}

type roomIdOutput struct {
	RoomId string `json:"room_id"`
}

type queueUpdatedOutput struct {
	Queue []room.Track `json:"queue"`
}

type controlRelayOutput struct {
	Action   string  `json:"action"`
	Position float64 `json:"position"`
}

type seekRelayOutput struct {
	Position float64 `json:"position"`
}

type trackSkippedOutput struct {
	TrackId string `json:"track_id"`
}

type messageOutput struct {
	Message string `json:"message"`
}

func queueUpdated(queue []room.Track) Output {
	return Output{Type: typeQueueUpdated, Payload: queueUpdatedOutput{Queue: queue}}
}
