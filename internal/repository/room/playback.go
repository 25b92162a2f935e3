package room

type Playback struct {
	TrackId   string  `redis:"track_id"`
	Position  float64 `redis:"position"`
	UpdatedAt int64   `redis:"updated_at"`
}

type SetPlaybackParams struct {
	RoomId    string
	TrackId   string
	Position  float64
	UpdatedAt int64
}
