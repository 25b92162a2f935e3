package room

type QueueEntry struct {
	TrackId string
	Score   int64
}

type UpsertVoteParams struct {
	RoomId  string
	TrackId string
	Delta   int
	Arrival int64
	// MaxLength limits the number of distinct tracks; 0 disables the check.
	MaxLength int
}

type UpsertVoteResult struct {
	Votes int
	Added bool
}

type RemoveTrackParams struct {
	RoomId  string
	TrackId string
}
