package room

import "errors"

var (
	ErrTrackNotFound     = errors.New("track not found")
	ErrPlaybackNotFound  = errors.New("playback not found")
	ErrQueueLimitReached = errors.New("queue limit reached")
	ErrTxConflict        = errors.New("transaction conflict")
)
