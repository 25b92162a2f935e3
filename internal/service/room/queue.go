package room

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	roomrepo "github.com/sharetube/jukebox/internal/repository/room"
	"github.com/sharetube/jukebox/pkg/events"
)

type VoteParams struct {
	SenderId string
	RoomId   string
	TrackId  string
}

type VoteResponse struct {
	Added bool
	Votes int
	Queue []Track
}

// AddTrack seeds the track with one vote, or upvotes it when it is already
// queued.
func (s service) AddTrack(ctx context.Context, params *VoteParams) (VoteResponse, error) {
	return s.vote(ctx, params, 1)
}

func (s service) Upvote(ctx context.Context, params *VoteParams) (VoteResponse, error) {
	return s.vote(ctx, params, 1)
}

// Downvote removes one vote. The count never goes below zero and the track
// stays queued.
func (s service) Downvote(ctx context.Context, params *VoteParams) (VoteResponse, error) {
	return s.vote(ctx, params, -1)
}

func (s service) vote(ctx context.Context, params *VoteParams, delta int) (VoteResponse, error) {
	if err := validate(validation.Errors{
		"track_id": validation.Validate(params.TrackId, TrackIdRule...),
	}); err != nil {
		return VoteResponse{}, err
	}

	res, err := s.queueRepo.UpsertVote(ctx, &roomrepo.UpsertVoteParams{
		RoomId:    params.RoomId,
		TrackId:   params.TrackId,
		Delta:     delta,
		Arrival:   s.codec.Arrival(s.now()),
		MaxLength: s.playlistLimit,
	})
	if err != nil {
		if errors.Is(err, roomrepo.ErrQueueLimitReached) {
			return VoteResponse{}, ErrQueueLimitReached
		}

		return VoteResponse{}, fmt.Errorf("failed to upsert vote: %w", err)
	}

	queue, err := s.getQueue(ctx, params.RoomId)
	if err != nil {
		return VoteResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}

	eventType := events.EventTypeTrackVoted
	if res.Added {
		eventType = events.EventTypeTrackAdded
	}
	s.publish(ctx, eventType, params.RoomId, params.SenderId, events.TrackPayload{
		TrackId: params.TrackId,
		Votes:   res.Votes,
	})

	return VoteResponse{
		Added: res.Added,
		Votes: res.Votes,
		Queue: queue,
	}, nil
}

type TrackCompletedParams struct {
	SenderId string
	RoomId   string
	TrackId  string
}

type TrackCompletedResponse struct {
	Removed bool
	Queue   []Track
}

// TrackCompleted removes the finished track. Every member's player reports
// completion, so a track that is already gone is not an error.
func (s service) TrackCompleted(ctx context.Context, params *TrackCompletedParams) (TrackCompletedResponse, error) {
	if err := validate(validation.Errors{
		"track_id": validation.Validate(params.TrackId, TrackIdRule...),
	}); err != nil {
		return TrackCompletedResponse{}, err
	}

	if err := s.queueRepo.RemoveTrack(ctx, &roomrepo.RemoveTrackParams{
		RoomId:  params.RoomId,
		TrackId: params.TrackId,
	}); err != nil {
		if errors.Is(err, roomrepo.ErrTrackNotFound) {
			return TrackCompletedResponse{Removed: false}, nil
		}

		return TrackCompletedResponse{}, fmt.Errorf("failed to remove track: %w", err)
	}

	playback, err := s.queueRepo.GetPlayback(ctx, params.RoomId)
	switch {
	case err == nil && playback.TrackId == params.TrackId:
		if err := s.queueRepo.RemovePlayback(ctx, params.RoomId); err != nil {
			return TrackCompletedResponse{}, fmt.Errorf("failed to remove playback: %w", err)
		}
	case err != nil && !errors.Is(err, roomrepo.ErrPlaybackNotFound):
		return TrackCompletedResponse{}, fmt.Errorf("failed to get playback: %w", err)
	}

	queue, err := s.getQueue(ctx, params.RoomId)
	if err != nil {
		return TrackCompletedResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}

	s.publish(ctx, events.EventTypeTrackCompleted, params.RoomId, params.SenderId, events.TrackPayload{
		TrackId: params.TrackId,
	})

	return TrackCompletedResponse{
		Removed: true,
		Queue:   queue,
	}, nil
}

// getQueue builds the queue snapshot: tracks ordered by score with the
// currently playing track, if queued, moved to the front.
func (s service) getQueue(ctx context.Context, roomId string) ([]Track, error) {
	entries, err := s.queueRepo.GetQueue(ctx, roomId)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return []Track{}, nil
	}

	playback, err := s.queueRepo.GetPlayback(ctx, roomId)
	if err != nil && !errors.Is(err, roomrepo.ErrPlaybackNotFound) {
		return nil, fmt.Errorf("failed to get playback: %w", err)
	}

	entries = promote(entries, playback.TrackId)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.TrackId
	}

	metadata := s.resolver.resolve(ctx, ids)

	queue := make([]Track, len(entries))
	for i, e := range entries {
		queue[i] = Track{
			Id:             e.TrackId,
			Title:          metadata[i].Title,
			SmallThumbnail: metadata[i].SmallThumbnail,
			BigThumbnail:   metadata[i].BigThumbnail,
			Votes:          s.codec.Votes(e.Score),
		}
	}

	return queue, nil
}

// promote moves the entry of trackId to index 0 keeping the relative order of
// the others.
func promote(entries []roomrepo.QueueEntry, trackId string) []roomrepo.QueueEntry {
	if trackId == "" {
		return entries
	}

	for i, e := range entries {
		if e.TrackId != trackId {
			continue
		}

		if i == 0 {
			return entries
		}

		promoted := make([]roomrepo.QueueEntry, 0, len(entries))
		promoted = append(promoted, e)
		promoted = append(promoted, entries[:i]...)
		promoted = append(promoted, entries[i+1:]...)

		return promoted
	}

	return entries
}
