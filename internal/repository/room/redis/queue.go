package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
)

func (r repo) getQueueKey(roomId string) string {
	return "room:" + roomId + ":queue"
}

// UpsertVote seeds an absent track with one vote at params.Arrival, or applies
// params.Delta to the vote field of an existing track keeping its arrival.
func (r repo) UpsertVote(ctx context.Context, params *room.UpsertVoteParams) (room.UpsertVoteResult, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	queueKey := r.getQueueKey(params.RoomId)

	var result room.UpsertVoteResult
	txf := func(tx *redis.Tx) error {
		var next int64
		current, err := tx.ZScore(ctx, queueKey, params.TrackId).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if params.MaxLength > 0 {
				length, err := tx.ZCard(ctx, queueKey).Result()
				if err != nil {
					return err
				}

				if int(length) >= params.MaxLength {
					return room.ErrQueueLimitReached
				}
			}

			next = r.codec.Seed(params.Arrival)
			result.Added = true
		case err != nil:
			return err
		default:
			next = r.codec.Bump(int64(current), params.Delta)
			result.Added = false
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, queueKey, redis.Z{Score: float64(next), Member: params.TrackId})
			pipe.Expire(ctx, queueKey, r.expireDuration)
			return nil
		}); err != nil {
			return err
		}

		result.Votes = r.codec.Votes(next)
		return nil
	}

	if err := r.watch(ctx, txf, queueKey); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.UpsertVoteResult{}, err
	}

	return result, nil
}

func (r repo) RemoveTrack(ctx context.Context, params *room.RemoveTrackParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	res, err := r.rc.ZRem(ctx, r.getQueueKey(params.RoomId), params.TrackId).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if res == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrTrackNotFound)
		return room.ErrTrackNotFound
	}

	return nil
}

// GetQueue returns the queue ordered by score, highest first.
func (r repo) GetQueue(ctx context.Context, roomId string) ([]room.QueueEntry, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})
	queueKey := r.getQueueKey(roomId)
	zs, err := r.rc.ZRevRangeWithScores(ctx, queueKey, 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	entries := make([]room.QueueEntry, 0, len(zs))
	for _, z := range zs {
		trackId, ok := z.Member.(string)
		if !ok {
			continue
		}

		entries = append(entries, room.QueueEntry{
			TrackId: trackId,
			Score:   int64(z.Score),
		})
	}

	if len(entries) > 0 {
		r.rc.Expire(ctx, queueKey, r.expireDuration)
	}

	return entries, nil
}
