package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
)

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

// watch runs fn as an optimistic transaction over keys, retrying when a
// watched key changes before EXEC.
func (r repo) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := r.rc.Watch(ctx, fn, keys...)
		if err == nil {
			return nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			r.logger.DebugContext(ctx, "transaction conflict, retrying", "attempt", i+1, "keys", keys)
			continue
		}

		return err
	}

	return room.ErrTxConflict
}

func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})
	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, r.getQueueKey(roomId))
	pipe.Del(ctx, r.getPlaybackKey(roomId))

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}
