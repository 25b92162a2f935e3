package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
)

func (r repo) getPlaybackKey(roomId string) string {
	return "room:" + roomId + ":playback"
}

// SetPlayback overwrites the playback state and returns the track id that was
// stored before, or "" when there was none.
func (r repo) SetPlayback(ctx context.Context, params *room.SetPlaybackParams) (string, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	playbackKey := r.getPlaybackKey(params.RoomId)

	pipe := r.rc.TxPipeline()
	prev := pipe.HGet(ctx, playbackKey, "track_id")
	pipe.HSet(ctx, playbackKey,
		"track_id", params.TrackId,
		"position", params.Position,
		"updated_at", params.UpdatedAt,
	)
	pipe.Expire(ctx, playbackKey, r.expireDuration)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return "", err
	}

	prevTrackId, err := prev.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return "", err
	}

	return prevTrackId, nil
}

func (r repo) GetPlayback(ctx context.Context, roomId string) (room.Playback, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})
	var playback room.Playback
	if err := r.rc.HGetAll(ctx, r.getPlaybackKey(roomId)).Scan(&playback); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Playback{}, err
	}

	if playback.TrackId == "" {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrPlaybackNotFound)
		return room.Playback{}, room.ErrPlaybackNotFound
	}

	return playback, nil
}

func (r repo) RemovePlayback(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})
	if err := r.rc.Del(ctx, r.getPlaybackKey(roomId)).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}
