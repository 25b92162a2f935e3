package catalog

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepo(db *gorm.DB, logger *slog.Logger) *repo {
	return &repo{
		db:     db,
		logger: logger,
	}
}

// GetMany returns the stored tracks keyed by id. Unknown ids are absent from
// the result.
func (r repo) GetMany(ctx context.Context, ids []string) (map[string]Track, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"ids": ids,
	})
	res := make(map[string]Track, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	var tracks []Track
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tracks).Error; err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	for _, t := range tracks {
		res[t.Id] = t
	}

	return res, nil
}

// CreateIfAbsent stores track unless a record with the same id exists.
// Existing records are never updated.
func (r repo) CreateIfAbsent(ctx context.Context, track *Track) error {
	r.logger.DebugContext(ctx, "called", "params", track)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(track).Error; err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) CreateRoom(ctx context.Context, room *Room) error {
	r.logger.DebugContext(ctx, "called", "params", room)
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (Room, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})
	var room Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", roomId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrRoomNotFound
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return Room{}, err
	}

	return room, nil
}

func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})
	res := r.db.WithContext(ctx).Delete(&Room{}, "id = ?", roomId)
	if res.Error != nil {
		r.logger.DebugContext(ctx, "returned", "error", res.Error)
		return res.Error
	}

	if res.RowsAffected == 0 {
		r.logger.DebugContext(ctx, "returned", "error", ErrRoomNotFound)
		return ErrRoomNotFound
	}

	return nil
}
