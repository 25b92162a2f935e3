package room

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sharetube/jukebox/internal/repository/catalog"
	"github.com/sharetube/jukebox/pkg/ytvideodata"
	"github.com/sourcegraph/conc"
)

const persistTimeout = 5 * time.Second

// trackResolver turns track ids into metadata. Lookups go through the
// in-process cache, then the catalog store, then the video data client.
type trackResolver struct {
	catalogRepo iCatalogRepo
	videoData   iVideoData
	cache       *lru.Cache[string, catalog.Track]
	timeout     time.Duration
	logger      *slog.Logger
}

func placeholderTrack(trackId string) catalog.Track {
	small, big := ytvideodata.Thumbnails(trackId)
	return catalog.Track{
		Id:             trackId,
		Title:          trackId,
		SmallThumbnail: small,
		BigThumbnail:   big,
	}
}

// resolve returns metadata for every id, in the order of ids. It never fails:
// a track that cannot be resolved gets placeholder metadata.
func (r *trackResolver) resolve(ctx context.Context, ids []string) []catalog.Track {
	res := make([]catalog.Track, len(ids))
	if len(ids) == 0 {
		return res
	}

	missing := make([]int, 0, len(ids))
	for i, id := range ids {
		if track, ok := r.cache.Get(id); ok {
			res[i] = track
			continue
		}

		missing = append(missing, i)
	}

	if len(missing) == 0 {
		return res
	}

	missingIds := make([]string, 0, len(missing))
	for _, i := range missing {
		missingIds = append(missingIds, ids[i])
	}

	stored, err := r.catalogRepo.GetMany(ctx, missingIds)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to get stored tracks", "error", err)
	}

	var wg conc.WaitGroup
	for _, i := range missing {
		id := ids[i]
		if track, ok := stored[id]; ok {
			r.cache.Add(id, track)
			res[i] = track
			continue
		}

		wg.Go(func() {
			res[i] = r.fetch(ctx, id)
		})
	}
	wg.Wait()

	return res
}

type fetchResult struct {
	data *ytvideodata.VideoData
	err  error
}

func (r *trackResolver) fetch(ctx context.Context, trackId string) catalog.Track {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		data, err := r.videoData.Get(ctx, trackId)
		done <- fetchResult{data: data, err: err}
	}()

	var result fetchResult
	select {
	case result = <-done:
	case <-ctx.Done():
		result.err = ctx.Err()
	}

	if result.err == nil && result.data == nil {
		result.err = ytvideodata.ErrVideoNotFound
	}

	if result.err != nil {
		r.logger.WarnContext(ctx, "failed to resolve track metadata", "track_id", trackId, "error", result.err)
		return placeholderTrack(trackId)
	}

	track := catalog.Track{
		Id:             trackId,
		Title:          result.data.Title,
		SmallThumbnail: result.data.SmallThumbnail,
		BigThumbnail:   result.data.BigThumbnail,
	}
	r.cache.Add(trackId, track)

	go r.persist(context.WithoutCancel(ctx), track)

	return track
}

func (r *trackResolver) persist(ctx context.Context, track catalog.Track) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := r.catalogRepo.CreateIfAbsent(ctx, &track); err != nil {
		r.logger.WarnContext(ctx, "failed to store track metadata", "track_id", track.Id, "error", err)
	}
}
