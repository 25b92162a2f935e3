package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sharetube/jukebox/internal/repository/catalog"
	roomrepo "github.com/sharetube/jukebox/internal/repository/room"
	"github.com/sharetube/jukebox/pkg/events"
	"github.com/sharetube/jukebox/pkg/votescore"
	"github.com/sharetube/jukebox/pkg/ytvideodata"
)

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrRoomNotFound      = errors.New("room not found")
	ErrQueueLimitReached = errors.New("queue limit reached")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidInput      = errors.New("invalid input")
)

type iQueueRepo interface {
	// queue
	UpsertVote(context.Context, *roomrepo.UpsertVoteParams) (roomrepo.UpsertVoteResult, error)
	RemoveTrack(context.Context, *roomrepo.RemoveTrackParams) error
	GetQueue(context.Context, string) ([]roomrepo.QueueEntry, error)
	// playback
	SetPlayback(context.Context, *roomrepo.SetPlaybackParams) (string, error)
	GetPlayback(context.Context, string) (roomrepo.Playback, error)
	RemovePlayback(context.Context, string) error
	// room
	RemoveRoom(context.Context, string) error
}

type iCatalogRepo interface {
	GetMany(context.Context, []string) (map[string]catalog.Track, error)
	CreateIfAbsent(context.Context, *catalog.Track) error
	CreateRoom(context.Context, *catalog.Room) error
	GetRoom(context.Context, string) (catalog.Room, error)
	RemoveRoom(context.Context, string) error
}

type iVideoData interface {
	Get(context.Context, string) (*ytvideodata.VideoData, error)
}

type iEventPublisher interface {
	Publish(context.Context, events.Event) error
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	Secret            string
	PlaylistLimit     int
	MetadataTimeout   time.Duration
	MetadataCacheSize int
}

type service struct {
	queueRepo     iQueueRepo
	catalogRepo   iCatalogRepo
	resolver      *trackResolver
	publisher     iEventPublisher
	generator     iGenerator
	codec         votescore.Codec
	secret        string
	playlistLimit int
	now           func() time.Time
	logger        *slog.Logger
}

func NewService(
	queueRepo iQueueRepo,
	catalogRepo iCatalogRepo,
	videoData iVideoData,
	publisher iEventPublisher,
	cfg *Config,
	logger *slog.Logger,
) (*service, error) {
	cache, err := lru.New[string, catalog.Track](cfg.MetadataCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata cache: %w", err)
	}

	return &service{
		queueRepo:   queueRepo,
		catalogRepo: catalogRepo,
		resolver: &trackResolver{
			catalogRepo: catalogRepo,
			videoData:   videoData,
			cache:       cache,
			timeout:     cfg.MetadataTimeout,
			logger:      logger,
		},
		publisher:     publisher,
		generator:     newGenerator(roomIdAlphabet),
		codec:         votescore.New(),
		secret:        cfg.Secret,
		playlistLimit: cfg.PlaylistLimit,
		now:           time.Now,
		logger:        logger,
	}, nil
}
