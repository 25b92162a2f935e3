package redis

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/pkg/votescore"
)

// maxTxRetries bounds optimistic WATCH/MULTI retries under contention.
const maxTxRetries = 16

type repo struct {
	rc             *redis.Client
	codec          votescore.Codec
	expireDuration time.Duration
	logger         *slog.Logger
}

func NewRepo(rc *redis.Client, expireDuration time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:             rc,
		codec:          votescore.New(),
		expireDuration: expireDuration,
		logger:         logger,
	}
}
