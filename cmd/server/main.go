package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/jukebox/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	playlistLimit = configVar[int]{
		envKey:       "SERVER_PLAYLIST_LIMIT",
		flagKey:      "playlist-limit",
		defaultValue: 100,
	}
	roomTTL = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_TTL",
		flagKey:      "room-ttl",
		defaultValue: 24 * 14 * time.Hour,
	}
	metadataTimeout = configVar[time.Duration]{
		envKey:       "SERVER_METADATA_TIMEOUT",
		flagKey:      "metadata-timeout",
		defaultValue: 3 * time.Second,
	}
	metadataCacheSize = configVar[int]{
		envKey:       "SERVER_METADATA_CACHE_SIZE",
		flagKey:      "metadata-cache-size",
		defaultValue: 4096,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	redisMaxRetries = configVar[int]{
		envKey:       "REDIS_MAX_RETRIES",
		flagKey:      "redis-max-retries",
		defaultValue: 5,
	}
	dbDriver = configVar[string]{
		envKey:       "DB_DRIVER",
		flagKey:      "db-driver",
		defaultValue: "sqlite",
	}
	dbDSN = configVar[string]{
		envKey:       "DB_DSN",
		flagKey:      "db-dsn",
		defaultValue: "data/jukebox.sqlite3",
	}
	kafkaBrokers = configVar[string]{
		envKey:       "KAFKA_BROKERS",
		flagKey:      "kafka-brokers",
		defaultValue: "",
	}
	kafkaTopic = configVar[string]{
		envKey:       "KAFKA_TOPIC",
		flagKey:      "kafka-topic",
		defaultValue: "jukebox-events",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, "Secret used to sign auth tokens")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(playlistLimit.flagKey, playlistLimit.defaultValue, "Maximum number of tracks in a room queue")
	pflag.Duration(roomTTL.flagKey, roomTTL.defaultValue, "Idle time after which room state expires")
	pflag.Duration(metadataTimeout.flagKey, metadataTimeout.defaultValue, "Timeout of a single track metadata lookup")
	pflag.Int(metadataCacheSize.flagKey, metadataCacheSize.defaultValue, "Number of track metadata entries cached in memory")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Int(redisMaxRetries.flagKey, redisMaxRetries.defaultValue, "Redis command retries before giving up")
	pflag.String(dbDriver.flagKey, dbDriver.defaultValue, "Catalog database driver (sqlite or mysql)")
	pflag.String(dbDSN.flagKey, dbDSN.defaultValue, "Catalog database DSN")
	pflag.String(kafkaBrokers.flagKey, kafkaBrokers.defaultValue, "Comma separated kafka brokers, events are disabled when empty")
	pflag.String(kafkaTopic.flagKey, kafkaTopic.defaultValue, "Kafka topic for room events")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(secret)
	bind(port)
	bind(host)
	bind(logLevel)
	bind(playlistLimit)
	bind(roomTTL)
	bind(metadataTimeout)
	bind(metadataCacheSize)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)
	bind(redisMaxRetries)
	bind(dbDriver)
	bind(dbDSN)
	bind(kafkaBrokers)
	bind(kafkaTopic)

	config := &app.AppConfig{
		Secret:            viper.GetString(secret.flagKey),
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		PlaylistLimit:     viper.GetInt(playlistLimit.flagKey),
		RoomTTL:           viper.GetDuration(roomTTL.flagKey),
		MetadataTimeout:   viper.GetDuration(metadataTimeout.flagKey),
		MetadataCacheSize: viper.GetInt(metadataCacheSize.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
		RedisMaxRetries:   viper.GetInt(redisMaxRetries.flagKey),
		DbDriver:          viper.GetString(dbDriver.flagKey),
		DbDSN:             viper.GetString(dbDSN.flagKey),
		KafkaBrokers:      splitList(viper.GetString(kafkaBrokers.flagKey)),
		KafkaTopic:        viper.GetString(kafkaTopic.flagKey),
	}

	return config
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env file not loaded: %v", err)
	}

	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
