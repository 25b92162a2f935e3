package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultOEmbedUrl    = "https://www.youtube.com/oembed"
	defaultPageUrl      = "https://youtu.be/"
	defaultThumbnailUrl = "https://i.ytimg.com/vi/"
)

type VideoData struct {
	Title          string `json:"title"`
	AuthorName     string `json:"author_name"`
	SmallThumbnail string `json:"-"`
	BigThumbnail   string `json:"-"`
}

type Client struct {
	httpClient   *http.Client
	oEmbedUrl    string
	pageUrl      string
	thumbnailUrl string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseUrls overrides the oEmbed endpoint and the watch page prefix.
func WithBaseUrls(oEmbedUrl, pageUrl string) Option {
	return func(client *Client) {
		client.oEmbedUrl = oEmbedUrl
		client.pageUrl = pageUrl
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		oEmbedUrl:    defaultOEmbedUrl,
		pageUrl:      defaultPageUrl,
		thumbnailUrl: defaultThumbnailUrl,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get looks the video up through oEmbed and falls back to parsing the watch
// page when the video is not embeddable.
func (c *Client) Get(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getVideoWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	videoData.SmallThumbnail, videoData.BigThumbnail = Thumbnails(videoId)
	return videoData, nil
}

// Thumbnails derives the small and big thumbnail urls from the video id.
func Thumbnails(videoId string) (small, big string) {
	return defaultThumbnailUrl + videoId + "/mqdefault.jpg", defaultThumbnailUrl + videoId + "/hqdefault.jpg"
}
