// Package api fetches playlist metadata from YouTube. With an API key it
// talks to the YouTube Data API v3; without one it falls back to public
// Invidious instances.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vinyl/internal/logging"
	"vinyl/internal/store"
)

const (
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultHTTPTimeout    = 15 * time.Second
	youtubePageSize       = 50
)

// ErrNotFound is returned when the API answers but knows no playlist with
// the requested id.
var ErrNotFound = errors.New("api: playlist not found")

// Client fetches playlists from the YouTube Data API or from Invidious.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	baseURL    string
	instances  []string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the YouTube Data API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithInstances overrides the Invidious instance list.
func WithInstances(instances []string) Option {
	return func(c *Client) {
		if len(instances) > 0 {
			c.instances = instances
		}
	}
}

// WithLogger attaches a logger to the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "api")
		}
	}
}

// New constructs a client. An empty apiKey routes all fetches through
// Invidious.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logging.NewNop(),
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultYouTubeBaseURL,
		instances:  defaultInstances,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPlaylist retrieves a playlist's title and entries. Deleted and
// private entries are dropped; track positions follow the playlist order.
func (c *Client) FetchPlaylist(ctx context.Context, sourceID string) (store.Playlist, []*store.Track, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return store.Playlist{}, nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if c.apiKey != "" {
		return c.fetchYouTube(ctx, sourceID)
	}
	return c.fetchInvidious(ctx, sourceID)
}

type youtubeResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			ResourceID *struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

func (c *Client) fetchYouTube(ctx context.Context, sourceID string) (store.Playlist, []*store.Track, error) {
	c.logger.Info("fetching playlist from youtube",
		logging.String(logging.FieldSourceID, sourceID))

	playlist, err := c.youtubePlaylistInfo(ctx, sourceID)
	if err != nil {
		return store.Playlist{}, nil, err
	}
	tracks, err := c.youtubePlaylistItems(ctx, sourceID)
	if err != nil {
		return store.Playlist{}, nil, err
	}
	return playlist, tracks, nil
}

func (c *Client) youtubePlaylistInfo(ctx context.Context, sourceID string) (store.Playlist, error) {
	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("key", c.apiKey)
	query.Set("id", sourceID)

	var resp youtubeResponse
	if err := c.getJSON(ctx, "youtube playlists", c.baseURL+"/playlists?"+query.Encode(), &resp); err != nil {
		return store.Playlist{}, err
	}
	if len(resp.Items) != 1 {
		return store.Playlist{}, fmt.Errorf("%w: %s", ErrNotFound, sourceID)
	}
	return store.Playlist{Title: resp.Items[0].Snippet.Title, SourceID: resp.Items[0].ID}, nil
}

func (c *Client) youtubePlaylistItems(ctx context.Context, sourceID string) ([]*store.Track, error) {
	var tracks []*store.Track
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("part", "snippet")
		query.Set("key", c.apiKey)
		query.Set("playlistId", sourceID)
		query.Set("maxResults", strconv.Itoa(youtubePageSize))
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var resp youtubeResponse
		if err := c.getJSON(ctx, "youtube playlist items", c.baseURL+"/playlistItems?"+query.Encode(), &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			if item.Snippet.ResourceID == nil || skipYouTubeTitle(item.Snippet.Title) {
				continue
			}
			tracks = append(tracks, &store.Track{
				Title:    item.Snippet.Title,
				SourceID: item.Snippet.ResourceID.VideoID,
			})
		}
		c.logger.Debug("fetched playlist page", logging.Int("tracks", len(tracks)))

		if resp.NextPageToken == "" {
			return tracks, nil
		}
		pageToken = resp.NextPageToken
	}
}

// skipYouTubeTitle reports placeholder entries the Data API returns for
// videos that no longer resolve.
func skipYouTubeTitle(title string) bool {
	return title == "Deleted video" || title == "Private video"
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: http %d", op, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
