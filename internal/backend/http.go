package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/zap"
)

const _maxResponseSize = 1 * 1024 * 1024 // 1 MB

// HTTPClient implements domain.Backend against the catalog server's
// REST API
type HTTPClient struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
	token   string
}

// NewHTTPClient creates a catalog server client. baseURL is used as-is
// apart from a trailing slash.
func NewHTTPClient(logger *zap.Logger, baseURL, token string) *HTTPClient {
	return &HTTPClient{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second, // Essential to prevent blocking the session
		},
	}
}

// streamResponse is the wire form of a stream resolution
type streamResponse struct {
	URL            string `json:"url"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Bitrate        int64  `json:"bitrate"`
	VideoCodec     string `json:"videoCodec"`
	QualityOptions []struct {
		Name              string `json:"name"`
		URL               string `json:"url"`
		RequiresTranscode bool   `json:"requiresTranscode"`
	} `json:"qualityOptions"`
}

// ResolveStream resolves the playable stream for a media item
func (c *HTTPClient) ResolveStream(ctx context.Context, mediaID string) (*domain.StreamInfo, error) {
	endpoint := fmt.Sprintf("%s/api/items/%s/stream", c.baseURL, url.PathEscape(mediaID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, _maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var sr streamResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to decode stream info: %w", err)
	}
	if sr.URL == "" {
		return nil, fmt.Errorf("stream info has no url")
	}

	info := &domain.StreamInfo{
		URL:        sr.URL,
		Resolution: domain.Resolution{Width: sr.Width, Height: sr.Height},
		Bitrate:    sr.Bitrate,
		VideoCodec: sr.VideoCodec,
	}
	for _, q := range sr.QualityOptions {
		info.QualityOptions = append(info.QualityOptions, domain.QualityOption{
			Name:              q.Name,
			URL:               q.URL,
			RequiresTranscode: q.RequiresTranscode,
		})
	}

	c.logger.Debug("Stream resolved",
		zap.String("mediaID", mediaID),
		zap.String("codec", info.VideoCodec),
		zap.Int("qualityOptions", len(info.QualityOptions)))
	return info, nil
}

// MarkWatched reports the item as watched
func (c *HTTPClient) MarkWatched(ctx context.Context, mediaID string) error {
	endpoint := fmt.Sprintf("%s/api/items/%s/watched", c.baseURL, url.PathEscape(mediaID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	c.logger.Debug("Item marked watched", zap.String("mediaID", mediaID))
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "reverieDaemon/1.0")
	if c.token != "" {
		req.Header.Set("X-Api-Token", c.token)
	}
}
