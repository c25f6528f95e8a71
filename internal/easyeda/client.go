// Package easyeda fetches component descriptions and 3D meshes from the
// EasyEDA/LCSC web API.
package easyeda

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/models"
)

const (
	DefaultBaseURL   = "https://easyeda.com"
	DefaultModelsURL = "https://modules.easyeda.com"
	DefaultUserAgent = "lcsc2kicad/1.0"

	apiVersion = "6.4.19.5"
	stepPath   = "qAxj6KHrDKw4blvCG8QJPs7Y"

	// maxBody caps a single response; meshes of large connectors stay well below.
	maxBody = 64 << 20
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	ModelsURL string
	UserAgent string
	Timeout   time.Duration
	// Retries is the number of attempts per mesh download.
	Retries int
	// Backoff is multiplied by the attempt number between mesh retries.
	Backoff time.Duration
}

// Client talks to the EasyEDA API.
type Client struct {
	http      *http.Client
	baseURL   string
	modelsURL string
	userAgent string
	retries   int
	backoff   time.Duration
	logger    *slog.Logger
}

// New creates a Client.
func New(opts Options, logger *slog.Logger) *Client {
	c := &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		modelsURL: strings.TrimRight(opts.ModelsURL, "/"),
		userAgent: opts.UserAgent,
		retries:   opts.Retries,
		backoff:   opts.Backoff,
		logger:    logger,
	}
	if c.http.Timeout <= 0 {
		c.http.Timeout = 30 * time.Second
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.modelsURL == "" {
		c.modelsURL = DefaultModelsURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.retries <= 0 {
		c.retries = 3
	}
	if c.backoff < 0 {
		c.backoff = 0
	}
	return c
}

// FetchComponent downloads and decodes the description of component id.
func (c *Client) FetchComponent(ctx context.Context, id string) (*models.ComponentRecord, error) {
	u := fmt.Sprintf("%s/api/products/%s/components?version=%s", c.baseURL, url.PathEscape(id), apiVersion)
	c.logger.Info("easyeda: fetching component", slog.String("id", id))

	status, body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", apperr.ErrRemote, id, err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: %w: %s (status %d)", apperr.ErrRemote, apperr.ErrComponentNotFound, id, status)
	}
	rec, err := decodeComponent(id, body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("easyeda: decoded component",
		slog.String("id", id),
		slog.String("title", rec.Title),
		slog.Int("symbol_shapes", len(rec.SymbolShapes)),
		slog.Int("footprint_shapes", len(rec.FootprintShapes)),
		slog.Bool("model", rec.Model3D != nil))
	return rec, nil
}

// DownloadOBJ fetches the OBJ mesh of a 3D model.
func (c *Client) DownloadOBJ(ctx context.Context, uuid string) ([]byte, error) {
	return c.download(ctx, c.modelsURL+"/3dmodel/"+url.PathEscape(uuid), "obj", uuid)
}

// DownloadSTEP fetches the STEP mesh of a 3D model.
func (c *Client) DownloadSTEP(ctx context.Context, uuid string) ([]byte, error) {
	return c.download(ctx, c.modelsURL+"/"+stepPath+"/"+url.PathEscape(uuid), "step", uuid)
}

// download retries transport failures and non-success statuses with a
// linearly growing delay.
func (c *Client) download(ctx context.Context, u, kind, uuid string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		c.logger.Debug("easyeda: downloading mesh",
			slog.String("kind", kind), slog.String("uuid", uuid), slog.Int("attempt", attempt))

		status, body, err := c.get(ctx, u)
		switch {
		case err != nil:
			lastErr = err
		case status < 200 || status > 299:
			lastErr = fmt.Errorf("status %d", status)
		default:
			return body, nil
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < c.retries {
			c.logger.Warn("easyeda: mesh download failed, retrying",
				slog.String("kind", kind), slog.String("uuid", uuid), slog.String("error", lastErr.Error()))
			if err := sleep(ctx, time.Duration(attempt)*c.backoff); err != nil {
				lastErr = err
				break
			}
		}
	}
	return nil, fmt.Errorf("%w: download %s mesh %s: %w", apperr.ErrRemote, kind, uuid, lastErr)
}

func (c *Client) get(ctx context.Context, u string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
