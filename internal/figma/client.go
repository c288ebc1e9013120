package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultBaseURL = "https://api.figma.com/v1"

var (
	ErrNoToken      = errors.New("figma: no access token configured")
	ErrUnauthorized = errors.New("figma: unauthorized (401), check FIGMA_TOKEN")
	ErrForbidden    = errors.New("figma: forbidden (403), no access to this file")
	ErrNotFound     = errors.New("figma: file not found (404), check the file key")
	ErrRateLimited  = errors.New("figma: rate limit exceeded")
)

// Logger receives non-fatal warnings. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Client fetches files and comments from the Figma REST API.
type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
	Log        Logger // nil logs through the standard logger

	// backoff is the wait before retry attempt n (0-based); tests shorten it.
	backoff func(attempt int) time.Duration
	files   *lru.Cache[string, *File]
}

// NewClient creates a client with an LRU of the last cacheSize documents.
// A cacheSize <= 0 disables caching.
func NewClient(token string, cacheSize int) (*Client, error) {
	c := &Client{
		Token:      strings.TrimSpace(token),
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		MaxRetries: 3,
		backoff: func(attempt int) time.Duration {
			return time.Duration(math.Pow(2, float64(attempt+1))) * time.Second
		},
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, *File](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("init document cache: %w", err)
		}
		c.files = cache
	}
	return c, nil
}

// GetFile fetches the full document tree of a file.
func (c *Client) GetFile(ctx context.Context, fileKey string) (*File, error) {
	if c.files != nil {
		if f, ok := c.files.Get(fileKey); ok {
			return f, nil
		}
	}
	body, err := c.do(ctx, fmt.Sprintf("%s/files/%s", c.BaseURL, fileKey))
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("parsing figma file: %w", err)
	}
	if c.files != nil {
		c.files.Add(fileKey, &f)
	}
	return &f, nil
}

type apiComment struct {
	Message    string `json:"message"`
	ClientMeta *struct {
		NodeID string `json:"node_id"`
	} `json:"client_meta"`
}

// GetComments returns node id -> first comment message for the file.
func (c *Client) GetComments(ctx context.Context, fileKey string) (map[string]string, error) {
	body, err := c.do(ctx, fmt.Sprintf("%s/files/%s/comments", c.BaseURL, fileKey))
	if err != nil {
		return nil, err
	}
	var resp struct {
		Comments []apiComment `json:"comments"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing figma comments: %w", err)
	}
	return commentsByNode(resp.Comments), nil
}

func commentsByNode(comments []apiComment) map[string]string {
	out := make(map[string]string)
	for _, cm := range comments {
		if cm.ClientMeta == nil || cm.ClientMeta.NodeID == "" {
			continue
		}
		if _, seen := out[cm.ClientMeta.NodeID]; seen {
			continue
		}
		out[cm.ClientMeta.NodeID] = cm.Message
	}
	return out
}

// Fetch implements extract.Source: the document plus its comment map.
// A failed comments call is logged and not fatal; the document is still
// returned.
func (c *Client) Fetch(ctx context.Context, fileKey string) (*File, map[string]string, error) {
	f, err := c.GetFile(ctx, fileKey)
	if err != nil {
		return nil, nil, err
	}
	comments, err := c.GetComments(ctx, fileKey)
	if err != nil {
		c.logf("figma: comments of %s unavailable, extracting without them: %v", fileKey, err)
		comments = map[string]string{}
	}
	return f, comments, nil
}

func (c *Client) logf(format string, v ...any) {
	if c.Log != nil {
		c.Log.Printf(format, v...)
		return
	}
	log.Printf(format, v...)
}

// do executes an authenticated GET, retrying on 429.
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	if c.Token == "" {
		return nil, ErrNoToken
	}
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("X-FIGMA-TOKEN", c.Token)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("figma request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusTooManyRequests:
			if attempt == c.MaxRetries {
				return nil, fmt.Errorf("%w after %d retries", ErrRateLimited, c.MaxRetries)
			}
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		case http.StatusUnauthorized:
			return nil, ErrUnauthorized
		case http.StatusForbidden:
			return nil, ErrForbidden
		case http.StatusNotFound:
			return nil, ErrNotFound
		default:
			return nil, fmt.Errorf("figma API error %d: %s", resp.StatusCode, string(body))
		}
	}
	return nil, ErrRateLimited
}

// ParseFileKey accepts a bare file key or a figma.com file/design URL.
func ParseFileKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty figma file reference")
	}
	if !strings.Contains(s, "/") {
		return s, nil
	}
	u := s
	for _, prefix := range []string{"https://", "http://", "www."} {
		u = strings.TrimPrefix(u, prefix)
	}
	if idx := strings.IndexAny(u, "?#"); idx >= 0 {
		u = u[:idx]
	}
	parts := strings.Split(u, "/")
	if len(parts) < 3 || !strings.Contains(parts[0], "figma.com") {
		return "", fmt.Errorf("not a figma file URL: %s", s)
	}
	switch parts[1] {
	case "file", "design":
	default:
		return "", fmt.Errorf("unsupported figma URL type: %s", parts[1])
	}
	key := parts[2]
	if len(parts) >= 5 && parts[3] == "branch" {
		key = parts[4]
	}
	if key == "" {
		return "", fmt.Errorf("could not extract file key from %s", s)
	}
	return key, nil
}
