package lichess

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	pathAccount       = "api/account"
	pathUpgrade       = "api/bot/account/upgrade"
	pathEventStream   = "api/stream/event"
	pathGameStream    = "api/bot/game/stream/"
	pathChallenge     = "api/challenge/"
	pathBotGame       = "api/bot/game/"
	maxErrorBodyBytes = 4096
	defaultReqTimeout = 10 * time.Second
)

// Client talks to the platform REST API. Plain requests share a client with a
// timeout; streams use a client without one so long-lived feeds are not cut.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	inner     *http.Client
	streaming *http.Client
}

func NewClient(baseURL, token, version string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultReqTimeout
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:   baseURL,
		token:     token,
		userAgent: "lichess-bot/" + version,
		inner:     &http.Client{Timeout: timeout},
		streaming: &http.Client{},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) GameURL(gameID string) string {
	return c.baseURL + url.PathEscape(gameID)
}

func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	resp, err := c.do(ctx, c.inner, http.MethodGet, pathAccount)
	if err != nil {
		return profile, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profile, err
	}
	return profile, nil
}

func (c *Client) UpgradeToBot(ctx context.Context) error {
	return c.post(ctx, pathUpgrade)
}

// StreamEvents opens the account-wide notification feed.
func (c *Client) StreamEvents(ctx context.Context) (*Stream, error) {
	return c.openStream(ctx, pathEventStream)
}

// StreamGame opens the per-game feed for one game.
func (c *Client) StreamGame(ctx context.Context, gameID string) (*Stream, error) {
	return c.openStream(ctx, pathGameStream+url.PathEscape(gameID))
}

func (c *Client) AcceptChallenge(ctx context.Context, challengeID string) error {
	return c.post(ctx, pathChallenge+url.PathEscape(challengeID)+"/accept")
}

func (c *Client) DeclineChallenge(ctx context.Context, challengeID string) error {
	return c.post(ctx, pathChallenge+url.PathEscape(challengeID)+"/decline")
}

func (c *Client) MakeMove(ctx context.Context, gameID, move string) error {
	return c.post(ctx, pathBotGame+url.PathEscape(gameID)+"/move/"+url.PathEscape(move))
}

func (c *Client) Abort(ctx context.Context, gameID string) error {
	return c.post(ctx, pathBotGame+url.PathEscape(gameID)+"/abort")
}

func (c *Client) openStream(ctx context.Context, path string) (*Stream, error) {
	resp, err := c.do(ctx, c.streaming, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return NewStream(resp.Body), nil
}

func (c *Client) post(ctx context.Context, path string) error {
	resp, err := c.do(ctx, c.inner, http.MethodPost, path)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do returns the response only for 2xx statuses; the caller owns the body.
func (c *Client) do(ctx context.Context, client *http.Client, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	if method == http.MethodGet {
		req.Header.Set("Accept", "application/x-ndjson, application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return nil, &HTTPError{
		Method:     method,
		Path:       "/" + path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
