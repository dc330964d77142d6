// Package discord is a minimal REST client for the channel, message,
// reaction and thread endpoints a tally run needs.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/bnema/reaction-tally/internal/ports"
	"github.com/bnema/reaction-tally/internal/ratelimit"
	"github.com/bnema/reaction-tally/internal/version"
	"github.com/sirupsen/logrus"
)

const maxResponseBytes = 1 << 20

var ErrMissingToken = errors.New("discord bot token is empty")

// APIError is any non-2xx answer other than 429.
type APIError struct {
	Status  int
	Code    int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("discord api: status %d: %s (code %d)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("discord api: status %d: %s", e.Status, e.Body)
}

// QuotaObserver receives the bucket headers of every response.
type QuotaObserver interface {
	Observe(routeKey string, limit, remaining int, resetAfter time.Duration)
}

type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	observer   QuotaObserver
	logger     logrus.FieldLogger
}

var _ ports.ChannelProvider = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithObserver(observer QuotaObserver) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logging.OrDiscard(logger)
	}
}

func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if baseURL == "" {
		baseURL = domain.DefaultAPIBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		userAgent:  fmt.Sprintf("DiscordBot (https://github.com/bnema/reaction-tally, %s)", version.Version),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) ListMessages(ctx context.Context, channel domain.ChannelID, before domain.MessageID, limit int) ([]domain.Message, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != "" {
		query.Set("before", string(before))
	}

	var payload []messagePayload
	path := "/channels/" + url.PathEscape(string(channel)) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, query, nil, domain.MessagesRouteKey(channel), &payload); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(payload))
	for _, message := range payload {
		messages = append(messages, toMessage(message, channel))
	}
	return messages, nil
}

func (c *Client) ReactionUsers(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string, after domain.UserID, limit int) ([]domain.User, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if after != "" {
		query.Set("after", string(after))
	}

	var payload []userPayload
	path := "/channels/" + url.PathEscape(string(channel)) +
		"/messages/" + url.PathEscape(string(message)) +
		"/reactions/" + url.PathEscape(emoji)
	if err := c.do(ctx, http.MethodGet, path, query, nil, domain.ReactionRouteKey(channel), &payload); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(payload))
	for _, user := range payload {
		users = append(users, toUser(user))
	}
	return users, nil
}

func (c *Client) SendMessage(ctx context.Context, channel domain.ChannelID, post domain.Post) (domain.MessageID, error) {
	var payload messagePayload
	path := "/channels/" + url.PathEscape(string(channel)) + "/messages"
	body := createMessageRequest{Embeds: []embedPayload{c.embed(post)}}
	if err := c.do(ctx, http.MethodPost, path, nil, body, domain.PublishRouteKey(channel), &payload); err != nil {
		return "", err
	}
	return domain.MessageID(payload.ID), nil
}

func (c *Client) EditMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID, post domain.Post) error {
	path := "/channels/" + url.PathEscape(string(channel)) + "/messages/" + url.PathEscape(string(message))
	body := createMessageRequest{Embeds: []embedPayload{c.embed(post)}}
	return c.do(ctx, http.MethodPatch, path, nil, body, domain.PublishRouteKey(channel), nil)
}

func (c *Client) embed(post domain.Post) embedPayload {
	embed := toEmbed(post)
	if dropped := droppedFields(post, embed); dropped > 0 {
		c.logger.WithFields(logrus.Fields{"title": post.Title, "dropped": dropped}).Warn("post exceeds embed limits, dropping fields")
	}
	return embed
}

func (c *Client) DeleteMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID) error {
	path := "/channels/" + url.PathEscape(string(channel)) + "/messages/" + url.PathEscape(string(message))
	return c.do(ctx, http.MethodDelete, path, nil, nil, domain.PublishRouteKey(channel), nil)
}

func (c *Client) CreateThread(ctx context.Context, channel domain.ChannelID, name string) (domain.Thread, error) {
	var payload channelPayload
	path := "/channels/" + url.PathEscape(string(channel)) + "/threads"
	body := createThreadRequest{
		Name:                truncate(name, 100),
		Type:                publicThreadType,
		AutoArchiveDuration: threadArchiveAfter,
	}
	if err := c.do(ctx, http.MethodPost, path, nil, body, domain.PublishRouteKey(channel), &payload); err != nil {
		return domain.Thread{}, err
	}
	return domain.Thread{ID: domain.ChannelID(payload.ID), Name: payload.Name}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, routeKey string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Authorization", "Bot "+c.token)
	request.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.observe(routeKey, response.Header)

	if response.StatusCode == http.StatusTooManyRequests {
		limited := rateLimitedFromResponse(response.Header, responseBody)
		c.logger.WithFields(logrus.Fields{
			"route":       routeKey,
			"retry_after": limited.RetryAfter,
			"global":      limited.Global,
		}).Debug("discord answered 429")
		return limited
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return apiErrorFromResponse(response.StatusCode, responseBody)
	}

	if out == nil || len(responseBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) observe(routeKey string, header http.Header) {
	if c.observer == nil {
		return
	}

	remaining, err := strconv.Atoi(header.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}
	limit, _ := strconv.Atoi(header.Get("X-RateLimit-Limit"))
	resetAfter, _ := parseSeconds(header.Get("X-RateLimit-Reset-After"))

	c.observer.Observe(routeKey, limit, remaining, resetAfter)
}

// rateLimitedFromResponse prefers the JSON retry_after, then the Retry-After
// header. Failing both, the raw body is kept for the text parser.
func rateLimitedFromResponse(header http.Header, body []byte) *ratelimit.RateLimitedError {
	limited := &ratelimit.RateLimitedError{
		Global: header.Get("X-RateLimit-Global") == "true",
	}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		limited.Global = limited.Global || payload.Global
		limited.Message = payload.Message
		if payload.RetryAfter > 0 {
			limited.RetryAfter = secondsToDuration(payload.RetryAfter)
			return limited
		}
	}

	if retryAfter, ok := parseSeconds(header.Get("Retry-After")); ok {
		limited.RetryAfter = retryAfter
		return limited
	}

	limited.Message = strings.TrimSpace(string(body))
	return limited
}

func apiErrorFromResponse(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Body: strings.TrimSpace(string(body))}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}
	return apiErr
}

func parseSeconds(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return secondsToDuration(seconds), true
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
