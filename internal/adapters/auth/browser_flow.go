package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	DefaultAuthorizeURL = "https://discord.com/oauth2/authorize"
	callbackPath        = "/auth/callback"

	maxTokenResponseBytes = 1 << 20
)

var (
	ErrStateMismatch   = errors.New("oauth callback state mismatch")
	ErrCallbackTimeout = errors.New("timed out waiting for oauth callback")
	ErrMissingState    = errors.New("expected state is required")
)

// InstallRequest describes the authorize URL that adds the bot to a guild.
type InstallRequest struct {
	AuthURL     string
	ClientID    string
	RedirectURI string
	Scopes      []string
	Permissions string
	State       string
	GuildID     string
}

type TokenExchangeRequest struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Code         string
}

type InstalledGuild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GrantedTokens struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	Scope        string          `json:"scope"`
	Guild        *InstalledGuild `json:"guild,omitempty"`
}

// Callback is what Discord hands back on the redirect after the user
// authorizes the install.
type Callback struct {
	Code        string
	GuildID     string
	Permissions string
}

func NewState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// TokenURL derives the token endpoint from the REST API base URL.
func TokenURL(apiBaseURL string) string {
	return strings.TrimRight(apiBaseURL, "/") + "/oauth2/token"
}

func BuildInstallURL(req InstallRequest) (string, error) {
	if req.AuthURL == "" {
		req.AuthURL = DefaultAuthorizeURL
	}
	if req.ClientID == "" {
		return "", errors.New("client id is required")
	}
	if req.RedirectURI == "" {
		return "", errors.New("redirect uri is required")
	}
	if req.State == "" {
		return "", errors.New("state is required")
	}
	if len(req.Scopes) == 0 {
		return "", errors.New("at least one scope is required")
	}

	parsed, err := url.Parse(req.AuthURL)
	if err != nil {
		return "", fmt.Errorf("parse auth url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("auth url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("auth url host is required")
	}

	q := parsed.Query()
	q.Set("response_type", "code")
	q.Set("client_id", req.ClientID)
	q.Set("redirect_uri", req.RedirectURI)
	q.Set("scope", strings.Join(req.Scopes, " "))
	q.Set("state", req.State)
	if req.Permissions != "" {
		q.Set("permissions", req.Permissions)
	}
	if req.GuildID != "" {
		q.Set("guild_id", req.GuildID)
		q.Set("disable_guild_select", "true")
	}
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}

type CallbackServer struct {
	expectedState string
	listener      net.Listener
	server        *http.Server
	resultCh      chan callbackResult
	resultOnce    sync.Once
	closeOnce     sync.Once
}

type callbackResult struct {
	callback Callback
	err      error
}

func StartCallbackServer(listenAddr string, expectedState string) (*CallbackServer, error) {
	if expectedState == "" {
		return nil, ErrMissingState
	}
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen callback server: %w", err)
	}

	cb := &CallbackServer{
		expectedState: expectedState,
		listener:      listener,
		resultCh:      make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, cb.handleCallback)

	cb.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if serveErr := cb.server.Serve(cb.listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			cb.trySendResult(callbackResult{err: serveErr})
		}
	}()

	return cb, nil
}

func (c *CallbackServer) RedirectURI() string {
	if tcpAddr, ok := c.listener.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf("http://localhost:%d%s", tcpAddr.Port, callbackPath)
	}
	return "http://localhost" + callbackPath
}

// Wait blocks until the redirect arrives, the timeout passes or ctx ends.
// The server is closed on return.
func (c *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (Callback, error) {
	defer c.Close()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-c.resultCh:
		return result.callback, result.err
	case <-timer.C:
		return Callback{}, ErrCallbackTimeout
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	}
}

func (c *CallbackServer) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		closeErr = c.server.Close()
	})
	return closeErr
}

func (c *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("state") != c.expectedState {
		c.trySendResult(callbackResult{err: ErrStateMismatch})
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	if oauthError := query.Get("error"); oauthError != "" {
		if description := query.Get("error_description"); description != "" {
			oauthError = oauthError + ": " + description
		}
		c.trySendResult(callbackResult{err: errors.New(oauthError)})
		http.Error(w, "oauth error", http.StatusBadRequest)
		return
	}
	code := query.Get("code")
	if code == "" {
		c.trySendResult(callbackResult{err: errors.New("missing authorization code")})
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	c.trySendResult(callbackResult{callback: Callback{
		Code:        code,
		GuildID:     query.Get("guild_id"),
		Permissions: query.Get("permissions"),
	}})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Bot installed. You can close this window."))
}

func (c *CallbackServer) trySendResult(result callbackResult) {
	c.resultOnce.Do(func() {
		c.resultCh <- result
	})
}

// ExchangeCode trades the authorization code for the install grant using
// the application's client credentials.
func ExchangeCode(ctx context.Context, client *http.Client, req TokenExchangeRequest) (GrantedTokens, error) {
	if req.TokenURL == "" {
		return GrantedTokens{}, errors.New("token url is required")
	}
	if req.ClientID == "" {
		return GrantedTokens{}, errors.New("client id is required")
	}
	if req.ClientSecret == "" {
		return GrantedTokens{}, errors.New("client secret is required")
	}
	if req.RedirectURI == "" {
		return GrantedTokens{}, errors.New("redirect uri is required")
	}
	if req.Code == "" {
		return GrantedTokens{}, errors.New("authorization code is required")
	}

	if client == nil {
		client = http.DefaultClient
	}

	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", req.Code)
	values.Set("redirect_uri", req.RedirectURI)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.TokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return GrantedTokens{}, fmt.Errorf("create token exchange request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(req.ClientID, req.ClientSecret)

	resp, err := client.Do(httpReq)
	if err != nil {
		return GrantedTokens{}, fmt.Errorf("exchange code for tokens: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return GrantedTokens{}, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokens GrantedTokens
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTokenResponseBytes)).Decode(&tokens); err != nil {
		return GrantedTokens{}, fmt.Errorf("decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return GrantedTokens{}, errors.New("token response missing access token")
	}

	return tokens, nil
}

// GuildID prefers the guild echoed in the grant over the callback query.
func (t GrantedTokens) GuildID(cb Callback) string {
	if t.Guild != nil && t.Guild.ID != "" {
		return t.Guild.ID
	}
	return cb.GuildID
}
