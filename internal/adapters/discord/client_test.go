package discord

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedQuota struct {
	routeKey   string
	limit      int
	remaining  int
	resetAfter time.Duration
}

type quotaRecorder struct {
	mu   sync.Mutex
	seen []recordedQuota
}

func (r *quotaRecorder) Observe(routeKey string, limit, remaining int, resetAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedQuota{routeKey, limit, remaining, resetAfter})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "bot-token", append([]Option{WithHTTPClient(server.Client())}, opts...)...)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewClient("", "  ")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestClientListMessagesDecodesEmbedsAndReactions(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/channels/c1/messages", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "m9", r.URL.Query().Get("before"))
		assert.Equal(t, "Bot bot-token", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "DiscordBot ("))

		_, _ = io.WriteString(w, `[{
			"id": "m8",
			"channel_id": "c1",
			"embeds": [{"title": "Map-A"}],
			"reactions": [
				{"count": 3, "emoji": {"id": null, "name": "\u2744"}},
				{"count": 2, "emoji": {"id": "555", "name": "party"}}
			]
		}]`)
	})

	messages, err := client.ListMessages(context.Background(), "c1", "m9", 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.Message{
		ID:        "m8",
		ChannelID: "c1",
		Embeds:    []domain.Embed{{Title: "Map-A"}},
		Reactions: []domain.ReactionCount{{Emoji: "\u2744", Count: 3}},
	}, messages[0])
	assert.True(t, messages[0].HasReaction(domain.VariantSnow))
}

func TestClientReactionUsersEscapesEmojiAndObservesQuota(t *testing.T) {
	t.Parallel()

	emoji := domain.VariantFog.Emoji()
	recorder := &quotaRecorder{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/c1/messages/m1/reactions/"+emoji, r.URL.Path)
		assert.NotContains(t, r.URL.EscapedPath(), emoji)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "41", r.URL.Query().Get("after"))

		w.Header().Set("X-RateLimit-Limit", "5")
		w.Header().Set("X-RateLimit-Remaining", "4")
		w.Header().Set("X-RateLimit-Reset-After", "0.75")
		_, _ = io.WriteString(w, `[{"id":"42","username":"amy","global_name":"Amy"},{"id":"43","username":"tally","global_name":null,"bot":true}]`)
	}, WithObserver(recorder))

	users, err := client.ReactionUsers(context.Background(), "c1", "m1", emoji, "41", 100)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{
		{ID: "42", Username: "amy", GlobalName: "Amy"},
		{ID: "43", Username: "tally", Bot: true},
	}, users)
	assert.Equal(t, []recordedQuota{{"reactions:c1", 5, 4, 750 * time.Millisecond}}, recorder.seen)
}

func TestClientMapsTooManyRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     map[string]string
		body       string
		wantAfter  time.Duration
		wantGlobal bool
		parsed     time.Duration
	}{
		{
			name:      "json retry_after",
			body:      `{"message":"You are being rate limited.","retry_after":1.5,"global":false}`,
			wantAfter: 1500 * time.Millisecond,
			parsed:    1500 * time.Millisecond,
		},
		{
			name:       "global header",
			header:     map[string]string{"X-RateLimit-Global": "true"},
			body:       `{"message":"You are being rate limited.","retry_after":0.25,"global":true}`,
			wantAfter:  250 * time.Millisecond,
			wantGlobal: true,
			parsed:     250 * time.Millisecond,
		},
		{
			name:      "retry-after header",
			header:    map[string]string{"Retry-After": "3"},
			body:      `<html>slow down</html>`,
			wantAfter: 3 * time.Second,
			parsed:    3 * time.Second,
		},
		{
			name:   "text body only",
			body:   `Try again in 7 seconds`,
			parsed: 7 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				for key, value := range tt.header {
					w.Header().Set(key, value)
				}
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.ReactionUsers(context.Background(), "c1", "m1", domain.VariantDay.Emoji(), "", 100)
			require.ErrorIs(t, err, ratelimit.ErrRateLimited)

			var limited *ratelimit.RateLimitedError
			require.True(t, errors.As(err, &limited))
			assert.Equal(t, tt.wantAfter, limited.RetryAfter)
			assert.Equal(t, tt.wantGlobal, limited.Global)

			after, ok := ratelimit.NewRetryAfterParser().Classify(err)
			require.True(t, ok)
			assert.Equal(t, tt.parsed, after)
		})
	}
}

func TestClientReturnsAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":10008,"message":"Unknown Message"}`)
	})

	_, err := client.ReactionUsers(context.Background(), "c1", "m1", domain.VariantDay.Emoji(), "", 100)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, 10008, apiErr.Code)
	assert.False(t, ratelimit.IsRateLimited(err))
}

func TestClientSendMessagePostsEmbed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/c1/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body createMessageRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if !assert.Len(t, body.Embeds, 1) {
			return
		}
		embed := body.Embeds[0]
		assert.Equal(t, "Top 1 Winners", embed.Title)
		assert.Equal(t, 0xF1C40F, embed.Color)
		if assert.NotNil(t, embed.Footer) {
			assert.Equal(t, "Processed 1 Voters with 1 votes in 0 minutes and 2 seconds.", embed.Footer.Text)
		}
		assert.Equal(t, []fieldPayload{{Name: "Winner #1", Value: "**Map:** Map-A Day\n**Votes:** 1"}}, embed.Fields)

		_, _ = io.WriteString(w, `{"id":"m77","channel_id":"c1"}`)
	})

	id, err := client.SendMessage(context.Background(), "c1", domain.Post{
		Title:  "Top 1 Winners",
		Color:  0xF1C40F,
		Footer: "Processed 1 Voters with 1 votes in 0 minutes and 2 seconds.",
		Fields: []domain.PostField{{Name: "Winner #1", Value: "**Map:** Map-A Day\n**Votes:** 1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageID("m77"), id)
}

func TestClientThreadAndDelete(t *testing.T) {
	t.Parallel()

	var calls []string
	var mu sync.Mutex
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch r.Method {
		case http.MethodPost:
			var body createThreadRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, createThreadRequest{Name: "Full Vote Results", Type: 11, AutoArchiveDuration: 1440}, body)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"t1","name":"Full Vote Results"}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	thread, err := client.CreateThread(context.Background(), "c1", "Full Vote Results")
	require.NoError(t, err)
	assert.Equal(t, domain.Thread{ID: "t1", Name: "Full Vote Results"}, thread)

	require.NoError(t, client.DeleteMessage(context.Background(), "c1", "m1"))
	assert.Equal(t, []string{"POST /channels/c1/threads", "DELETE /channels/c1/messages/m1"}, calls)
}

func TestToEmbedEnforcesLimits(t *testing.T) {
	t.Parallel()

	fields := make([]domain.PostField, 30)
	for i := range fields {
		fields[i] = domain.PostField{Name: "n", Value: strings.Repeat("x", 2000)}
	}
	fields[0].Name = ""

	embed := toEmbed(domain.Post{Title: strings.Repeat("t", 300), Fields: fields})

	assert.Len(t, []rune(embed.Title), maxTitleLen)
	assert.Len(t, embed.Fields, maxFields)
	assert.Equal(t, "\u200b", embed.Fields[0].Name)
	assert.Len(t, []rune(embed.Fields[1].Value), maxFieldValueLen)
	assert.True(t, strings.HasSuffix(embed.Fields[1].Value, "\u2026"))
	assert.Nil(t, embed.Footer)
}
