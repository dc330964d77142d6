package discord

import (
	"unicode/utf8"

	"github.com/bnema/reaction-tally/internal/domain"
)

// Embed limits enforced by the API.
const (
	maxTitleLen      = 256
	maxDescLen       = 4096
	maxFieldNameLen  = 256
	maxFieldValueLen = 1024
	maxFooterLen     = 2048
	maxFields        = 25
	maxEmbedChars    = 6000

	publicThreadType   = 11
	threadArchiveAfter = 1440
)

type messagePayload struct {
	ID        string            `json:"id"`
	ChannelID string            `json:"channel_id"`
	Embeds    []embedPayload    `json:"embeds"`
	Reactions []reactionPayload `json:"reactions"`
}

type embedPayload struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Fields      []fieldPayload `json:"fields,omitempty"`
	Footer      *footerPayload `json:"footer,omitempty"`
}

type fieldPayload struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type footerPayload struct {
	Text string `json:"text"`
}

type reactionPayload struct {
	Count int          `json:"count"`
	Emoji emojiPayload `json:"emoji"`
}

type emojiPayload struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type userPayload struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	GlobalName *string `json:"global_name"`
	Bot        bool    `json:"bot"`
}

type createMessageRequest struct {
	Embeds []embedPayload `json:"embeds"`
}

type createThreadRequest struct {
	Name                string `json:"name"`
	Type                int    `json:"type"`
	AutoArchiveDuration int    `json:"auto_archive_duration"`
}

type channelPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type errorPayload struct {
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
	Global     bool    `json:"global"`
}

func toMessage(payload messagePayload, channel domain.ChannelID) domain.Message {
	message := domain.Message{
		ID:        domain.MessageID(payload.ID),
		ChannelID: domain.ChannelID(payload.ChannelID),
	}
	if message.ChannelID == "" {
		message.ChannelID = channel
	}
	for _, embed := range payload.Embeds {
		message.Embeds = append(message.Embeds, domain.Embed{Title: embed.Title})
	}
	for _, reaction := range payload.Reactions {
		// Custom guild emoji never match a variant marker.
		if reaction.Emoji.ID != nil {
			continue
		}
		message.Reactions = append(message.Reactions, domain.ReactionCount{
			Emoji: reaction.Emoji.Name,
			Count: reaction.Count,
		})
	}
	return message
}

func toUser(payload userPayload) domain.User {
	user := domain.User{
		ID:       domain.UserID(payload.ID),
		Username: payload.Username,
		Bot:      payload.Bot,
	}
	if payload.GlobalName != nil {
		user.GlobalName = *payload.GlobalName
	}
	return user
}

func toEmbed(post domain.Post) embedPayload {
	embed := embedPayload{
		Title:       truncate(post.Title, maxTitleLen),
		Description: truncate(post.Description, maxDescLen),
		Color:       post.Color,
	}
	if post.Footer != "" {
		embed.Footer = &footerPayload{Text: truncate(post.Footer, maxFooterLen)}
	}
	total := utf8.RuneCountInString(embed.Title) + utf8.RuneCountInString(embed.Description)
	if embed.Footer != nil {
		total += utf8.RuneCountInString(embed.Footer.Text)
	}
	// Callers split long posts first; fields past either limit are dropped
	// so the request is never rejected outright.
	for i, field := range post.Fields {
		if i == maxFields {
			break
		}
		payload := fieldPayload{
			Name:  orZeroWidth(truncate(field.Name, maxFieldNameLen)),
			Value: orZeroWidth(truncate(field.Value, maxFieldValueLen)),
		}
		total += utf8.RuneCountInString(payload.Name) + utf8.RuneCountInString(payload.Value)
		if total > maxEmbedChars {
			break
		}
		embed.Fields = append(embed.Fields, payload)
	}
	return embed
}

// droppedFields reports how many of post's fields toEmbed left out.
func droppedFields(post domain.Post, embed embedPayload) int {
	return len(post.Fields) - len(embed.Fields)
}

// truncate cuts s to at most limit runes, ending with an ellipsis when cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "\u2026"
}

// Empty field names or values are rejected by the API.
func orZeroWidth(s string) string {
	if s == "" {
		return "\u200b"
	}
	return s
}
