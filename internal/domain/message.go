package domain

import "cmp"

type ChannelID string

type MessageID string

type UserID string

type Message struct {
	ID        MessageID
	ChannelID ChannelID
	Embeds    []Embed
	Reactions []ReactionCount
}

type Embed struct {
	Title string
}

type ReactionCount struct {
	Emoji string
	Count int
}

// HasReaction reports whether at least one user reacted with variant's marker.
func (m Message) HasReaction(variant Variant) bool {
	for _, reaction := range m.Reactions {
		if reaction.Count <= 0 {
			continue
		}
		if got, ok := VariantForEmoji(reaction.Emoji); ok && got == variant {
			return true
		}
	}
	return false
}

// ReactionEmoji returns the marker spelling the message actually carries for
// variant, falling back to the canonical one.
func (m Message) ReactionEmoji(variant Variant) string {
	for _, reaction := range m.Reactions {
		if got, ok := VariantForEmoji(reaction.Emoji); ok && got == variant {
			return reaction.Emoji
		}
	}
	return variant.Emoji()
}

type User struct {
	ID         UserID
	Username   string
	GlobalName string
	Bot        bool
}

func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	if u.Username != "" {
		return u.Username
	}
	return string(u.ID)
}

// Candidate is one votable embed on a message together with the variants
// whose reactions should be collected for it.
type Candidate struct {
	Message  Message
	Title    string
	Variants []Variant
}

type Thread struct {
	ID   ChannelID
	Name string
}

// Post is the plain content handed to the publishing surface.
type Post struct {
	Title       string
	Description string
	Color       int
	Fields      []PostField
	Footer      string
}

type PostField struct {
	Name  string
	Value string
}

// CompareUserIDs orders numeric snowflake ids numerically and falls back to
// plain string order for anything else.
func CompareUserIDs(a, b UserID) int {
	if len(a) != len(b) && isDigits(string(a)) && isDigits(string(b)) {
		return cmp.Compare(len(a), len(b))
	}
	return cmp.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
