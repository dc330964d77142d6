package domain

import "errors"

var (
	ErrSecretNotFound     = errors.New("secret not found")
	ErrInvalidSettings    = errors.New("invalid settings")
	ErrTokenNotConfigured = errors.New("discord bot token not configured")
)
