package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/ports"
)

// CredentialService keeps secrets in the secret store and their references
// in settings, rolling back whichever half fails.
type CredentialService struct {
	settings ports.SettingsRepository
	store    ports.SecretStore
}

func NewCredentialService(settings ports.SettingsRepository, store ports.SecretStore) *CredentialService {
	return &CredentialService{
		settings: settings,
		store:    store,
	}
}

func botTokenRef(settings *domain.Settings) *string { return &settings.Discord.TokenRef }

func clientSecretRef(settings *domain.Settings) *string { return &settings.OAuth.ClientSecretRef }

func (s *CredentialService) SetToken(ctx context.Context, cmd SetTokenCommand) error {
	key := cmd.SecretKey
	if key == "" {
		key = domain.DefaultTokenRef
	}
	return s.setSecret(ctx, botTokenRef, key, cmd.Token)
}

func (s *CredentialService) RemoveToken(ctx context.Context) error {
	return s.removeSecret(ctx, botTokenRef)
}

func (s *CredentialService) SetClientSecret(ctx context.Context, cmd SetClientSecretCommand) error {
	key := cmd.SecretKey
	if key == "" {
		key = domain.DefaultClientSecretRef
	}
	return s.setSecret(ctx, clientSecretRef, key, cmd.Secret)
}

// Token resolves the bot token through its settings reference.
func (s *CredentialService) Token(ctx context.Context) (string, error) {
	return s.resolve(ctx, botTokenRef)
}

func (s *CredentialService) ClientSecret(ctx context.Context) (string, error) {
	return s.resolve(ctx, clientSecretRef)
}

func (s *CredentialService) resolve(ctx context.Context, ref func(*domain.Settings) *string) (string, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	key := *ref(&settings)
	if key == "" {
		return "", domain.ErrTokenNotConfigured
	}

	value, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", fmt.Errorf("%w: secret %q is missing", domain.ErrTokenNotConfigured, key)
		}
		return "", fmt.Errorf("get secret %q: %w", key, err)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: secret %q is empty", domain.ErrTokenNotConfigured, key)
	}
	return value, nil
}

func (s *CredentialService) setSecret(ctx context.Context, ref func(*domain.Settings) *string, key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("secret value is required")
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	original := settings
	previous := *ref(&settings)

	if err := s.store.Put(ctx, key, value); err != nil {
		return fmt.Errorf("store secret: %w", err)
	}

	*ref(&settings) = key
	if err := s.settings.Save(ctx, settings); err != nil {
		if rollbackErr := s.store.Delete(ctx, key); rollbackErr != nil {
			return fmt.Errorf("save secret ref and rollback stored secret: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save secret ref: %w", err)
	}

	if previous == "" || previous == key {
		return nil
	}
	if err := s.store.Delete(ctx, previous); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		var rollbackErr error
		if restoreErr := s.settings.Save(ctx, original); restoreErr != nil {
			rollbackErr = errors.Join(rollbackErr, restoreErr)
		}
		if newSecretDeleteErr := s.store.Delete(ctx, key); newSecretDeleteErr != nil {
			rollbackErr = errors.Join(rollbackErr, newSecretDeleteErr)
		}
		if rollbackErr != nil {
			return fmt.Errorf("delete previous secret and rollback update: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("delete previous secret: %w", err)
	}

	return nil
}

func (s *CredentialService) removeSecret(ctx context.Context, ref func(*domain.Settings) *string) error {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	key := *ref(&settings)
	if key == "" {
		return nil
	}

	*ref(&settings) = ""
	if err := s.settings.Save(ctx, settings); err != nil {
		return fmt.Errorf("save secret ref: %w", err)
	}

	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		*ref(&settings) = key
		if restoreErr := s.settings.Save(ctx, settings); restoreErr != nil {
			return fmt.Errorf("delete secret and restore ref: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete secret: %w", err)
	}

	return nil
}

// RecordInstall stores the install grant and adopts the installed guild when
// settings have none yet. It reports whether the guild was adopted.
func (s *CredentialService) RecordInstall(ctx context.Context, cmd RecordInstallCommand) (bool, error) {
	grant := strings.TrimSpace(cmd.Grant)
	if grant == "" {
		return false, errors.New("install grant is required")
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}

	if err := s.store.Put(ctx, domain.DefaultInstallGrantRef, grant); err != nil {
		return false, fmt.Errorf("store install grant: %w", err)
	}

	if settings.Discord.GuildID != "" || cmd.GuildID == "" {
		return false, nil
	}

	settings.Discord.GuildID = cmd.GuildID
	if err := s.settings.Save(ctx, settings); err != nil {
		return false, fmt.Errorf("save installed guild: %w", err)
	}
	return true, nil
}
