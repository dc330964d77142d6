package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/reaction-tally/internal/adapters/secrets/file"
	passstore "github.com/bnema/reaction-tally/internal/adapters/secrets/pass"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/bnema/reaction-tally/internal/ports"
	"github.com/sirupsen/logrus"
)

// Store tries the primary backend first and falls back to the second one on
// any failure other than cancellation.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	logger   logrus.FieldLogger
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore, logger logrus.FieldLogger) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback, logger: logging.OrDiscard(logger)}, nil
}

// NewPassFirstWithFileFallback keeps secrets in pass(1) when it is installed
// and under fileRoot otherwise.
func NewPassFirstWithFileFallback(fileRoot string, logger logrus.FieldLogger) (*Store, error) {
	return NewStore(passstore.NewStore(), filestore.NewStore(fileRoot), logger)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}
	s.warnFallback("put", key, err)

	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}
	s.warnFallback("get", key, err)

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}
	s.warnFallback("delete", key, err)

	fallbackErr := s.fallback.Delete(ctx, key)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
}

func (s *Store) warnFallback(op, key string, err error) {
	entry := s.logger.WithError(err).WithFields(logrus.Fields{"op": op, "key": key})
	if errors.Is(err, passstore.ErrUnavailable) {
		entry.Debug("pass unavailable, using file secret store")
		return
	}
	entry.Warn("primary secret store failed, using fallback")
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
