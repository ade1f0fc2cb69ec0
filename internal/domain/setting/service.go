// Package setting stores site-wide key/value settings.
package setting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/notification"
)

var (
	ErrSettingNotFound = apperror.New(apperror.KindNotFound, "Setting not found")
	ErrKeyRequired     = apperror.Validation("key", "key is required")
	ErrValueRequired   = apperror.Validation("value", "value is required")
	ErrInvalidValue    = apperror.Validation("value", "value must be valid JSON")
)

type Service struct {
	settings store.SettingStore
	notifier notification.Notifier
	now      func() time.Time
}

func NewService(settings store.SettingStore, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Service{settings: settings, notifier: notifier, now: time.Now}
}

// Input is the update payload. Description is kept when left empty.
type Input struct {
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description"`
}

func (s *Service) List(ctx context.Context) ([]*model.Setting, error) {
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

func (s *Service) Get(ctx context.Context, key string) (*model.Setting, error) {
	setting, err := s.settings.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSettingNotFound
	}
	return setting, err
}

// Update creates or replaces the setting under key and announces the new
// value.
func (s *Service) Update(ctx context.Context, key string, in Input) (*model.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrKeyRequired
	}
	if len(in.Value) == 0 || string(in.Value) == "null" {
		return nil, ErrValueRequired
	}
	if !json.Valid(in.Value) {
		return nil, ErrInvalidValue
	}

	saved, err := s.settings.Upsert(ctx, &model.Setting{
		Key:         key,
		Value:       in.Value,
		Description: strings.TrimSpace(in.Description),
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert setting %s: %w", key, err)
	}
	log.Printf("[Settings] Updated %s", key)

	notification.Send(ctx, s.notifier, "Settings", notification.EventSettingsUpdated, notification.SettingPayload{
		Key:   saved.Key,
		Value: saved.Value,
	})
	return saved, nil
}
