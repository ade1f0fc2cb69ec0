package setting

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/example/ec-storefront/internal/notification"
)

type captured struct {
	event   string
	payload any
}

type captureNotifier struct {
	sent []captured
	err  error
}

func (c *captureNotifier) Notify(_ context.Context, event string, payload any) error {
	c.sent = append(c.sent, captured{event, payload})
	return c.err
}

func newTestSettingService() (*Service, *mocks.MockSettingStore, *captureNotifier) {
	settings := mocks.NewMockSettingStore()
	n := &captureNotifier{}
	return NewService(settings, n), settings, n
}

func TestService_Update_UpsertsAndNotifies(t *testing.T) {
	svc, _, n := newTestSettingService()
	ctx := context.Background()

	saved, err := svc.Update(ctx, "shipping", Input{Value: json.RawMessage(`{"flatRate":5}`), Description: "Shipping"})
	require.NoError(t, err)
	assert.Equal(t, "shipping", saved.Key)

	_, err = svc.Update(ctx, "shipping", Input{Value: json.RawMessage(`{"flatRate":7}`)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "shipping")
	require.NoError(t, err)
	assert.JSONEq(t, `{"flatRate":7}`, string(got.Value))
	assert.Equal(t, "Shipping", got.Description)

	require.Len(t, n.sent, 2)
	assert.Equal(t, notification.EventSettingsUpdated, n.sent[1].event)
	payload := n.sent[1].payload.(notification.SettingPayload)
	assert.Equal(t, "shipping", payload.Key)
	assert.JSONEq(t, `{"flatRate":7}`, string(payload.Value))
}

func TestService_Update_NotifierFailureIsIgnored(t *testing.T) {
	svc, _, n := newTestSettingService()
	n.err = errors.New("broker down")

	_, err := svc.Update(context.Background(), "banner", Input{Value: json.RawMessage(`"Summer sale"`)})

	assert.NoError(t, err)
}

func TestService_Update_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"empty key", " ", `1`, ErrKeyRequired},
		{"missing value", "k", ``, ErrValueRequired},
		{"null value", "k", `null`, ErrValueRequired},
		{"malformed value", "k", `{`, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, n := newTestSettingService()

			_, err := svc.Update(context.Background(), tt.key, Input{Value: json.RawMessage(tt.value)})

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Empty(t, n.sent)
		})
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc, _, _ := newTestSettingService()

	_, err := svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrSettingNotFound)
}

func TestService_List_SortedByKey(t *testing.T) {
	svc, _, _ := newTestSettingService()
	ctx := context.Background()
	for _, k := range []string{"b", "a", "c"} {
		_, err := svc.Update(ctx, k, Input{Value: json.RawMessage(`true`)})
		require.NoError(t, err)
	}

	settings, err := svc.List(ctx)

	require.NoError(t, err)
	require.Len(t, settings, 3)
	assert.Equal(t, "a", settings[0].Key)
	assert.Equal(t, "c", settings[2].Key)
}
