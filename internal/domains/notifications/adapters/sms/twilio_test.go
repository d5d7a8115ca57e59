package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
)

type fakeCreator struct {
	params *twilioapi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
	f.params = params
	return &twilioapi.ApiV2010Message{}, f.err
}

func TestTwilioSender_SendSMS(t *testing.T) {
	api := &fakeCreator{}
	sender := &TwilioSender{api: api, from: "+15550000000"}

	require.NoError(t, sender.SendSMS(context.Background(), domain.SMSMessage{To: "+447700900123", Body: "hello"}))
	require.NotNil(t, api.params)
	assert.Equal(t, "+447700900123", *api.params.To)
	assert.Equal(t, "+15550000000", *api.params.From)
	assert.Equal(t, "hello", *api.params.Body)
}

func TestTwilioSender_WrapsErrors(t *testing.T) {
	upstream := errors.New("rate limited")
	sender := &TwilioSender{api: &fakeCreator{err: upstream}, from: "+15550000000"}

	err := sender.SendSMS(context.Background(), domain.SMSMessage{To: "+447700900123", Body: "hello"})
	require.ErrorIs(t, err, upstream)
}

func TestTwilioSender_CancelledContext(t *testing.T) {
	api := &fakeCreator{}
	sender := &TwilioSender{api: api, from: "+15550000000"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, sender.SendSMS(ctx, domain.SMSMessage{To: "+1", Body: "x"}), context.Canceled)
	assert.Nil(t, api.params)
}

func TestNewTwilioSender_RequiresCredentials(t *testing.T) {
	_, err := NewTwilioSender(Config{AccountSID: "AC123"})
	require.Error(t, err)
}
