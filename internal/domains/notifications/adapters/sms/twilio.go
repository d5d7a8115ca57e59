package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
)

// Config holds Twilio credentials and the sending number.
type Config struct {
	AccountSID string
	AuthToken  string
	From       string
}

type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

var _ ports.SMSSender = (*TwilioSender)(nil)

// TwilioSender sends text messages through the Twilio REST API.
type TwilioSender struct {
	api  messageCreator
	from string
}

func NewTwilioSender(cfg Config) (*TwilioSender, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" || strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("twilio account sid, auth token and sender number are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{api: client.Api, from: cfg.From}, nil
}

// SendSMS ignores ctx cancellation once the request is issued; the Twilio client has no context support.
func (s *TwilioSender) SendSMS(ctx context.Context, msg domain.SMSMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)
	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

var _ ports.SMSSender = LogSender{}

// LogSender stands in when Twilio is not configured.
type LogSender struct {
	Logger *slog.Logger
}

func (l LogSender) SendSMS(ctx context.Context, _ domain.SMSMessage) error {
	if l.Logger != nil {
		l.Logger.InfoContext(ctx, "sms delivery skipped, twilio not configured")
	}
	return nil
}
