package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// Twilio error codes mapped to our transport error taxonomy.
// See https://www.twilio.com/docs/api/errors
var twilioErrorKinds = map[int]domain.SMSErrorKind{
	20003: domain.SMSErrorMisconfigured,       // authentication failure
	21211: domain.SMSErrorInvalidRecipient,    // invalid 'To' number
	21214: domain.SMSErrorInvalidRecipient,    // unable to route
	21608: domain.SMSErrorInsufficientCredits, // unreachable via trial account
	21610: domain.SMSErrorInvalidRecipient,    // recipient opted out
	21614: domain.SMSErrorInvalidRecipient,    // not SMS-capable
	30001: domain.SMSErrorProviderUnavailable, // queue overflow
	30003: domain.SMSErrorProviderUnavailable, // unreachable handset
	30005: domain.SMSErrorProviderUnavailable, // unknown handset
	30008: domain.SMSErrorProviderUnavailable, // unknown error
}

// Message statuses Twilio reports for an accepted send.
var acceptedStatuses = map[string]bool{
	"queued":   true,
	"accepted": true,
	"sending":  true,
	"sent":     true,
}

// TwilioService implements domain.SMSService.
type TwilioService struct {
	client *twilio.RestClient
	from   string
	logger *slog.Logger
}

// NewTwilioService creates a new Twilio SMS transport.
func NewTwilioService(accountSID, authToken, fromNumber string, logger *slog.Logger) domain.SMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioService{client: client, from: fromNumber, logger: logger}
}

// SendSMS implements domain.SMSService. The send runs in its own goroutine
// so the caller's context deadline bounds a slow provider.
func (t *TwilioService) SendSMS(ctx context.Context, to, body string) (string, error) {
	if t.from == "" {
		return "", &domain.SMSError{
			Kind:    domain.SMSErrorMisconfigured,
			Message: "twilio from number is not configured",
		}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	type result struct {
		msg *twilioApi.ApiV2010Message
		err error
	}
	ch := make(chan result, 1)
	go func() {
		msg, err := t.client.Api.CreateMessage(params)
		ch <- result{msg: msg, err: err}
	}()

	select {
	case <-ctx.Done():
		t.logger.Error("sms send timed out", "to_prefix", prefix(to), "error", ctx.Err())
		return "", &domain.SMSError{
			Kind:    domain.SMSErrorProviderUnavailable,
			Message: "sms provider did not respond in time",
		}
	case res := <-ch:
		if res.err != nil {
			return "", t.classify(res.err, to)
		}
		return t.checkStatus(res.msg, to)
	}
}

func (t *TwilioService) classify(err error, to string) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		kind, ok := twilioErrorKinds[restErr.Code]
		if !ok {
			kind = domain.SMSErrorProviderUnavailable
		}
		if restErr.Status == 401 {
			kind = domain.SMSErrorMisconfigured
		}
		t.logger.Error("twilio api error",
			"to_prefix", prefix(to), "code", restErr.Code, "status", restErr.Status, "kind", kind.String())
		return &domain.SMSError{
			Kind:         kind,
			ProviderCode: strconv.Itoa(restErr.Code),
			Message:      restErr.Message,
		}
	}

	t.logger.Error("unexpected sms transport error", "to_prefix", prefix(to), "error", err)
	return &domain.SMSError{Kind: domain.SMSErrorUnknown, Message: err.Error()}
}

func (t *TwilioService) checkStatus(msg *twilioApi.ApiV2010Message, to string) (string, error) {
	status := ""
	if msg.Status != nil {
		status = *msg.Status
	}
	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	if !acceptedStatuses[status] {
		t.logger.Error("sms rejected by provider", "to_prefix", prefix(to), "status", status, "sid", sid)
		return "", &domain.SMSError{
			Kind:    domain.SMSErrorProviderUnavailable,
			Message: "sms send returned status " + status,
		}
	}

	t.logger.Info("sms accepted", "to_prefix", prefix(to), "sid", sid, "status", status)
	return sid, nil
}

func prefix(phone string) string {
	if len(phone) <= 7 {
		return phone
	}
	return phone[:7]
}
