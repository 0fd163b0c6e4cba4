package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendGrid struct {
	status int
	err    error
	got    *mail.SGMailV3
}

func (f *fakeSendGrid) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.got = email
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{FromEmail: "alerts@clinic.test"}, nil))
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "alerts@clinic.test"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "CareLine Support", sender.fromName)
}

func TestSendGridSender_Send(t *testing.T) {
	fake := &fakeSendGrid{status: 202}
	sender := newSendGridSender(fake, SendGridConfig{FromEmail: "alerts@clinic.test", FromName: "Alerts"}, nil)

	err := sender.Send(context.Background(), EmailMessage{To: "oncall@clinic.test", Subject: "Escalation", Body: "details"})
	require.NoError(t, err)
	require.NotNil(t, fake.got)
	assert.Equal(t, "Escalation", fake.got.Subject)
	assert.Equal(t, "alerts@clinic.test", fake.got.From.Address)
	assert.Equal(t, "oncall@clinic.test", fake.got.Personalizations[0].To[0].Address)
}

func TestSendGridSender_SendErrors(t *testing.T) {
	sender := newSendGridSender(&fakeSendGrid{status: 401}, SendGridConfig{}, nil)
	err := sender.Send(context.Background(), EmailMessage{To: "a@b.test"})
	assert.EqualError(t, err, "notify: sendgrid returned status 401")

	sender = newSendGridSender(&fakeSendGrid{err: errors.New("timeout")}, SendGridConfig{}, nil)
	err = sender.Send(context.Background(), EmailMessage{To: "a@b.test"})
	assert.ErrorContains(t, err, "timeout")

	var nilSender *SendGridSender
	assert.Error(t, nilSender.Send(context.Background(), EmailMessage{}))
}

func TestStubEmailSender_Send(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(nil).Send(context.Background(), EmailMessage{Subject: "hi"}))
}
