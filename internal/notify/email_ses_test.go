package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	got *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := newSESSender(fake, SESConfig{FromEmail: "alerts@clinic.test"}, nil)

	err := sender.Send(context.Background(), EmailMessage{To: "oncall@clinic.test", Subject: "Escalation", Body: "details"})
	require.NoError(t, err)
	require.NotNil(t, fake.got)
	assert.Equal(t, "CareLine Triage <alerts@clinic.test>", aws.ToString(fake.got.FromEmailAddress))
	assert.Equal(t, []string{"oncall@clinic.test"}, fake.got.Destination.ToAddresses)
	assert.Equal(t, "Escalation", aws.ToString(fake.got.Content.Simple.Subject.Data))
	assert.Equal(t, "details", aws.ToString(fake.got.Content.Simple.Body.Text.Data))
	assert.Nil(t, fake.got.Content.Simple.Body.Html)
}

func TestSESSender_SendErrors(t *testing.T) {
	sender := newSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "a@b.test"}, nil)
	assert.ErrorContains(t, sender.Send(context.Background(), EmailMessage{To: "c@d.test"}), "throttled")
	assert.Error(t, sender.Send(context.Background(), EmailMessage{}))
}
