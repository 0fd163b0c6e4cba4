package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityFor(t *testing.T) {
	p, ok := PriorityFor("emergency")
	assert.True(t, ok)
	assert.Equal(t, PriorityUrgent, p)

	p, ok = PriorityFor("urgent")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	for _, level := range []string{"prompt", "routine", ""} {
		_, ok = PriorityFor(level)
		assert.False(t, ok, level)
	}
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	require.NoError(t, p.Publish(context.Background(), PriorityUpdate{TicketID: "T-1", Priority: PriorityHigh}))

	got := p.Updates()
	require.Len(t, got, 1)
	got[0].TicketID = "mutated"
	assert.Equal(t, "T-1", p.Updates()[0].TicketID)
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSQSPublisher_Publish(t *testing.T) {
	fake := &fakeSQS{}
	p := newSQSPublisher(fake, "https://sqs.local/queue/ticket-updates")

	err := p.Publish(context.Background(), PriorityUpdate{
		TicketID:     "T-9",
		Priority:     PriorityUrgent,
		UrgencyLevel: "emergency",
		Reason:       "chest pain",
	})
	require.NoError(t, err)
	require.NotNil(t, fake.input)
	assert.Equal(t, "https://sqs.local/queue/ticket-updates", aws.ToString(fake.input.QueueUrl))
	assert.Equal(t, "urgent", aws.ToString(fake.input.MessageAttributes["priority"].StringValue))

	var decoded PriorityUpdate
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(fake.input.MessageBody)), &decoded))
	assert.Equal(t, "T-9", decoded.TicketID)
	assert.Equal(t, PriorityUrgent, decoded.Priority)
}

func TestSQSPublisher_Error(t *testing.T) {
	p := newSQSPublisher(&fakeSQS{err: errors.New("throttled")}, "q")
	err := p.Publish(context.Background(), PriorityUpdate{TicketID: "T-1"})
	assert.ErrorContains(t, err, "tickets: failed to send SQS message")
}

func TestNewSQSPublisher_PanicsOnMissingQueue(t *testing.T) {
	assert.Panics(t, func() { newSQSPublisher(&fakeSQS{}, "") })
	assert.Panics(t, func() { NewSQSPublisher(nil, "q") })
}
