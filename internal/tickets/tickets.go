// Package tickets signals priority changes back to the ticket store.
package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Priority is a ticket priority in the ticket store.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PriorityFor maps a triage urgency level to a ticket priority. ok is false
// when the level does not change priority.
func PriorityFor(urgencyLevel string) (Priority, bool) {
	switch urgencyLevel {
	case "emergency":
		return PriorityUrgent, true
	case "urgent":
		return PriorityHigh, true
	default:
		return "", false
	}
}

// PriorityUpdate asks the ticket store to raise a ticket's priority.
type PriorityUpdate struct {
	TicketID     string    `json:"ticketId"`
	UserID       string    `json:"userId"`
	Priority     Priority  `json:"priority"`
	UrgencyLevel string    `json:"urgencyLevel"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Publisher delivers priority updates.
type Publisher interface {
	Publish(ctx context.Context, update PriorityUpdate) error
}

// MemoryPublisher records updates in memory.
type MemoryPublisher struct {
	mu      sync.Mutex
	updates []PriorityUpdate
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(ctx context.Context, update PriorityUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
	return nil
}

// Updates returns a copy of everything published so far.
func (p *MemoryPublisher) Updates() []PriorityUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PriorityUpdate(nil), p.updates...)
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends updates as JSON messages to an SQS queue.
type SQSPublisher struct {
	client   sqsAPI
	queueURL string
}

// NewSQSPublisher panics on a nil client or empty queue URL.
func NewSQSPublisher(client *sqs.Client, queueURL string) *SQSPublisher {
	if client == nil {
		panic("tickets: SQS client cannot be nil")
	}
	return newSQSPublisher(client, queueURL)
}

func newSQSPublisher(client sqsAPI, queueURL string) *SQSPublisher {
	if queueURL == "" {
		panic("tickets: SQS queueURL cannot be empty")
	}
	return &SQSPublisher{client: client, queueURL: queueURL}
}

func (p *SQSPublisher) Publish(ctx context.Context, update PriorityUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("tickets: failed to marshal update: %w", err)
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"priority": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(update.Priority)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("tickets: failed to send SQS message: %w", err)
	}
	return nil
}
