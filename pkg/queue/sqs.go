package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// Redelivery and dead-lettering are the queue's job: a handler that
// returns an error simply leaves the message in flight until the
// visibility timeout expires and the broker redrives it, eventually into
// the DLQ configured on the queue itself.

// S3EventRecord is one "object created" notification as delivered by the
// bucket, wrapped in a topic message inside the queue body.
type S3EventRecord struct {
	S3 struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

type s3EventBody struct {
	Records []S3EventRecord `json:"Records"`
}

type topicEnvelope struct {
	Message string `json:"Message"`
}

// ParseS3Records returns the notification records in a queue message.
// Handles both buckets that notify the queue directly and buckets that go
// through a topic, where the notification sits in a Message envelope. The
// records may be empty for non-notification messages (e.g. the bucket's
// test event).
func ParseS3Records(body string) ([]S3EventRecord, error) {
	var envelope topicEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Message != "" {
		body = envelope.Message
	}
	var event s3EventBody
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	return event.Records, nil
}

// CascadeDeletePayload asks the worker to tear down everything owned by
// a deleted event: face records, its recognition collection and stored
// photos.
type CascadeDeletePayload struct {
	Organization string `json:"organization"`
	EventID      string `json:"eventId"`
	Collection   string `json:"collection"`
}

type Message struct {
	ID            string
	ReceiptHandle string
	Body          string
}

type Queue struct {
	client *sqs.Client
	logger *zap.Logger
}

func NewQueue(ctx context.Context, region string, logger *zap.Logger) (*Queue, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Queue{
		client: sqs.NewFromConfig(awsCfg),
		logger: logger,
	}, nil
}

// Send enqueues a JSON payload.
func (q *Queue) Send(ctx context.Context, queueURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Receive long-polls for up to 10 messages.
func (q *Queue) Receive(ctx context.Context, queueURL string) ([]Message, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
	})
	if err != nil {
		return nil, fmt.Errorf("receive message: %w", err)
	}
	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, Message{
			ID:            aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          aws.ToString(m.Body),
		})
	}
	return messages, nil
}

// Delete acknowledges a processed message.
func (q *Queue) Delete(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	return err
}
