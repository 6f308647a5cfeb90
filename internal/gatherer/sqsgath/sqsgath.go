package sqsgath

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/programme-lv/trainer/internal/gatherer"
)

// Sender is the part of *sqs.Client used to stream responses.
type Sender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// New creates a gatherer that streams responses to the given SQS queue.
func New(ctx context.Context, client Sender, evalUuid string, queueUrl string, logger *slog.Logger) *gatherer.Stream {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sqsgath", "queue_url", queueUrl)
	return gatherer.NewStream(evalUuid, func(payload []byte) error {
		input := &sqs.SendMessageInput{
			QueueUrl:    aws.String(queueUrl),
			MessageBody: aws.String(string(payload)),
		}
		if isFifo(queueUrl) {
			// One group per evaluation keeps its messages ordered.
			input.MessageGroupId = aws.String(evalUuid)
			input.MessageDeduplicationId = aws.String(uuid.NewString())
		}
		_, err := client.SendMessage(ctx, input)
		return err
	}, logger)
}

func isFifo(queueUrl string) bool {
	return strings.HasSuffix(queueUrl, ".fifo")
}
