package sqssrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/gatherer/sqsgath"
	"github.com/programme-lv/trainer/internal/reqcodec"
	"github.com/programme-lv/trainer/internal/tester"
	"golang.org/x/sync/errgroup"
)

const (
	waitTimeSeconds = 20
	maxBatch        = 10
	retryDelay      = time.Second
)

type Runner interface {
	RunTests(ctx context.Context, req api.ExecReq, gath tester.ResultGatherer) ([]api.TestCaseResult, error)
}

// Client is the part of *sqs.Client the server needs.
type Client interface {
	sqsgath.Sender
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// NewClient loads the default AWS configuration for region.
func NewClient(ctx context.Context, region string) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// Server long-polls a request queue and streams results to the response
// queue named in each request.
type Server struct {
	client        Client
	queueUrl      string
	runner        Runner
	maxConcurrent int
	log           *slog.Logger
}

func New(client Client, queueUrl string, runner Runner, maxConcurrent int, logger *slog.Logger) *Server {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		client:        client,
		queueUrl:      queueUrl,
		runner:        runner,
		maxConcurrent: maxConcurrent,
		log:           logger.With("component", "sqssrv"),
	}
}

// Serve blocks until ctx is cancelled, then waits for in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("polling", "queue_url", s.queueUrl, "max_concurrent", s.maxConcurrent)

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for ctx.Err() == nil {
		output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:              aws.String(s.queueUrl),
			MaxNumberOfMessages:   int32(min(s.maxConcurrent, maxBatch)),
			WaitTimeSeconds:       waitTimeSeconds,
			MessageAttributeNames: []string{reqcodec.EncodingHeader},
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Error("failed to receive messages", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
			continue
		}

		for _, msg := range output.Messages {
			g.Go(func() error {
				s.handle(ctx, msg)
				return nil
			})
		}
	}

	s.log.Info("shutting down, waiting for in-flight requests")
	return g.Wait()
}

func (s *Server) handle(ctx context.Context, msg types.Message) {
	req, err := reqcodec.Decode([]byte(aws.ToString(msg.Body)), encodingOf(msg))
	if err != nil {
		// A malformed message would be redelivered forever.
		s.log.Error("dropping malformed request", "message_id", aws.ToString(msg.MessageId), "error", err)
		s.delete(msg)
		return
	}

	log := s.log.With("eval_uuid", req.EvalUuid)
	var gath tester.ResultGatherer = tester.Discard{}
	if req.ResSqsUrl != nil && *req.ResSqsUrl != "" {
		gath = sqsgath.New(context.WithoutCancel(ctx), s.client, req.EvalUuid, *req.ResSqsUrl, s.log)
	} else {
		log.Warn("request has no response queue, results will only be logged")
	}

	results, err := s.runner.RunTests(ctx, req, gath)
	if err != nil && errors.Is(err, context.Canceled) {
		// Leave the message for another worker.
		log.Warn("request interrupted", "error", err)
		return
	}
	if err != nil {
		log.Warn("request failed", "error", err)
	} else {
		log.Info("request finished", "tests", len(results))
	}
	s.delete(msg)
}

func (s *Server) delete(msg types.Message) {
	// Deletion must happen even while shutting down.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueUrl),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		s.log.Error("failed to delete message", "message_id", aws.ToString(msg.MessageId), "error", err)
	}
}

func encodingOf(msg types.Message) string {
	attr, ok := msg.MessageAttributes[reqcodec.EncodingHeader]
	if !ok {
		return ""
	}
	return aws.ToString(attr.StringValue)
}
