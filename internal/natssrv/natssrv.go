package natssrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/gatherer/natsgath"
	"github.com/programme-lv/trainer/internal/reqcodec"
	"github.com/programme-lv/trainer/internal/tester"
	"golang.org/x/sync/errgroup"
)

// Subscription is the part of *nats.Subscription the server needs.
type Subscription interface {
	NextMsgWithContext(ctx context.Context) (*nats.Msg, error)
	Unsubscribe() error
}

type Runner interface {
	RunTests(ctx context.Context, req api.ExecReq, gath tester.ResultGatherer) ([]api.TestCaseResult, error)
}

// Conn is the part of *nats.Conn the server needs. Use Wrap to adapt a
// live connection.
type Conn interface {
	natsgath.Publisher
	QueueSubscribeSync(subj, queue string) (Subscription, error)
}

// Wrap adapts a *nats.Conn to Conn. Subscriptions it creates have no
// pending limits, so requests wait in the client buffer for a free worker
// instead of being dropped as a slow consumer.
func Wrap(nc *nats.Conn) Conn {
	return natsConn{nc}
}

type natsConn struct {
	*nats.Conn
}

func (c natsConn) QueueSubscribeSync(subj, queue string) (Subscription, error) {
	sub, err := c.Conn.QueueSubscribeSync(subj, queue)
	if err != nil {
		return nil, err
	}
	if err := sub.SetPendingLimits(-1, -1); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("failed to lift pending limits: %w", err)
	}
	return sub, nil
}

// Server consumes execution requests from a NATS queue group and streams
// results to each request's reply inbox.
type Server struct {
	conn          Conn
	subject       string
	queue         string
	runner        Runner
	maxConcurrent int
	log           *slog.Logger
}

func New(conn Conn, subject, queue string, runner Runner, maxConcurrent int, logger *slog.Logger) *Server {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		conn:          conn,
		subject:       subject,
		queue:         queue,
		runner:        runner,
		maxConcurrent: maxConcurrent,
		log:           logger.With("component", "natssrv", "subject", subject),
	}
}

// Serve blocks until ctx is cancelled, then waits for in-flight requests.
// A message is only taken off the subscription once a worker slot is free.
func (s *Server) Serve(ctx context.Context) error {
	sub, err := s.conn.QueueSubscribeSync(s.subject, s.queue)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			s.log.Warn("failed to unsubscribe", "error", err)
		}
	}()

	s.log.Info("listening", "queue", s.queue, "max_concurrent", s.maxConcurrent)

	slots := make(chan struct{}, s.maxConcurrent)
	var g errgroup.Group
	for {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			s.log.Info("shutting down, waiting for in-flight requests")
			return g.Wait()
		}

		msg, err := sub.NextMsgWithContext(ctx)
		if err != nil {
			<-slots
			if ctx.Err() != nil {
				s.log.Info("shutting down, waiting for in-flight requests")
				return g.Wait()
			}
			s.log.Error("failed to receive request", "error", err)
			if errors.Is(err, nats.ErrBadSubscription) || errors.Is(err, nats.ErrConnectionClosed) {
				_ = g.Wait()
				return fmt.Errorf("subscription to %s closed: %w", s.subject, err)
			}
			continue
		}

		g.Go(func() error {
			defer func() { <-slots }()
			s.handle(ctx, msg)
			return nil
		})
	}
}

func (s *Server) handle(ctx context.Context, msg *nats.Msg) {
	encoding := ""
	if msg.Header != nil {
		encoding = msg.Header.Get(reqcodec.EncodingHeader)
	}

	req, err := reqcodec.Decode(msg.Data, encoding)
	if err != nil {
		s.log.Error("dropping malformed request", "error", err, "reply", msg.Reply)
		if msg.Reply != "" {
			errMsg := err.Error()
			natsgath.New(s.conn, req.EvalUuid, msg.Reply, s.log).FinishJob(nil, &errMsg)
		}
		return
	}

	log := s.log.With("eval_uuid", req.EvalUuid)
	if msg.Reply == "" {
		log.Warn("request has no reply subject, results will only be logged")
	}

	var gath tester.ResultGatherer = tester.Discard{}
	if msg.Reply != "" {
		gath = natsgath.New(s.conn, req.EvalUuid, msg.Reply, s.log)
	}

	results, err := s.runner.RunTests(ctx, req, gath)
	if err != nil {
		log.Warn("request failed", "error", err)
		return
	}
	log.Info("request finished", "tests", len(results))
}
