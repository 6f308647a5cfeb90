package main

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/trainer/internal/natssrv"
	"github.com/programme-lv/trainer/internal/sqssrv"
	"github.com/urfave/cli/v3"
)

func listenNatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen-nats",
		Usage: "serve execution requests from a NATS queue group",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}

			nc, err := nats.Connect(a.env.NatsUrl,
				nats.Name("trainer"),
				nats.MaxReconnects(-1),
				nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
					a.log.Warn("nats disconnected", "error", err)
				}),
				nats.ReconnectHandler(func(c *nats.Conn) {
					a.log.Info("nats reconnected", "url", c.ConnectedUrl())
				}),
			)
			if err != nil {
				return fmt.Errorf("failed to connect to NATS at %s: %w", a.env.NatsUrl, err)
			}
			defer nc.Drain()

			srv := natssrv.New(natssrv.Wrap(nc), a.env.NatsSubject, a.env.NatsQueue, a.tester, a.env.MaxConcurrent, a.log)
			return srv.Serve(ctx)
		},
	}
}

func listenSqsCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen-sqs",
		Usage: "serve execution requests from an SQS queue",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			if a.env.SqsRequestQueueUrl == "" {
				return fmt.Errorf("SQS_REQUEST_QUEUE_URL is not set")
			}

			client, err := sqssrv.NewClient(ctx, a.env.AwsRegion)
			if err != nil {
				return err
			}
			srv := sqssrv.New(client, a.env.SqsRequestQueueUrl, a.tester, a.env.MaxConcurrent, a.log)
			return srv.Serve(ctx)
		},
	}
}
