package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
)

// EnvConfig holds the deployment settings read from the environment.
type EnvConfig struct {
	NatsUrl     string
	NatsSubject string
	NatsQueue   string

	SqsRequestQueueUrl string
	AwsRegion          string

	MaxConcurrent int
	LogLevel      string
}

// ReadEnvConfig loads an optional .env file and reads the environment.
// Variables already set in the environment win over the file.
func ReadEnvConfig() (*EnvConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	result := &EnvConfig{
		NatsUrl:            getenv("NATS_URL", nats.DefaultURL),
		NatsSubject:        getenv("NATS_SUBJECT", "trainer.exec"),
		NatsQueue:          getenv("NATS_QUEUE", "trainer"),
		SqsRequestQueueUrl: os.Getenv("SQS_REQUEST_QUEUE_URL"),
		AwsRegion:          getenv("AWS_REGION", "eu-central-1"),
		MaxConcurrent:      runtime.NumCPU(),
		LogLevel:           getenv("LOG_LEVEL", "info"),
	}

	if v := os.Getenv("MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_CONCURRENT must be a positive integer, got %q", v)
		}
		result.MaxConcurrent = n
	}

	return result, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
