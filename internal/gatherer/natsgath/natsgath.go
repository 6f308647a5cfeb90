package natsgath

import (
	"log/slog"

	"github.com/programme-lv/trainer/internal/gatherer"
)

// Publisher is the part of *nats.Conn used to stream responses.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// New creates a gatherer that streams responses to the given inbox subject.
func New(nc Publisher, evalUuid string, inbox string, logger *slog.Logger) *gatherer.Stream {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "natsgath", "inbox", inbox)
	return gatherer.NewStream(evalUuid, func(payload []byte) error {
		return nc.Publish(inbox, payload)
	}, logger)
}
