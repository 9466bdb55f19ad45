package notify

import (
	"context"

	"github.com/careloop/frontdesk/pkg/logging"
)

// CallDialer places pre-visit reminder calls. Only a logging placeholder
// exists; telephony integration is out of scope.
type CallDialer interface {
	Dial(ctx context.Context, phone, message string) error
}

// LogCallDialer records the call that would have been placed.
type LogCallDialer struct {
	logger *logging.Logger
}

// NewLogCallDialer creates the logging placeholder dialer.
func NewLogCallDialer(logger *logging.Logger) *LogCallDialer {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogCallDialer{logger: logger}
}

// Dial logs the outbound call instead of placing it.
func (d *LogCallDialer) Dial(ctx context.Context, phone, message string) error {
	d.logger.Info("call dialer: would place call", "phone", phone)
	return nil
}

var _ CallDialer = (*LogCallDialer)(nil)
