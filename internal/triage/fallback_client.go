package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/careloop/frontdesk/pkg/logging"
)

// FallbackLLMClient chains two classification providers: the secondary is
// consulted only when the primary errors. Errors from the chain are advisory;
// the classifier degrades to the keyword table when both providers are down,
// so nothing here should ever abort a booking.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackLLMClient builds the provider chain. A nil fallback leaves the
// primary on its own.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Complete asks the primary provider, then the fallback. When both fail the
// joined error is returned so the caller can log one degraded-mode cause.
func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	if c.fallback == nil {
		c.logger.Warn("classifier provider failed, no fallback configured", "error", err.Error())
		return LLMResponse{}, fmt.Errorf("triage: provider failed: %w", err)
	}

	c.logger.Warn("classifier primary provider failed, trying fallback", "error", err.Error())

	resp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("classifier fallback provider also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return LLMResponse{}, fmt.Errorf("triage: all providers failed: %w", errors.Join(err, fallbackErr))
	}

	c.logger.Info("classifier fallback provider answered after primary failure")
	return resp, nil
}

var _ LLMClient = (*FallbackLLMClient)(nil)
