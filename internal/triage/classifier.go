package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/careloop/frontdesk/pkg/logging"
)

// Source records which path produced a classification.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Result is a classification outcome. Source distinguishes the degraded
// keyword path from a model answer so callers and tests can observe it.
type Result struct {
	Specialization Specialization
	Source         Source
}

const classifierPrompt = "You are a hospital assistant. Map the following short patient problem to one " +
	"of these specializations: Cardiology, Orthopedics, General Medicine, Dermatology, " +
	"ENT, Gynecology, Pediatrics. Reply with only the specialization name.\n\n" +
	"Problem: %s\n\nSpecialization:"

// Classifier maps complaints to specializations, preferring the configured
// LLM and degrading to the keyword table. Classify never returns an error:
// an unreachable or incoherent model must not destabilize the booking flow.
type Classifier struct {
	llm     LLMClient
	cache   *Cache
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

// ClassifierConfig holds the explicit settings for a Classifier. No ambient
// lookups: the caller decides which model (if any) is in play.
type ClassifierConfig struct {
	Model   string
	Timeout time.Duration
}

// NewClassifier builds a classifier. llm and cache may both be nil, in which
// case every complaint goes through the keyword fallback.
func NewClassifier(llm LLMClient, cache *Cache, cfg ClassifierConfig, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Classifier{
		llm:     llm,
		cache:   cache,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Classify maps a complaint to a specialization.
func (c *Classifier) Classify(ctx context.Context, complaint string) Result {
	complaint = strings.TrimSpace(complaint)
	if complaint == "" || c.llm == nil {
		return Result{Specialization: FallbackClassify(complaint), Source: SourceFallback}
	}

	if c.cache != nil {
		if spec, ok := c.cache.Get(ctx, complaint); ok {
			return Result{Specialization: spec, Source: SourceCache}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.llm.Complete(ctx, LLMRequest{
		Model:     c.model,
		Prompt:    fmt.Sprintf(classifierPrompt, complaint),
		MaxTokens: 16,
	})
	if err != nil {
		c.logger.Warn("classifier unavailable, using keyword fallback", "error", err)
		return Result{Specialization: FallbackClassify(complaint), Source: SourceFallback}
	}

	spec, ok := MatchReply(resp.Text)
	if !ok {
		c.logger.Warn("classifier reply unrecognized, using keyword fallback", "reply", resp.Text)
		return Result{Specialization: FallbackClassify(complaint), Source: SourceFallback}
	}

	if c.cache != nil {
		c.cache.Put(ctx, complaint, spec)
	}
	return Result{Specialization: spec, Source: SourceLLM}
}
