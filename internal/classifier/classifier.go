package classifier

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"group-lead-scraper-go/internal/config"
)

// Classifier asks a language model whether a post is a possible lead
type Classifier struct {
	chat    Completer
	retry   RetryOpts
	limiter *rate.Limiter
}

// New creates a Classifier over chat. A non-positive requestsPerSecond disables pacing.
func New(chat Completer, opts RetryOpts, requestsPerSecond float64) *Classifier {
	c := &Classifier{chat: chat, retry: opts}
	if requestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return c
}

// NewFromConfig builds a Classifier with an HTTP chat client
func NewFromConfig(cfg config.LLMConfig) *Classifier {
	chat := NewChatClient(cfg.APIBase, cfg.APIKey, cfg.Model, cfg.Timeout)
	return New(chat, RetryOpts{
		MaxAttempts: cfg.MaxAttempts,
		InitialWait: cfg.InitialWait,
		MaxWait:     cfg.MaxWait,
		Jitter:      true,
	}, cfg.RequestsPerSecond)
}

// Classify returns the verdict for text. Failed calls are retried up to the
// configured attempts; an unusable response fails immediately.
func (c *Classifier) Classify(ctx context.Context, text string) (*Verdict, error) {
	messages := Messages(text)

	var response string
	err := retry(ctx, c.retry, func(ctx context.Context, attempt int) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		out, err := c.chat.Complete(ctx, messages)
		if err != nil {
			logrus.Errorf("Error for language model (attempt %d/%d): %v", attempt, c.retry.MaxAttempts, err)
			return err
		}
		response = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	logrus.Debugf("Response text: %s", response)

	verdict, err := ParseVerdict(response)
	if err != nil {
		logrus.Errorf("Failed to parse model response: %v", err)
		return nil, err
	}
	logrus.Infof("Extracted verdict: relevant=%s category=%s", verdict.RelevantIntention, verdict.Category)
	return verdict, nil
}
