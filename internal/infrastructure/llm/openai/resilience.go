package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "openai status error"
	}
	if e.Body == "" {
		return fmt.Sprintf("openai %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("openai %s status: %s: %s", e.Operation, e.Status, e.Body)
}

// isRateLimit treats both the canonical 429 and rate-limit-shaped error
// messages as rate limiting. Some compatible providers return limit errors
// under other status codes with "rate limit" or "quota" in the body.
func isRateLimit(statusErr *HTTPStatusError) bool {
	if statusErr.StatusCode == 429 {
		return true
	}
	body := strings.ToLower(statusErr.Body)
	return strings.Contains(body, "rate limit") || strings.Contains(body, "quota")
}

// classifyChatError retries rate limiting only. Auth, validation, and
// provider bugs fail on the first attempt; retrying them wastes the
// caller's request deadline without changing the outcome.
func classifyChatError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if domain.IsKind(err, domain.ErrRateLimited) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
