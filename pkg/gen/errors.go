package gen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FailureClass buckets provider errors for failover decisions and stats.
type FailureClass string

const (
	FailureCredentialInvalid FailureClass = "credential_invalid"
	FailureAuthExpired       FailureClass = "auth_expired"
	FailureRateLimited       FailureClass = "rate_limited"
	FailureQuotaExceeded     FailureClass = "quota_exceeded"
	FailureTimeout           FailureClass = "timeout"
	FailureQualityGate       FailureClass = "quality_gate"
	FailureProvider          FailureClass = "provider_error"
)

// ErrQualityGate marks output that came back but was too thin to use.
var ErrQualityGate = errors.New("output below quality threshold")

// ErrUnsupported is returned by adapters asked for a capability they do not
// serve. The registry prevents this in normal operation.
var ErrUnsupported = errors.New("capability not supported by provider")

// APIError is a normalized vendor error. Adapters translate wire-level
// failures into this so the router can classify without knowing vendor
// response shapes.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Classify maps an adapter error onto the failure taxonomy.
// Status codes win over message heuristics; the string matching mirrors the
// shapes the vendors actually emit.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureProvider
	}
	if errors.Is(err, ErrQualityGate) {
		return FailureQualityGate
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		switch apiErr.StatusCode {
		case 401:
			return FailureCredentialInvalid
		case 403:
			if containsAny(strings.ToLower(apiErr.Message), "expired", "revoked") {
				return FailureAuthExpired
			}
			return FailureCredentialInvalid
		case 429:
			if containsAny(strings.ToLower(apiErr.Message), "quota", "billing", "exceeded your current") {
				return FailureQuotaExceeded
			}
			return FailureRateLimited
		case 402:
			return FailureQuotaExceeded
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "expired token", "token expired", "token has expired", "credential expired", "expired api key"):
		return FailureAuthExpired
	case containsAny(msg, "401", "403", "unauthorized", "forbidden", "invalid_api_key", "invalid api key", "api key not valid"):
		return FailureCredentialInvalid
	case containsAny(msg, "quota", "billing", "insufficient_quota", "credits"):
		return FailureQuotaExceeded
	case containsAny(msg, "429", "rate limit", "too many requests", "resource_exhausted"):
		return FailureRateLimited
	case containsAny(msg, "timeout", "deadline exceeded", "timed out"):
		return FailureTimeout
	}
	return FailureProvider
}

// Unrecoverable reports whether a failure class should trip the circuit
// breaker immediately. Rate limits and timeouts are transient; bad
// credentials will not fix themselves mid-session.
func (c FailureClass) Unrecoverable() bool {
	return c == FailureCredentialInvalid || c == FailureAuthExpired
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
