// Package classify turns a failed provider call into a failure class and an
// optional retry delay. Classification is a pure function of the HTTP status
// code and the response body.
package classify

import (
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/davidbz/llmrelay/internal/cooldown"
)

// Class is the failure category of a provider response.
type Class int

const (
	Generic Class = iota
	RateLimited
	QuotaExhausted
	Billing
	InvalidCredential
)

func (c Class) String() string {
	switch c {
	case RateLimited:
		return "rate_limited"
	case QuotaExhausted:
		return "quota_exhausted"
	case Billing:
		return "billing"
	case InvalidCredential:
		return "invalid_credential"
	default:
		return "generic"
	}
}

// Reason maps the class onto the cooldown reason it produces.
func (c Class) Reason() cooldown.Reason {
	switch c {
	case RateLimited:
		return cooldown.ReasonRateLimited
	case QuotaExhausted:
		return cooldown.ReasonQuotaExhausted
	case Billing:
		return cooldown.ReasonBilling
	default:
		return cooldown.ReasonGeneric
	}
}

// Outcome is the result of classifying one failure.
type Outcome struct {
	Class    Class
	Delay    time.Duration
	HasDelay bool
}

// Patterns holds the regular expressions matched against response bodies.
// Matching is case-insensitive.
type Patterns struct {
	Billing           []string
	QuotaExhausted    []string
	InvalidCredential []string
	PermissionDenied  []string
	RateLimited       []string
	RetryDelay        []string
}

// DefaultPatterns returns the built-in pattern set covering Gemini, Anthropic
// and OpenAI error bodies.
func DefaultPatterns() Patterns {
	return Patterns{
		Billing: []string{
			`credit balance (is )?too low`,
			`insufficient[ _](funds|balance|credits?)`,
			`insufficient_quota`,
			`payment required`,
			`billing_hard_limit`,
			`billing (is )?not (enabled|active)`,
		},
		QuotaExhausted: []string{
			`\blimit["']?\s*:\s*["']?0\b`,
			`quotaValue["']?\s*:\s*["']?0\b`,
			`quota (has been )?exhausted`,
			`daily (quota|limit)`,
			`per ?day`,
		},
		InvalidCredential: []string{
			`API_KEY_INVALID`,
			`api key not valid`,
			`invalid[ _-]?(x-)?api[ _-]?key`,
			`incorrect api key`,
			`authentication_error`,
			`api key (has been )?(revoked|expired)`,
			`malformed api key`,
		},
		PermissionDenied: []string{
			`permission[ _]denied`,
			`PERMISSION_DENIED`,
		},
		RateLimited: []string{
			`rate[ _-]?limit`,
			`too many requests`,
			`RESOURCE_EXHAUSTED`,
		},
		RetryDelay: []string{
			`retry (?:in|after) (\d+(?:\.\d+)?)\s*(?:s|sec|secs|seconds)\b`,
			`retryDelay["']?\s*:\s*["']?(\d+(?:\.\d+)?)s`,
		},
	}
}

// Classifier classifies provider failures against a compiled pattern set.
type Classifier struct {
	billing           []*regexp.Regexp
	quotaExhausted    []*regexp.Regexp
	invalidCredential []*regexp.Regexp
	permissionDenied  []*regexp.Regexp
	rateLimited       []*regexp.Regexp
	retryDelay        []*regexp.Regexp
}

// New compiles p into a Classifier.
func New(p Patterns) (*Classifier, error) {
	var (
		c   Classifier
		err error
	)

	groups := []struct {
		name string
		src  []string
		dst  *[]*regexp.Regexp
	}{
		{"billing", p.Billing, &c.billing},
		{"quota exhausted", p.QuotaExhausted, &c.quotaExhausted},
		{"invalid credential", p.InvalidCredential, &c.invalidCredential},
		{"permission denied", p.PermissionDenied, &c.permissionDenied},
		{"rate limited", p.RateLimited, &c.rateLimited},
		{"retry delay", p.RetryDelay, &c.retryDelay},
	}

	for _, g := range groups {
		*g.dst, err = compileAll(g.src)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern: %w", g.name, err)
		}
	}

	return &c, nil
}

// MustNew is New that panics on an invalid pattern.
func MustNew(p Patterns) *Classifier {
	c, err := New(p)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns a Classifier over DefaultPatterns.
func Default() *Classifier {
	return defaultClassifier
}

var defaultClassifier = MustNew(DefaultPatterns())

// Classify applies the checks in order Billing, QuotaExhausted,
// InvalidCredential, RateLimited and falls back to Generic. Any parsed retry
// delay is reported regardless of class.
func (c *Classifier) Classify(statusCode int, body string) Outcome {
	delay, hasDelay := c.ParseRetryDelay(body)
	out := Outcome{Delay: delay, HasDelay: hasDelay}

	switch {
	case statusCode == http.StatusPaymentRequired || matchAny(c.billing, body):
		out.Class = Billing
	case matchAny(c.quotaExhausted, body):
		out.Class = QuotaExhausted
	case statusCode == http.StatusUnauthorized ||
		matchAny(c.invalidCredential, body) ||
		(statusCode == http.StatusForbidden && matchAny(c.permissionDenied, body)):
		out.Class = InvalidCredential
	case statusCode == http.StatusTooManyRequests || matchAny(c.rateLimited, body) || hasDelay:
		out.Class = RateLimited
	default:
		out.Class = Generic
	}

	return out
}

// ParseRetryDelay extracts a server-suggested delay such as
// "Please retry in 18.36s" or "'retryDelay': '14s'". Delays beyond the
// Duration range are capped; a zero delay means retry now.
func (c *Classifier) ParseRetryDelay(body string) (time.Duration, bool) {
	for _, re := range c.retryDelay {
		m := re.FindStringSubmatch(body)
		if len(m) < 2 {
			continue
		}
		seconds, err := strconv.ParseFloat(m[1], 64)
		if err != nil || seconds < 0 {
			continue
		}
		nanos := seconds * float64(time.Second)
		if nanos >= math.MaxInt64 {
			return time.Duration(math.MaxInt64), true
		}
		return time.Duration(nanos), true
	}
	return 0, false
}

// Classify uses the default pattern set.
func Classify(statusCode int, body string) Outcome {
	return defaultClassifier.Classify(statusCode, body)
}

// ParseRetryDelay uses the default pattern set.
func ParseRetryDelay(body string) (time.Duration, bool) {
	return defaultClassifier.ParseRetryDelay(body)
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(patterns []*regexp.Regexp, body string) bool {
	for _, re := range patterns {
		if re.MatchString(body) {
			return true
		}
	}
	return false
}
