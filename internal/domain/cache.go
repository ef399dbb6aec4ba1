package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// ResponseCache stores successful results keyed by request content.
type ResponseCache interface {
	// Get returns the cached result for req or ErrCacheMiss.
	Get(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// Set stores res for req with the given ttl.
	Set(ctx context.Context, req *GenerateRequest, res *GenerateResult, ttl time.Duration) error
}

// CacheKey derives a stable key from the parts of a request that influence
// the answer.
func CacheKey(prefix string, req *GenerateRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Prompt))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(req.MaxTokens)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(req.Temperature, 'f', -1, 64)))

	return fmt.Sprintf("%s%s", prefix, hex.EncodeToString(h.Sum(nil)))
}
