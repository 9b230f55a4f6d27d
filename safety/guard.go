// Package safety validates task payloads before they reach the queue.
// The coordinator consumes it through the Validator interface, so other
// validation subsystems (PII scanning, rate limiting) can be swapped in.
package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxPayloadBytes = 1 << 30   // 1 GiB
	DefaultMaxStringLen    = 100 << 20 // 100 MiB
)

// Guard enforces structural and size limits on submitted payloads.
type Guard struct {
	maxPayloadBytes int
	maxStringLen    int
	logger          zerolog.Logger
}

// Limits overrides the default payload bounds. Zero values keep defaults.
type Limits struct {
	MaxPayloadBytes int
	MaxStringLen    int
}

func NewGuard(limits Limits, logger zerolog.Logger) *Guard {
	g := &Guard{
		maxPayloadBytes: DefaultMaxPayloadBytes,
		maxStringLen:    DefaultMaxStringLen,
		logger:          logger.With().Str("component", "safety").Logger(),
	}
	if limits.MaxPayloadBytes > 0 {
		g.maxPayloadBytes = limits.MaxPayloadBytes
	}
	if limits.MaxStringLen > 0 {
		g.maxStringLen = limits.MaxStringLen
	}
	return g
}

// Init satisfies the coordinator's optional Initializer hook.
func (g *Guard) Init(ctx context.Context) error {
	g.logger.Info().Msg("safety guard ready")
	return nil
}

// Validate rejects nil, empty, oversized, or unencodable payloads and
// string values beyond the configured length.
func (g *Guard) Validate(payload map[string]any) error {
	if payload == nil {
		return fmt.Errorf("payload must not be nil")
	}
	if len(payload) == 0 {
		return fmt.Errorf("payload must not be empty")
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("payload not encodable: %w", err)
	}
	if len(encoded) > g.maxPayloadBytes {
		g.logger.Warn().Int("bytes", len(encoded)).Msg("payload too large")
		return fmt.Errorf("payload too large: %d bytes (max %d)", len(encoded), g.maxPayloadBytes)
	}

	for key, value := range payload {
		s, ok := value.(string)
		if !ok {
			continue
		}
		if len(s) > g.maxStringLen {
			return fmt.Errorf("field %q too long: %d bytes (max %d)", key, len(s), g.maxStringLen)
		}
	}
	return nil
}

// SanitizeString strips NUL bytes and enforces maxLength (0 means the
// guard's configured limit).
func (g *Guard) SanitizeString(value string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = g.maxStringLen
	}
	if len(value) > maxLength {
		return "", fmt.Errorf("string too long: %d bytes (max %d)", len(value), maxLength)
	}
	return strings.ReplaceAll(value, "\x00", ""), nil
}
