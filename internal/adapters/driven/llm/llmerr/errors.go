// Package llmerr classifies generator transport failures into the domain's
// retryable and non-retryable errors.
package llmerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// maxBodyInError bounds the response body quoted in error messages.
const maxBodyInError = 512

// Transport wraps an error returned by the HTTP client.
// Cancellation by the caller is returned unchanged.
func Transport(provider string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrGeneratorTimeout, provider, err)
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrGeneratorUnreachable, provider, err)
	}
}

// Status converts a non-2xx HTTP response into a classified error.
func Status(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBodyInError {
		msg = msg[:maxBodyInError] + "..."
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %s (status %d): %s",
			domain.ErrGeneratorUnreachable, domain.ErrRateLimited, provider, status, msg)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s (status %d): %s", domain.ErrGeneratorTimeout, provider, status, msg)
	case status >= 500:
		return fmt.Errorf("%w: %s (status %d): %s", domain.ErrGeneratorUnreachable, provider, status, msg)
	default:
		return fmt.Errorf("%w: %s (status %d): %s", domain.ErrGeneratorRejected, provider, status, msg)
	}
}

// Decode wraps a malformed response body. The generator answered, so the
// request is not retried.
func Decode(provider string, err error) error {
	return fmt.Errorf("%w: %s: decode response: %w", domain.ErrGeneratorRejected, provider, err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
