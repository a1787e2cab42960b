package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// Notifier abstracts delivery of a resolution message to an end user.
//
// Send returns nil on success. Failures are wrapped with domain.Transient when
// the same call may succeed later (network errors, 429, 5xx) and with
// domain.Permanent when it will not (the provider rejected the request).
// Mocking this interface in tests gives full control over provider behaviour
// without making real HTTP calls.
type Notifier interface {
	Send(ctx context.Context, target, message string) error
}

// classifyResponse turns a non-2xx provider response into a classified error.
// A short excerpt of the body is kept for the logs.
func classifyResponse(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("%s: unexpected status %d: %s", provider, resp.StatusCode, string(excerpt))

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return domain.Transient(err)
	}
	return domain.Permanent(err)
}
