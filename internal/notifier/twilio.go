package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// TwilioNotifier sends SMS through the Twilio Messages REST API.
type TwilioNotifier struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
}

func NewTwilioNotifier(baseURL, accountSID, authToken, from string, timeout time.Duration) *TwilioNotifier {
	return &TwilioNotifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send creates one outbound message. Twilio answers 201 Created on success.
func (n *TwilioNotifier) Send(ctx context.Context, target, message string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", n.baseURL, url.PathEscape(n.accountSID))

	form := url.Values{}
	form.Set("From", n.from)
	form.Set("To", target)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Permanent(fmt.Errorf("twilio: create request: %w", err))
	}
	req.SetBasicAuth(n.accountSID, n.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return domain.Transient(fmt.Errorf("twilio: send request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	return classifyResponse("twilio", resp)
}

var _ Notifier = (*TwilioNotifier)(nil)
