package handler

import (
	"encoding/xml"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/GodofWar9000/tele-triage/internal/api/middleware"
	"github.com/GodofWar9000/tele-triage/internal/service"
)

// Sent when the reply cannot be computed. Internal error detail never
// reaches the user.
const smsFallbackReply = "Sorry, we could not process your message. Please try again in a few minutes."

// twiml is the minimal TwiML document Twilio expects from a messaging
// webhook: <Response><Message>text</Message></Response>.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// SMSHandler receives inbound text messages from the SMS provider.
type SMSHandler struct {
	svc    *service.TriageService
	logger *zap.Logger
}

func NewSMSHandler(svc *service.TriageService, logger *zap.Logger) *SMSHandler {
	return &SMSHandler{svc: svc, logger: logger}
}

// Inbound handles POST /sms
//
// The provider posts a form with From and Body; the reply is returned as
// TwiML and delivered to the sender by the provider.
func (h *SMSHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	from := r.PostFormValue("From")
	if from == "" {
		respondError(w, http.StatusBadRequest, "From is required")
		return
	}

	reply, err := h.svc.HandleInbound(r.Context(), from, r.PostFormValue("Body"))
	if err != nil {
		h.logger.Error("inbound sms failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		reply = smsFallbackReply
	}
	respondTwiML(w, reply)
}

func respondTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twiml{Message: message})
}
