package telephony

import (
	"github.com/jordanlanch/ironoak/pkg/domain"
	twilioclient "github.com/twilio/twilio-go/client"
)

// SignatureHeader carries Twilio's HMAC over the public URL and form params
const SignatureHeader = "X-Twilio-Signature"

// Validator checks X-Twilio-Signature against the public URL of each webhook.
// The URL is rebuilt from the configured base URL because the service sits
// behind a proxy and never sees the scheme and host Twilio signed.
type Validator struct {
	rv      twilioclient.RequestValidator
	baseURL string
	enabled bool
}

// NewValidator creates a validator. When enabled is false every request passes,
// which is only meant for local development.
func NewValidator(authToken, baseURL string, enabled bool) *Validator {
	return &Validator{
		rv:      twilioclient.NewRequestValidator(authToken),
		baseURL: baseURL,
		enabled: enabled,
	}
}

// Validate returns an Unauthorized domain error when signature does not match
func (v *Validator) Validate(path string, params map[string]string, signature string) error {
	if !v.enabled {
		return nil
	}
	if signature == "" {
		return domain.NewUnauthorizedError("missing Twilio signature")
	}
	if !v.rv.Validate(v.baseURL+path, params, signature) {
		return domain.NewUnauthorizedError("invalid Twilio signature")
	}
	return nil
}
