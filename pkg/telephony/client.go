// Package telephony sends SMS and places calls through Twilio, validates
// Twilio webhook signatures and renders the small TwiML documents the voice
// webhook answers with.
package telephony

import (
	"context"
	"errors"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// StatusCallbackEvents are the call lifecycle events Twilio reports back
var StatusCallbackEvents = []string{"initiated", "ringing", "answered", "completed"}

// CallRequest describes an outbound call
type CallRequest struct {
	To             string
	URL            string
	StatusCallback string
}

// Client is the Notification Gateway backed by the Twilio REST API
type Client struct {
	rest *twilio.RestClient
	from string
}

// NewClient creates a Twilio client sending from the given number
func NewClient(accountSID, authToken, from string) *Client {
	return &Client{
		rest: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// From returns the provider number used as sender
func (c *Client) From() string {
	return c.from
}

// SendSMS sends body to the canonical phone number and returns the message SID
func (c *Client) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	msg, err := c.rest.Api.CreateMessage(params)
	if err != nil {
		return "", domain.NewGatewayError("twilio", err)
	}
	if msg.Sid == nil {
		return "", domain.NewGatewayError("twilio", errors.New("message created without sid"))
	}
	return *msg.Sid, nil
}

// PlaceCall starts an outbound call and returns the call SID
func (c *Client) PlaceCall(ctx context.Context, req CallRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(c.from)
	params.SetUrl(req.URL)
	params.SetStatusCallback(req.StatusCallback)
	params.SetStatusCallbackEvent(StatusCallbackEvents)
	params.SetStatusCallbackMethod("POST")

	call, err := c.rest.Api.CreateCall(params)
	if err != nil {
		return "", domain.NewGatewayError("twilio", err)
	}
	if call.Sid == nil {
		return "", domain.NewGatewayError("twilio", errors.New("call created without sid"))
	}
	return *call.Sid, nil
}
