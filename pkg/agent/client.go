// Package agent registers Twilio calls with the conversational voice agent and
// returns the TwiML it generates.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
)

// CallContext is what the agent knows about the caller when the call connects
type CallContext struct {
	FromNumber     string
	ToNumber       string
	Inbound        bool
	FirstName      string
	CallerPhone    string
	NeedsInfo      bool
	CourseDates    string
	CourseTime     string
	CourseLocation string
}

type registerRequest struct {
	AgentID                          string         `json:"agent_id"`
	FromNumber                       string         `json:"from_number"`
	ToNumber                         string         `json:"to_number"`
	Direction                        string         `json:"direction"`
	ConversationInitiationClientData initiationData `json:"conversation_initiation_client_data"`
}

type initiationData struct {
	DynamicVariables map[string]string `json:"dynamic_variables"`
}

// Client calls the agent's register-call endpoint
type Client struct {
	endpoint   string
	apiKey     string
	agentID    string
	httpClient *http.Client
}

// NewClient creates a new agent client
func NewClient(endpoint, apiKey, agentID string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		agentID:  agentID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RegisterCall hands the call to the agent and returns its TwiML unchanged
func (c *Client) RegisterCall(ctx context.Context, call CallContext) (string, error) {
	direction := "outbound"
	if call.Inbound {
		direction = "inbound"
	}

	payload, err := json.Marshal(registerRequest{
		AgentID:    c.agentID,
		FromNumber: call.FromNumber,
		ToNumber:   call.ToNumber,
		Direction:  direction,
		ConversationInitiationClientData: initiationData{
			DynamicVariables: map[string]string{
				"firstName":      call.FirstName,
				"callerPhone":    call.CallerPhone,
				"isInbound":      strconv.FormatBool(call.Inbound),
				"needsInfo":      strconv.FormatBool(call.NeedsInfo),
				"courseDates":    call.CourseDates,
				"courseTime":     call.CourseTime,
				"courseLocation": call.CourseLocation,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewGatewayError("agent", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewGatewayError("agent", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.NewGatewayError("agent", fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	return string(body), nil
}
