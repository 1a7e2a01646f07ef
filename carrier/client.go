package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-carrier-sync/core"
)

// Client drives the carrier's composite API one workflow step at a time. Each
// step is its own composite POST so that partial progress is observable and
// identifiers from completed steps can be injected explicitly on resume.
type Client struct {
	adapter      core.TransportAdapter
	baseURL      string
	endpoint     string
	auth         core.BasicAuth
	timeout      time.Duration
	logger       core.Logger
	now          func() time.Time
	uniqueSuffix func() string
}

type ClientOption func(*Client)

func WithClientLogger(logger core.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithUniqueNameSuffix overrides the company-name disambiguation suffix, used
// by tests to make account payloads deterministic.
func WithUniqueNameSuffix(suffix func() string) ClientOption {
	return func(c *Client) {
		if suffix != nil {
			c.uniqueSuffix = suffix
		}
	}
}

func NewClient(adapter core.TransportAdapter, cfg core.CarrierConfig, options ...ClientOption) (*Client, error) {
	if adapter == nil {
		return nil, fmt.Errorf("carrier: transport adapter is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("carrier: base url is required")
	}
	endpoint := strings.TrimSpace(cfg.CompositeEndpoint)
	if endpoint == "" {
		endpoint = "/composite/v1/composite"
	}

	client := &Client{
		adapter:  adapter,
		baseURL:  baseURL,
		endpoint: endpoint,
		auth:     core.BasicAuth{Username: cfg.Username, Password: cfg.Password},
		timeout:  cfg.Timeout,
		now:      func() time.Time { return time.Now().UTC() },
		uniqueSuffix: func() string {
			return fmt.Sprintf("%06d", rand.Intn(1_000_000))
		},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// SendStep builds, sends, and parses one workflow step. Prior-step identifiers
// come from the workflow record, never from ambient state.
func (c *Client) SendStep(ctx context.Context, workflow *core.SubmissionWorkflow, fields core.FieldMap, step core.SyncStep) (core.StepOutcome, error) {
	call, err := c.buildCall(workflow, fields, step)
	if err != nil {
		return core.StepOutcome{}, err
	}

	response, err := c.submit(ctx, CompositeRequest{Requests: []CompositeCall{call}})
	if err != nil {
		return core.StepOutcome{}, err
	}

	outcome := ParseStep(step, response)
	core.LogWithLevel(ctx, c.logger, "info", "carrier step executed", map[string]any{
		"step":      string(step),
		"succeeded": outcome.Succeeded,
		"work_item": workflow.WorkItemRef.String(),
	})
	return outcome, nil
}

func (c *Client) buildCall(workflow *core.SubmissionWorkflow, fields core.FieldMap, step core.SyncStep) (CompositeCall, error) {
	switch step {
	case core.StepAccount:
		return buildAccountCall(fields, c.uniqueSuffix()), nil
	case core.StepSubmission:
		account, ok := workflow.IdentifiersFor(core.StepAccount)
		if !ok {
			return CompositeCall{}, fmt.Errorf("carrier: submission step requires a recorded account id")
		}
		return buildSubmissionCall(account.RemoteID, fields, c.now()), nil
	case core.StepCoverage:
		job, ok := workflow.IdentifiersFor(core.StepSubmission)
		if !ok {
			return CompositeCall{}, fmt.Errorf("carrier: coverage step requires a recorded job id")
		}
		return buildCoverageCall(job.RemoteID, fields), nil
	case core.StepLineDetails:
		job, ok := workflow.IdentifiersFor(core.StepSubmission)
		if !ok {
			return CompositeCall{}, fmt.Errorf("carrier: line details step requires a recorded job id")
		}
		return buildLineDetailsCall(job.RemoteID, fields, c.now()), nil
	case core.StepQuote:
		job, ok := workflow.IdentifiersFor(core.StepSubmission)
		if !ok {
			return CompositeCall{}, fmt.Errorf("carrier: quote step requires a recorded job id")
		}
		return buildQuoteCall(job.RemoteID), nil
	default:
		return CompositeCall{}, fmt.Errorf("carrier: unknown step %q", step)
	}
}

// Ping verifies connectivity and credentials with a cheap read-only probe.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.submit(ctx, CompositeRequest{Requests: []CompositeCall{buildPingCall()}})
	if err != nil {
		return err
	}
	var envelope CompositeResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return core.ParseError("carrier ping returned an unparseable envelope", map[string]any{
			"body_bytes": len(body),
		})
	}
	if len(envelope.Responses) == 0 {
		return core.ParseError("carrier ping returned no responses", nil)
	}
	if status := envelope.Responses[0].Status; status < 200 || status > 299 {
		return core.BusinessRejection(fmt.Sprintf("carrier ping failed with status %d", status), map[string]any{
			"status": status,
		})
	}
	return nil
}

func (c *Client) submit(ctx context.Context, envelope CompositeRequest) ([]byte, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("carrier: encode composite request: %w", err)
	}

	response, err := c.adapter.Do(ctx, core.TransportRequest{
		Method:  http.MethodPost,
		URL:     c.baseURL + c.endpoint,
		Body:    payload,
		Timeout: c.timeout,
		Auth:    c.auth,
	})
	if err != nil {
		return nil, err
	}

	// A non-2xx outer status means the composite envelope itself was rejected.
	// 5xx never reached application logic and stays retryable; 4xx is on us.
	if response.StatusCode >= 500 {
		return nil, core.TransportError(nil,
			fmt.Sprintf("carrier composite endpoint returned status %d", response.StatusCode),
			response.StatusCode,
			map[string]any{"status_code": response.StatusCode},
		)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, core.BusinessRejection(
			fmt.Sprintf("carrier rejected composite request with status %d: %s",
				response.StatusCode, truncateBody(response.Body, 512)),
			map[string]any{"status_code": response.StatusCode},
		)
	}
	return response.Body, nil
}

func truncateBody(body []byte, limit int) string {
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

var _ core.StepSender = (*Client)(nil)
