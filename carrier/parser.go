package carrier

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-carrier-sync/core"
)

// ParseStep turns one composite response body into a step outcome. The outer
// HTTP call already succeeded when this runs; everything here is about what the
// carrier said inside the envelope. An embedded business failure or a missing
// identifier is a failed outcome, never a Go error.
func ParseStep(step core.SyncStep, body []byte) core.StepOutcome {
	outcome := core.StepOutcome{Step: step}

	var envelope CompositeResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		outcome.Error = fmt.Sprintf("unparseable composite envelope: %v", err)
		return outcome
	}
	if len(envelope.Responses) == 0 {
		// Some failure modes skip the envelope entirely and answer with a
		// top-level error object.
		if message := embeddedFailureMessage(body); message != "" {
			outcome.Error = message
			return outcome
		}
		outcome.Error = "composite envelope contained no responses"
		return outcome
	}

	sub := envelope.Responses[0]
	if sub.Status != 0 && (sub.Status < 200 || sub.Status > 299) {
		outcome.Error = subResponseFailureMessage(sub)
		return outcome
	}
	if message := embeddedFailureMessage(sub.Body); message != "" {
		outcome.Error = message
		return outcome
	}

	attributes, err := subResponseAttributes(sub.Body)
	if err != nil {
		if step == core.StepAccount || step == core.StepSubmission {
			// Identifier-producing steps cannot succeed without a parseable
			// body; everything else only needs a clean sub-response status.
			outcome.Error = err.Error()
			return outcome
		}
		outcome.Succeeded = true
		return outcome
	}

	switch step {
	case core.StepAccount:
		remoteID := attributeString(attributes, "id")
		number := attributeString(attributes, "accountNumber")
		if remoteID == "" || number == "" {
			outcome.Error = "account response missing id or accountNumber"
			return outcome
		}
		outcome.Identifiers = core.EntityIdentifiers{RemoteID: remoteID, Number: number}
	case core.StepSubmission:
		remoteID := attributeString(attributes, "id")
		number := attributeString(attributes, "jobNumber")
		if remoteID == "" || number == "" {
			outcome.Error = "submission response missing id or jobNumber"
			return outcome
		}
		outcome.Identifiers = core.EntityIdentifiers{RemoteID: remoteID, Number: number}
	case core.StepQuote:
		outcome.Quote = parseQuoteSummary(attributes)
	}

	outcome.Succeeded = true
	return outcome
}

func subResponseAttributes(body json.RawMessage) (map[string]any, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("sub-response has no body")
	}
	var decoded struct {
		Data struct {
			Attributes map[string]any `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unparseable sub-response body: %v", err)
	}
	if len(decoded.Data.Attributes) == 0 {
		return nil, fmt.Errorf("sub-response carried no attributes")
	}
	return decoded.Data.Attributes, nil
}

// embeddedFailureMessage detects business failures hidden inside successful
// HTTP envelopes: {"success": false, ...} wrappers and bare error/message
// objects. Returns the carrier's message verbatim, or "" when the payload does
// not look like a failure.
func embeddedFailureMessage(body json.RawMessage) string {
	if len(body) == 0 {
		return ""
	}
	var probe struct {
		Success *bool  `json:"success"`
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	failed := probe.Success != nil && !*probe.Success
	if !failed && probe.Error == nil {
		return ""
	}
	if message := strings.TrimSpace(probe.Message); message != "" {
		return message
	}
	if probe.Error != nil {
		if text := strings.TrimSpace(fmt.Sprint(probe.Error)); text != "" && text != "<nil>" {
			return text
		}
	}
	return "carrier reported failure without a message"
}

func subResponseFailureMessage(sub CompositeSubResponse) string {
	if message := embeddedFailureMessage(sub.Body); message != "" {
		return fmt.Sprintf("carrier step returned status %d: %s", sub.Status, message)
	}
	return fmt.Sprintf("carrier step returned status %d", sub.Status)
}

func attributeString(attributes map[string]any, key string) string {
	value, ok := attributes[key]
	if !ok || value == nil {
		return ""
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	if text == "<nil>" {
		return ""
	}
	return text
}

func parseQuoteSummary(attributes map[string]any) *core.QuoteSummary {
	summary := &core.QuoteSummary{
		TotalPremium: attributeMoney(attributes, "totalPremium"),
		TotalCost:    attributeMoney(attributes, "totalCost"),
		RateAsOfDate: attributeString(attributes, "rateAsOfDate"),
	}
	if status, ok := attributes["jobStatus"].(map[string]any); ok {
		summary.JobStatus = strings.TrimSpace(fmt.Sprint(status["code"]))
	} else {
		summary.JobStatus = attributeString(attributes, "jobStatus")
	}
	return summary
}

func attributeMoney(attributes map[string]any, key string) core.Money {
	raw, ok := attributes[key].(map[string]any)
	if !ok {
		return core.Money{}
	}
	money := core.Money{
		Currency: strings.TrimSpace(fmt.Sprint(raw["currency"])),
	}
	if money.Currency == "<nil>" {
		money.Currency = ""
	}
	switch amount := raw["amount"].(type) {
	case float64:
		money.Amount = amount
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(amount), 64); err == nil {
			money.Amount = parsed
		}
	}
	return money
}
