package carrier

import (
	"testing"

	"github.com/goliatone/go-carrier-sync/core"
)

func TestParseStepAccountSuccess(t *testing.T) {
	body := []byte(`{
		"responses": [
			{
				"status": 200,
				"body": {
					"data": {
						"attributes": {
							"id": "pc:SNletr6mHRyeDnhgpuPE-",
							"accountNumber": "2332505940",
							"accountStatus": {"code": "Draft"}
						}
					}
				}
			}
		]
	}`)

	outcome := ParseStep(core.StepAccount, body)
	if !outcome.Succeeded {
		t.Fatalf("expected success, got error %q", outcome.Error)
	}
	if outcome.Identifiers.RemoteID != "pc:SNletr6mHRyeDnhgpuPE-" {
		t.Fatalf("remote id = %q", outcome.Identifiers.RemoteID)
	}
	if outcome.Identifiers.Number != "2332505940" {
		t.Fatalf("account number = %q", outcome.Identifiers.Number)
	}
}

func TestParseStepEmbeddedFailureInsideHTTP200(t *testing.T) {
	// The outer call succeeded; the carrier reported the failure inside the
	// envelope. This must parse as a failed outcome, not a success.
	body := []byte(`{
		"responses": [
			{
				"status": 200,
				"body": {
					"success": false,
					"error": "ValidationError",
					"message": "producer code is not licensed in base state"
				}
			}
		]
	}`)

	outcome := ParseStep(core.StepSubmission, body)
	if outcome.Succeeded {
		t.Fatalf("embedded failure must not succeed")
	}
	if outcome.Error != "producer code is not licensed in base state" {
		t.Fatalf("error = %q, want the embedded message verbatim", outcome.Error)
	}
}

func TestParseStepTopLevelFailureObject(t *testing.T) {
	body := []byte(`{"success": false, "error": "Timeout", "message": "Request timed out after 30 seconds"}`)

	outcome := ParseStep(core.StepAccount, body)
	if outcome.Succeeded {
		t.Fatalf("top-level failure must not succeed")
	}
	if outcome.Error != "Request timed out after 30 seconds" {
		t.Fatalf("error = %q", outcome.Error)
	}
}

func TestParseStepNonSuccessSubStatus(t *testing.T) {
	body := []byte(`{
		"responses": [
			{
				"status": 422,
				"body": {"message": "state code is invalid"}
			}
		]
	}`)

	outcome := ParseStep(core.StepAccount, body)
	if outcome.Succeeded {
		t.Fatalf("422 sub-response must not succeed")
	}
	if outcome.Error != "carrier step returned status 422: state code is invalid" {
		t.Fatalf("error = %q", outcome.Error)
	}
}

func TestParseStepMissingIdentifierIsFailure(t *testing.T) {
	body := []byte(`{
		"responses": [
			{
				"status": 200,
				"body": {"data": {"attributes": {"id": "pc:abc"}}}
			}
		]
	}`)

	outcome := ParseStep(core.StepSubmission, body)
	if outcome.Succeeded {
		t.Fatalf("missing jobNumber must fail")
	}
	if outcome.Error != "submission response missing id or jobNumber" {
		t.Fatalf("error = %q", outcome.Error)
	}
}

func TestParseStepCoverageSucceedsWithoutAttributes(t *testing.T) {
	body := []byte(`{"responses": [{"status": 200, "body": {}}]}`)

	outcome := ParseStep(core.StepCoverage, body)
	if !outcome.Succeeded {
		t.Fatalf("coverage attach with clean status should succeed: %q", outcome.Error)
	}
}

func TestParseStepQuoteExtractsSummary(t *testing.T) {
	body := []byte(`{
		"responses": [
			{
				"status": 200,
				"body": {
					"data": {
						"attributes": {
							"totalCost": {"amount": "1640.00", "currency": "usd"},
							"totalPremium": {"amount": 1520.5, "currency": "usd"},
							"rateAsOfDate": "2025-06-01T00:00:00.000Z",
							"jobStatus": {"code": "Quoted", "name": "Quoted"}
						}
					}
				}
			}
		]
	}`)

	outcome := ParseStep(core.StepQuote, body)
	if !outcome.Succeeded {
		t.Fatalf("quote parse failed: %q", outcome.Error)
	}
	if outcome.Quote == nil {
		t.Fatalf("quote summary missing")
	}
	if outcome.Quote.TotalCost.Amount != 1640 || outcome.Quote.TotalCost.Currency != "usd" {
		t.Fatalf("total cost = %+v", outcome.Quote.TotalCost)
	}
	if outcome.Quote.TotalPremium.Amount != 1520.5 {
		t.Fatalf("total premium = %+v", outcome.Quote.TotalPremium)
	}
	if outcome.Quote.JobStatus != "Quoted" {
		t.Fatalf("job status = %q", outcome.Quote.JobStatus)
	}
}

func TestParseStepEmptyEnvelope(t *testing.T) {
	outcome := ParseStep(core.StepAccount, []byte(`{"responses": []}`))
	if outcome.Succeeded {
		t.Fatalf("empty envelope must fail")
	}
	if outcome.Error != "composite envelope contained no responses" {
		t.Fatalf("error = %q", outcome.Error)
	}
}

func TestParseStepGarbageBody(t *testing.T) {
	outcome := ParseStep(core.StepAccount, []byte(`<html>bad gateway</html>`))
	if outcome.Succeeded {
		t.Fatalf("garbage body must fail")
	}
}
