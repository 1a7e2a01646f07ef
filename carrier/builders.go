package carrier

import (
	"fmt"
	"time"

	"github.com/goliatone/go-carrier-sync/core"
)

const (
	accountProducerCode    = "pc:2"
	submissionProducerCode = "pc:16"
	productCode            = "USCyber"
	lineCode               = "USCyberLine"
	coveragePatternCode    = "ACLCommlCyberLiability"
)

// buildAccountCall creates the policy-center account for the insured company.
// uniqueSuffix disambiguates repeat company names on first creation; resume
// never rebuilds this call once the account exists.
func buildAccountCall(fields core.FieldMap, uniqueSuffix string) CompositeCall {
	companyName := fields.StringOr("New Insurance Account", "company_name", "organization_name", "named_insured")
	if uniqueSuffix != "" {
		companyName = fmt.Sprintf("%s %s", companyName, uniqueSuffix)
	}

	address := map[string]any{
		"addressLine1": fields.StringOr("123 Business St", "business_address", "address"),
		"city":         fields.StringOr("San Francisco", "business_city", "city"),
		"postalCode":   fields.StringOr("94105", "business_zip", "zip"),
		"state": map[string]any{
			"code": fields.StringOr("CA", "business_state", "state"),
		},
	}

	return CompositeCall{
		Method: "post",
		URI:    "/account/v1/accounts",
		Body: map[string]any{
			"data": map[string]any{
				"attributes": map[string]any{
					"initialAccountHolder": map[string]any{
						"contactSubtype": "Company",
						"companyName":    companyName,
						"taxId":          fields.StringOr("12-3456789", "company_ein", "tax_id"),
						"primaryAddress": address,
					},
					"initialPrimaryLocation": address,
					"producerCodes": []map[string]any{
						{"id": accountProducerCode},
					},
					"organizationType": map[string]any{
						"code": entityTypeCode(fields.String("entity_type")),
					},
				},
			},
		},
		Vars: []CompositeVar{
			{Name: "accountId", Path: "$.data.attributes.id"},
		},
	}
}

// buildSubmissionCall opens the cyber submission job on an existing account.
func buildSubmissionCall(accountID string, fields core.FieldMap, now time.Time) CompositeCall {
	effectiveDate := fields.StringOr(now.Format("2006-01-02"), "effective_date")

	return CompositeCall{
		Method: "post",
		URI:    "/job/v1/submissions",
		Body: map[string]any{
			"data": map[string]any{
				"attributes": map[string]any{
					"account": map[string]any{
						"id": accountID,
					},
					"baseState": map[string]any{
						"code": fields.StringOr("CA", "business_state", "state"),
					},
					"jobEffectiveDate":  effectiveDate,
					"jobExpirationDate": expiryDate(effectiveDate, now),
					"producerCode": map[string]any{
						"id": submissionProducerCode,
					},
					"product": map[string]any{
						"id": productCode,
					},
				},
			},
		},
		Vars: []CompositeVar{
			{Name: "jobId", Path: "$.data.attributes.id"},
		},
	}
}

// buildCoverageCall attaches the cyber liability coverage pattern with terms
// snapped to the carrier's choice lists.
func buildCoverageCall(jobID string, fields core.FieldMap) CompositeCall {
	aggregate := closestCoverageCode(aggregateCodes, parseLimit(fields, 50_000, "coverage_amount", "aggregate_limit"))
	busIncome := closestCoverageCode(busIncomeCodes, parseLimit(fields, 10_000, "business_interruption_limit"))
	extortion := closestCoverageCode(extortionCodes, parseLimit(fields, 5_000, "cyber_extortion_limit"))
	retention := closestCoverageCode(retentionCodes, parseLimit(fields, 7_500, "deductible", "retention"))

	return CompositeCall{
		Method: "post",
		URI:    fmt.Sprintf("/job/v1/jobs/%s/lines/%s/coverages", jobID, lineCode),
		Body: map[string]any{
			"data": map[string]any{
				"attributes": map[string]any{
					"pattern": map[string]any{
						"id": coveragePatternCode,
					},
					"terms": map[string]any{
						"ACLCommlCyberLiabilityBusIncLimit":   choiceTerm(busIncome),
						"ACLCommlCyberLiabilityCyberAggLimit": choiceTerm(aggregate),
						"ACLCommlCyberLiabilityExtortion":     choiceTerm(extortion),
						"ACLCommlCyberLiabilityPublicRelations": choiceTerm(coverageCode{
							Amount: 5_000, Code: "5Kusd", Name: "5,000",
						}),
						"ACLCommlCyberLiabilityRetention": choiceTerm(retention),
						"ACLCommlCyberLiabilityWaitingPeriod": map[string]any{
							"choiceValue": map[string]any{
								"code": "12HR",
								"name": "12 hrs",
							},
						},
					},
				},
			},
		},
	}
}

func choiceTerm(code coverageCode) map[string]any {
	return map[string]any{
		"choiceValue": map[string]any{
			"code": code.Code,
			"name": code.Name,
		},
	}
}

// buildLineDetailsCall patches the cyber line with the insured's financials.
func buildLineDetailsCall(jobID string, fields core.FieldMap, now time.Time) CompositeCall {
	revenue := fields.Money(121_212, "annual_revenue", "revenue")
	ftEmployees := fields.Int(20, "employee_count", "employees")

	started := fields.String("business_started", "founded")
	if started == "" {
		started = now.AddDate(-5, 0, 0).Format("2006-01-02T15:04:05.000Z")
	}

	return CompositeCall{
		Method: "patch",
		URI:    fmt.Sprintf("/job/v1/jobs/%s/lines/%s", jobID, lineCode),
		Body: map[string]any{
			"data": map[string]any{
				"attributes": map[string]any{
					"aclDateBusinessStarted": started,
					"aclIndustryType": map[string]any{
						"code": industryCode(fields.String("industry", "industry_type")),
					},
					"aclPolicyType": map[string]any{
						"code": "commercialcyber",
						"name": "Commercial Cyber",
					},
					"aclTotalAssets":      formatFinancial(revenue * 10),
					"aclTotalFTEmployees": ftEmployees,
					"aclTotalLiabilities": formatFinancial(revenue * 0.1),
					"aclTotalPTEmployees": fields.Int(ftEmployees, "part_time_employees"),
					"aclTotalPayroll":     formatFinancial(float64(ftEmployees) * 2),
					"aclTotalRevenues":    formatFinancial(revenue),
				},
			},
		},
	}
}

// buildQuoteCall requests pricing for the assembled job.
func buildQuoteCall(jobID string) CompositeCall {
	return CompositeCall{
		Method: "post",
		URI:    fmt.Sprintf("/job/v1/jobs/%s/quote", jobID),
	}
}

// buildPingCall probes carrier reachability with a cheap read.
func buildPingCall() CompositeCall {
	return CompositeCall{
		Method: "get",
		URI:    "/account/v1/account-organization-types",
	}
}
