package deals

import (
	"strings"

	"github.com/wonny/dealflow/internal/contracts"
)

// FieldKind is the JSON type a field must carry
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindDate   FieldKind = "date" // string that resolves to a calendar date
)

// FieldRule declares the constraints on one deal field.
// Rule is a validator tag evaluated after the type check.
type FieldRule struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"type"`
	Optional bool      `json:"optional,omitempty"`
	Rule     string    `json:"rule,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// DealSchema is the declarative shape of a deal, in field order.
// Served at GET /api/deals/schema so clients validate against the same rules.
// ⭐ SSOT: Deal 검증 규칙은 여기서만 정의
var DealSchema = []FieldRule{
	{Name: "deal_id", Kind: KindString},
	{Name: "company_name", Kind: KindString},
	{Name: "contact_name", Kind: KindString},
	{Name: "transportation_mode", Kind: KindString, Rule: oneOf(modeNames())},
	{Name: "stage", Kind: KindString, Rule: oneOf(stageNames())},
	{Name: "value", Kind: KindNumber, Rule: "gt=0"},
	{Name: "probability", Kind: KindNumber, Rule: "gte=0,lte=100"},
	{Name: "created_date", Kind: KindDate, Rule: "datelike", Message: "Invalid date format for created_date"},
	{Name: "updated_date", Kind: KindDate, Rule: "datelike", Message: "Invalid date format for updated_date"},
	{Name: "expected_close_date", Kind: KindDate, Rule: "datelike", Message: "Invalid date format for expected_close_date"},
	{Name: "sales_rep", Kind: KindString},
	{Name: "origin_city", Kind: KindString},
	{Name: "destination_city", Kind: KindString},
	{Name: "cargo_type", Kind: KindString, Optional: true},
}

func oneOf(values []string) string {
	return "oneof=" + strings.Join(values, " ")
}

func modeNames() []string {
	names := make([]string, len(contracts.TransportationModes))
	for i, m := range contracts.TransportationModes {
		names[i] = string(m)
	}
	return names
}

func stageNames() []string {
	names := make([]string, len(contracts.Stages))
	for i, s := range contracts.Stages {
		names[i] = string(s)
	}
	return names
}
