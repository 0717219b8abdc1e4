package deals

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/dates"
)

// Validator checks untyped input against DealSchema
type Validator struct {
	validate *validator.Validate
	schema   []FieldRule
}

// NewValidator builds a validator. monthFirst controls how ambiguous slash dates are read.
func NewValidator(monthFirst bool) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	parser := dates.Parser{MonthFirst: monthFirst}
	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("datelike", func(fl validator.FieldLevel) bool {
		return parser.Valid(fl.Field().String())
	})

	return &Validator{validate: v, schema: DealSchema}
}

// Validate returns the normalized deal, or every violated constraint in schema order.
// Malformed input is reported as failures, never as a panic.
func (v *Validator) Validate(input any) (contracts.Deal, []contracts.ValidationFailure) {
	obj, ok := input.(map[string]any)
	if !ok {
		return contracts.Deal{}, []contracts.ValidationFailure{{
			Code:    contracts.CodeInvalidType,
			Path:    []string{},
			Message: fmt.Sprintf("Expected object, received %s", typeName(input)),
		}}
	}

	var failures []contracts.ValidationFailure
	fields := make(map[string]any, len(v.schema))

	for _, rule := range v.schema {
		raw, present := obj[rule.Name]
		if !present {
			if !rule.Optional {
				failures = append(failures, failure(contracts.CodeInvalidType, rule.Name, "Required"))
			}
			continue
		}

		value, ok := coerce(rule.Kind, raw)
		if !ok {
			failures = append(failures, failure(contracts.CodeInvalidType, rule.Name,
				fmt.Sprintf("Expected %s, received %s", expectedType(rule.Kind), typeName(raw))))
			continue
		}

		if rule.Rule != "" {
			if err := v.validate.Var(value, rule.Rule); err != nil {
				failures = append(failures, ruleFailure(rule, value, err))
				continue
			}
		}

		fields[rule.Name] = value
	}

	if len(failures) > 0 {
		return contracts.Deal{}, failures
	}

	return buildDeal(fields), nil
}

// ExtractDealID pulls deal_id from raw input on a best-effort basis
func ExtractDealID(input any) string {
	obj, ok := input.(map[string]any)
	if !ok {
		return ""
	}
	switch id := obj["deal_id"].(type) {
	case string:
		return id
	case float64, json.Number:
		return fmt.Sprint(id)
	default:
		return ""
	}
}

func failure(code, field, message string) contracts.ValidationFailure {
	return contracts.ValidationFailure{Code: code, Path: []string{field}, Message: message}
}

func ruleFailure(rule FieldRule, value any, err error) contracts.ValidationFailure {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return failure(contracts.CodeCustom, rule.Name, err.Error())
	}
	fe := verrs[0]

	switch fe.Tag() {
	case "gt":
		return failure(contracts.CodeTooSmall, rule.Name, "Number must be greater than "+fe.Param())
	case "gte":
		return failure(contracts.CodeTooSmall, rule.Name, "Number must be greater than or equal to "+fe.Param())
	case "lt":
		return failure(contracts.CodeTooBig, rule.Name, "Number must be less than "+fe.Param())
	case "lte":
		return failure(contracts.CodeTooBig, rule.Name, "Number must be less than or equal to "+fe.Param())
	case "oneof":
		options := strings.Fields(fe.Param())
		quoted := make([]string, len(options))
		for i, o := range options {
			quoted[i] = "'" + o + "'"
		}
		return failure(contracts.CodeInvalidEnumValue, rule.Name,
			fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", strings.Join(quoted, " | "), value))
	default:
		msg := rule.Message
		if msg == "" {
			msg = "Invalid " + rule.Name
		}
		return failure(contracts.CodeCustom, rule.Name, msg)
	}
}

// coerce checks raw against kind and returns the Go value the rule tag runs on
func coerce(kind FieldKind, raw any) (any, bool) {
	switch kind {
	case KindString, KindDate:
		s, ok := raw.(string)
		return s, ok
	case KindNumber:
		return toNumber(raw)
	default:
		return nil, false
	}
}

func toNumber(raw any) (float64, bool) {
	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func expectedType(kind FieldKind) string {
	if kind == KindNumber {
		return "number"
	}
	return "string"
}

func typeName(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if math.IsNaN(n) {
			return "nan"
		}
		return "number"
	case float32, int, int32, int64, uint64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

func buildDeal(fields map[string]any) contracts.Deal {
	str := func(name string) string {
		s, _ := fields[name].(string)
		return s
	}
	num := func(name string) float64 {
		f, _ := fields[name].(float64)
		return f
	}

	deal := contracts.Deal{
		DealID:             str("deal_id"),
		CompanyName:        str("company_name"),
		ContactName:        str("contact_name"),
		TransportationMode: contracts.TransportationMode(str("transportation_mode")),
		Stage:              contracts.Stage(str("stage")),
		Value:              num("value"),
		Probability:        num("probability"),
		CreatedDate:        str("created_date"),
		UpdatedDate:        str("updated_date"),
		ExpectedCloseDate:  str("expected_close_date"),
		SalesRep:           str("sales_rep"),
		OriginCity:         str("origin_city"),
		DestinationCity:    str("destination_city"),
	}
	if cargo, ok := fields["cargo_type"].(string); ok {
		deal.CargoType = &cargo
	}

	return deal
}
