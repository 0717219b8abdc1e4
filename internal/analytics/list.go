package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/dates"
)

// SortDirection orders the deal list
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Default list ordering: newest first
const (
	DefaultSortField     = "created_date"
	DefaultSortDirection = SortDesc
)

// ErrInvalidListOption is returned for an unknown sort field or direction
var ErrInvalidListOption = errors.New("invalid list option")

// ListOptions controls search and ordering of the deal list
type ListOptions struct {
	Search    string
	SortField string
	Direction SortDirection
}

// ListResult is one page of the deal list
type ListResult struct {
	Total int              `json:"total"` // deals before filtering
	Count int              `json:"count"` // deals after filtering
	Deals []contracts.Deal `json:"deals"`
}

type fieldKind int

const (
	textField fieldKind = iota
	numberField
	dateField
)

type sortField struct {
	kind  fieldKind
	value func(d contracts.Deal) (text string, number float64, present bool)
}

func text(get func(d contracts.Deal) string) func(contracts.Deal) (string, float64, bool) {
	return func(d contracts.Deal) (string, float64, bool) { return get(d), 0, true }
}

func number(get func(d contracts.Deal) float64) func(contracts.Deal) (string, float64, bool) {
	return func(d contracts.Deal) (string, float64, bool) { return "", get(d), true }
}

var sortFields = map[string]sortField{
	"id":                  {numberField, number(func(d contracts.Deal) float64 { return float64(d.ID) })},
	"deal_id":             {textField, text(func(d contracts.Deal) string { return d.DealID })},
	"company_name":        {textField, text(func(d contracts.Deal) string { return d.CompanyName })},
	"contact_name":        {textField, text(func(d contracts.Deal) string { return d.ContactName })},
	"transportation_mode": {textField, text(func(d contracts.Deal) string { return string(d.TransportationMode) })},
	"stage":               {textField, text(func(d contracts.Deal) string { return string(d.Stage) })},
	"value":               {numberField, number(func(d contracts.Deal) float64 { return d.Value })},
	"probability":         {numberField, number(func(d contracts.Deal) float64 { return d.Probability })},
	"created_date":        {dateField, text(func(d contracts.Deal) string { return d.CreatedDate })},
	"updated_date":        {dateField, text(func(d contracts.Deal) string { return d.UpdatedDate })},
	"expected_close_date": {dateField, text(func(d contracts.Deal) string { return d.ExpectedCloseDate })},
	"sales_rep":           {textField, text(func(d contracts.Deal) string { return d.SalesRep })},
	"origin_city":         {textField, text(func(d contracts.Deal) string { return d.OriginCity })},
	"destination_city":    {textField, text(func(d contracts.Deal) string { return d.DestinationCity })},
	"cargo_type": {textField, func(d contracts.Deal) (string, float64, bool) {
		if d.CargoType == nil {
			return "", 0, false
		}
		return *d.CargoType, 0, true
	}},
}

// ListDeals filters deals by a case-insensitive search and sorts them.
// Missing values sort first ascending and last descending; the sort is stable.
func ListDeals(deals []contracts.Deal, opts ListOptions, parser dates.Parser) (ListResult, error) {
	if opts.SortField == "" {
		opts.SortField = DefaultSortField
	}
	if opts.Direction == "" {
		opts.Direction = DefaultSortDirection
	}

	field, ok := sortFields[opts.SortField]
	if !ok {
		return ListResult{}, fmt.Errorf("%w: sort field %q", ErrInvalidListOption, opts.SortField)
	}
	if opts.Direction != SortAsc && opts.Direction != SortDesc {
		return ListResult{}, fmt.Errorf("%w: direction %q", ErrInvalidListOption, opts.Direction)
	}

	filtered := make([]contracts.Deal, 0, len(deals))
	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	for _, d := range deals {
		if needle == "" || matches(d, needle) {
			filtered = append(filtered, d)
		}
	}

	asc := opts.Direction == SortAsc
	sort.SliceStable(filtered, func(i, j int) bool {
		c := compare(field, filtered[i], filtered[j], parser)
		if asc {
			return c < 0
		}
		return c > 0
	})

	return ListResult{
		Total: len(deals),
		Count: len(filtered),
		Deals: filtered,
	}, nil
}

func matches(d contracts.Deal, needle string) bool {
	for _, haystack := range []string{
		d.CompanyName,
		d.ContactName,
		d.DealID,
		d.SalesRep,
		string(d.Stage),
		string(d.TransportationMode),
	} {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

// compare returns <0, 0, >0 in ascending order; missing values are smallest
func compare(field sortField, a, b contracts.Deal, parser dates.Parser) int {
	aText, aNum, aOK := field.value(a)
	bText, bNum, bOK := field.value(b)

	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return -1
	case !bOK:
		return 1
	}

	switch field.kind {
	case numberField:
		return cmpFloat(aNum, bNum)
	case dateField:
		at, aErr := parser.Parse(aText)
		bt, bErr := parser.Parse(bText)
		if aErr == nil && bErr == nil {
			return at.Compare(bt)
		}
	}

	return strings.Compare(strings.ToLower(aText), strings.ToLower(bText))
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
