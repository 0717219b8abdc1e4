package contracts

// Stage is one of the six ordered pipeline phases a deal moves through
type Stage string

const (
	StageProspect    Stage = "prospect"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosedWon   Stage = "closed_won"
	StageClosedLost  Stage = "closed_lost"
)

// Stages lists every stage in pipeline order
// ⭐ SSOT: 스테이지 순서는 여기서만 정의
var Stages = []Stage{
	StageProspect,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// IsClosed reports whether the stage ends the deal
func (s Stage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// TransportationMode is how the shipment moves
type TransportationMode string

const (
	ModeTrucking TransportationMode = "trucking"
	ModeRail     TransportationMode = "rail"
	ModeOcean    TransportationMode = "ocean"
	ModeAir      TransportationMode = "air"
)

// TransportationModes lists every supported mode
var TransportationModes = []TransportationMode{
	ModeTrucking,
	ModeRail,
	ModeOcean,
	ModeAir,
}

// Deal is a tracked sales/shipment opportunity.
// Date fields keep the caller's original string; they are validated, never reformatted.
type Deal struct {
	ID                 int64              `json:"id" yaml:"-"`
	DealID             string             `json:"deal_id" yaml:"deal_id"`
	CompanyName        string             `json:"company_name" yaml:"company_name"`
	ContactName        string             `json:"contact_name" yaml:"contact_name"`
	TransportationMode TransportationMode `json:"transportation_mode" yaml:"transportation_mode"`
	Stage              Stage              `json:"stage" yaml:"stage"`
	Value              float64            `json:"value" yaml:"value"`             // USD
	Probability        float64            `json:"probability" yaml:"probability"` // 0-100
	CreatedDate        string             `json:"created_date" yaml:"created_date"`
	UpdatedDate        string             `json:"updated_date" yaml:"updated_date"`
	ExpectedCloseDate  string             `json:"expected_close_date" yaml:"expected_close_date"`
	SalesRep           string             `json:"sales_rep" yaml:"sales_rep"`
	OriginCity         string             `json:"origin_city" yaml:"origin_city"`
	DestinationCity    string             `json:"destination_city" yaml:"destination_city"`
	CargoType          *string            `json:"cargo_type,omitempty" yaml:"cargo_type,omitempty"`
}

// WeightedValue returns value scaled by close probability
func (d Deal) WeightedValue() float64 {
	return d.Value * (d.Probability / 100)
}
