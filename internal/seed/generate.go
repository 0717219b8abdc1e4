package seed

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/wonny/dealflow/internal/contracts"
)

var cargoTypes = []string{
	"Electronics", "Machinery", "Pharmaceuticals", "Automotive Parts", "Consumer Goods",
	"Food Products", "Raw Materials", "Industrial Equipment", "Construction Materials",
}

// Generate builds n valid random deals (GEN-0001, GEN-0002, ...).
// The same seed always yields the same deals.
func Generate(n int, seed int64) []contracts.Deal {
	faker := gofakeit.New(seed)

	reps := make([]string, 5)
	for i := range reps {
		reps[i] = faker.Name()
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	deals := make([]contracts.Deal, 0, n)

	for i := 0; i < n; i++ {
		stage := contracts.Stages[faker.Number(0, len(contracts.Stages)-1)]
		mode := contracts.TransportationModes[faker.Number(0, len(contracts.TransportationModes)-1)]

		created := faker.DateRange(base, base.AddDate(1, 0, 0))
		updated := created.AddDate(0, 0, faker.Number(0, 45))
		closing := updated.AddDate(0, 0, faker.Number(7, 90))

		d := contracts.Deal{
			DealID:             fmt.Sprintf("GEN-%04d", i+1),
			CompanyName:        faker.Company(),
			ContactName:        faker.Name(),
			TransportationMode: mode,
			Stage:              stage,
			Value:              math.Round(faker.Float64Range(1000, 150000)),
			Probability:        probabilityFor(stage, faker),
			CreatedDate:        created.Format(time.RFC3339),
			UpdatedDate:        updated.Format(time.RFC3339),
			ExpectedCloseDate:  closing.Format("2006-01-02"),
			SalesRep:           faker.RandomString(reps),
			OriginCity:         faker.City(),
			DestinationCity:    faker.City(),
		}
		if faker.Bool() {
			cargo := faker.RandomString(cargoTypes)
			d.CargoType = &cargo
		}

		deals = append(deals, d)
	}

	return deals
}

func probabilityFor(stage contracts.Stage, faker *gofakeit.Faker) float64 {
	switch stage {
	case contracts.StageClosedWon:
		return 100
	case contracts.StageClosedLost:
		return 0
	default:
		return float64(faker.Number(5, 95))
	}
}
