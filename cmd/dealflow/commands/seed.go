package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/seed"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "샘플 딜 데이터 적재",
	Long: `Replaces every stored deal with sample data.

By default the ten built-in sample deals (RV-001..RV-010) are loaded.
With --random N, N generated deals are loaded instead.

Example:
  go run ./cmd/dealflow seed
  go run ./cmd/dealflow seed --random 200 --seed 7`,
	RunE: runSeed,
}

var (
	seedRandom int
	seedValue  int64
)

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedRandom, "random", 0, "generate N random deals instead of the samples")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed for --random (default: current time)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var sample []contracts.Deal
	if seedRandom > 0 {
		if seedValue == 0 {
			seedValue = time.Now().UnixNano()
		}
		sample = seed.Generate(seedRandom, seedValue)
	} else {
		sample, err = seed.SampleDeals()
		if err != nil {
			return err
		}
	}

	count, err := seed.NewSeeder(a.store, a.log).Seed(ctx, sample)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Successfully seeded %d deals", count))
	return nil
}
