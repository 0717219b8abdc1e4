package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dealflow/pkg/config"
	"github.com/wonny/dealflow/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "데이터베이스 연결 테스트",
	Long: `Tests the configured database connection.

이 명령어는:
- config에서 DB_DRIVER / DATABASE_URL / SQLITE_PATH 로드
- 데이터베이스 연결 생성
- Health Check 실행
- Connection Pool 통계 표시 (postgres)

Example:
  go run ./cmd/dealflow test-db
  DB_DRIVER=postgres go run ./cmd/dealflow test-db`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	PrintHeader(out, "dealflow Database Connection Test")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	PrintSuccess(out, fmt.Sprintf("Config loaded (ENV: %s)", cfg.Env))
	PrintKeyValue(out, "Driver", cfg.Database.Driver, 8)
	if cfg.Database.Driver == config.DriverPostgres {
		PrintKeyValue(out, "URL", maskPassword(cfg.Database.URL), 8)
	} else {
		PrintKeyValue(out, "Path", cfg.Database.SQLitePath, 8)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		PrintError(out, "Failed to connect to database")
		return err
	}
	defer db.Close()
	PrintSuccess(out, "Database connection established")

	status, err := db.HealthCheck(ctx)
	if err != nil {
		PrintError(out, "Health check failed")
		return err
	}

	PrintSeparator(out)
	PrintKeyValue(out, "Healthy", strconv.FormatBool(status.Healthy), 20)
	PrintKeyValue(out, "Response Time", status.ResponseTime.String(), 20)
	PrintKeyValue(out, "Timestamp", status.Timestamp.Format(time.RFC3339), 20)

	if s := status.Stats; s != nil {
		PrintSeparator(out)
		PrintKeyValue(out, "Max Connections", strconv.Itoa(int(s.MaxConns)), 20)
		PrintKeyValue(out, "Total Connections", strconv.Itoa(int(s.TotalConns)), 20)
		PrintKeyValue(out, "Acquired Connections", strconv.Itoa(int(s.AcquiredConns)), 20)
		PrintKeyValue(out, "Idle Connections", strconv.Itoa(int(s.IdleConns)), 20)
		PrintKeyValue(out, "Acquire Count", strconv.FormatInt(s.AcquireCount, 10), 20)
	}

	PrintSuccess(out, "All tests passed!")
	return nil
}
