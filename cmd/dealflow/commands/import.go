package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/pkg/httputil"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/redis"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "딜 파일 일괄 등록",
	Long: `Posts a JSON or YAML list of deals to a running API as one batch,
or in --batch-size chunks.

Each deal is validated and duplicate-checked by the server;
rejected deals are listed with their reason and do not stop the import.

Example:
  go run ./cmd/dealflow import deals.json
  go run ./cmd/dealflow import deals.yaml --url http://localhost:8080 --batch-size 100`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importURL       string
	importBatchSize int
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importURL, "url", "", "API base URL (default: http://localhost:$PORT)")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "deals per request (0: whole file in one request)")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	inputs, err := loadImportFile(args[0])
	if err != nil {
		return err
	}

	baseURL := importURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Port
	}

	ctx := cmd.Context()
	client := httputil.NewWithTimeout(log, 2*time.Minute).WithRetry(3, time.Second).RetryUnsentOnly()

	if err := checkServer(ctx, client, baseURL); err != nil {
		return err
	}

	// ⭐ Redis가 켜져 있으면 서버의 분당 한도에 맞춰 배치 전송 속도를 조절
	if cfg.Redis.Enabled {
		rdb, err := redis.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		client.WithRateLimiter(redis.NewRateLimiter(rdb, "dealflow-cli"),
			redis.IngestRateLimit("import", cfg.Ingest.RateLimitPerMinute))
	}

	result, err := importDeals(ctx, client, baseURL, inputs, importBatchSize)
	if err != nil {
		return err
	}

	log.Infof("Imported %d of %d deals", result.Success, len(inputs))
	printImportResult(cmd, len(inputs), result)
	return nil
}

// loadImportFile reads a list of deals. .yaml/.yml files are YAML, anything else JSON.
func loadImportFile(path string) ([]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var inputs []interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		inputs, err = decodeYAMLDeals(data)
	default:
		err = json.Unmarshal(data, &inputs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: expected a list of deals: %w", path, err)
	}

	return inputs, nil
}

// decodeYAMLDeals decodes a YAML list, keeping timestamps as their source text
// so dates reach the API exactly as written.
func decodeYAMLDeals(data []byte) ([]interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	keepTimestampsAsText(&doc)

	var inputs []interface{}
	if err := doc.Decode(&inputs); err != nil {
		return nil, err
	}
	return inputs, nil
}

func keepTimestampsAsText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, child := range n.Content {
		keepTimestampsAsText(child)
	}
}

// checkServer fails fast when nothing healthy answers at baseURL
func checkServer(ctx context.Context, client *httputil.Client, baseURL string) error {
	resp, err := client.Get(ctx, strings.TrimRight(baseURL, "/")+"/health")
	if err != nil {
		return fmt.Errorf("API not reachable at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API at %s is unhealthy: status %d", baseURL, resp.StatusCode)
	}
	return nil
}

// importDeals posts inputs in batches and merges the multi-status results
func importDeals(ctx context.Context, client *httputil.Client, baseURL string, inputs []interface{}, batchSize int) (contracts.BatchResult, error) {
	if batchSize <= 0 {
		batchSize = len(inputs)
	}
	url := strings.TrimRight(baseURL, "/") + "/api/deals"

	total := contracts.BatchResult{Errors: []contracts.BatchError{}}
	for start := 0; start < len(inputs); start += batchSize {
		end := start + batchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		resp, err := client.PostJSON(ctx, url, inputs[start:end])
		if err != nil {
			return total, fmt.Errorf("post batch %d-%d: %w", start+1, end, err)
		}
		if resp.StatusCode != http.StatusMultiStatus {
			resp.Body.Close()
			return total, fmt.Errorf("post batch %d-%d: unexpected status %d", start+1, end, resp.StatusCode)
		}

		var batch contracts.BatchResult
		if err := httputil.DecodeJSON(resp, &batch); err != nil {
			return total, err
		}

		total.Success += batch.Success
		total.Errors = append(total.Errors, batch.Errors...)
	}

	return total, nil
}

func printImportResult(cmd *cobra.Command, submitted int, result contracts.BatchResult) {
	out := cmd.OutOrStdout()

	PrintHeader(out, "Deal Import")
	PrintKeyValue(out, "Submitted", fmt.Sprint(submitted), 9)
	PrintKeyValue(out, "Accepted", fmt.Sprint(result.Success), 9)
	PrintKeyValue(out, "Rejected", fmt.Sprint(len(result.Errors)), 9)

	if len(result.Errors) == 0 {
		PrintSuccess(out, "All deals imported")
		return
	}

	PrintSeparator(out)
	widths := []int{12, 60}
	PrintTableHeader(out, []string{"DEAL ID", "REASON"}, widths)
	for _, e := range result.Errors {
		PrintTableRow(out, []string{e.DealID, describeBatchError(e.Error)}, widths)
	}
	PrintWarning(out, fmt.Sprintf("%d deals rejected", len(result.Errors)))
}

// describeBatchError renders a string reason as-is and a failure list as "path: message; ..."
func describeBatchError(v interface{}) string {
	switch e := v.(type) {
	case string:
		return e
	case []interface{}:
		parts := make([]string, 0, len(e))
		for _, item := range e {
			f, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			var path []string
			if p, ok := f["path"].([]interface{}); ok {
				for _, seg := range p {
					path = append(path, fmt.Sprint(seg))
				}
			}
			parts = append(parts, fmt.Sprintf("%s: %v", strings.Join(path, "."), f["message"]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(e)
	}
}
