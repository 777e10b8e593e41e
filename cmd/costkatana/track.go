package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

var trackCmd = &cobra.Command{
	Use:   "track [file]",
	Short: "Track usage records from JSON",
	Long: `Validate and store usage records. The input is a single JSON record or
an array of records, read from the file argument or from stdin.

Records without a cost are priced from the pricing table. Records that
fail validation stop the import; records tracked before them are kept.

Examples:
  costkatana track usage.json
  echo '{"provider":"openai","model":"gpt-4o","promptTokens":120,"completionTokens":40,"prompt":"hi"}' | costkatana track`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	records, err := decodeRecords(in)
	if err != nil {
		return err
	}

	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	progress := cli.NewTerminalProgress(os.Stderr)
	progress.Start(int64(len(records)))

	for i, rec := range records {
		if rec.EstimatedCost == 0 {
			if est, err := client.CalculateCost(rec.Provider, rec.Model, rec.PromptTokens, rec.CompletionTokens); err == nil {
				rec.EstimatedCost = est.TotalCost
			}
		}
		if err := client.TrackUsage(cmd.Context(), rec); err != nil {
			progress.Error(err)
			return cli.NewCommandError("track", fmt.Errorf("record %d: %w", i+1, err))
		}
		progress.Update(int64(i + 1))
	}
	progress.Finish()

	return render(cmd.OutOrStdout(), fmt.Sprintf("Tracked %d record(s).", len(records)))
}

// decodeRecords accepts one record or an array of records.
func decodeRecords(r io.Reader) ([]*usage.UsageRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &usage.ValidationError{Field: "input", Message: "no records given"}
	}

	if data[0] == '[' {
		var records []*usage.UsageRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, &usage.ValidationError{Field: "input", Message: err.Error()}
		}
		for i, rec := range records {
			if rec == nil {
				return nil, &usage.ValidationError{Field: "input", Message: fmt.Sprintf("record %d is null", i+1)}
			}
		}
		return records, nil
	}

	var rec usage.UsageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &usage.ValidationError{Field: "input", Message: err.Error()}
	}
	return []*usage.UsageRecord{&rec}, nil
}
