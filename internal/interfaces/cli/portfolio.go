package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/domain/portfolio"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

func newPortfolioCommand() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Aggregate a detections export into a portfolio summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read input file")
			}

			var detections []valuation.Detection
			if err := json.Unmarshal(data, &detections); err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode detections")
			}

			entries := make([]portfolio.Entry, len(detections))
			for i, d := range detections {
				entries[i] = portfolio.Entry{
					Classification: d.Classification,
					Valuation:      d.Valuation,
				}
			}

			return printJSON(cmd.OutOrStdout(), portfolio.Aggregate(entries))
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON detections export")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
