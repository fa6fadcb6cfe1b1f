package cli

import (
	"github.com/spf13/cobra"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/config"
	"github.com/crawlmeter/crawlmeter/internal/domain/content"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/internal/domain/pricing"
)

func newValueCommand() *cobra.Command {
	var (
		wordCount    int
		qualityScore int
		ageDays      int
		ratesFile    string
	)

	cmd := &cobra.Command{
		Use:   "value <user-agent> <locator>",
		Short: "Classify an access and estimate its content value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := pricing.DefaultRateTables()
			if ratesFile != "" {
				loaded, err := config.LoadRateTables(ratesFile)
				if err != nil {
					return err
				}
				tables = loaded
			}

			svc := valuation.NewService(
				detection.NewClassifier(nil),
				content.NewExtractor(nil, nil, nil),
				valuation.StaticRates(tables),
				nil,
			)

			req := valuation.ProcessRequest{
				UserAgent:    args[0],
				Locator:      args[1],
				WordCount:    wordCount,
				QualityScore: qualityScore,
			}
			if cmd.Flags().Changed("age-days") {
				req.PublishAgeDays = &ageDays
			}

			d, err := svc.Process(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().IntVar(&wordCount, "word-count", 0, "override the extracted word count")
	cmd.Flags().IntVar(&qualityScore, "quality", 0, "override the extracted quality score (0-100)")
	cmd.Flags().IntVar(&ageDays, "age-days", 0, "age of the content in days")
	cmd.Flags().StringVar(&ratesFile, "rates", "", "path to a YAML rate table override")
	return cmd
}
