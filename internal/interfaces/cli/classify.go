package cli

import (
	"github.com/spf13/cobra"

	"github.com/crawlmeter/crawlmeter/internal/config"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
)

func newClassifyCommand() *cobra.Command {
	var signaturesFile string

	cmd := &cobra.Command{
		Use:   "classify <user-agent>",
		Short: "Classify a user agent string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signatures := detection.DefaultSignatures()
			if signaturesFile != "" {
				loaded, err := config.LoadSignatures(signaturesFile)
				if err != nil {
					return err
				}
				signatures = loaded
			}

			result := detection.NewClassifier(signatures).Classify(args[0])
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&signaturesFile, "signatures", "", "path to a YAML actor signature table")
	return cmd
}
