package cmd

import (
	"fmt"

	"github.com/ajpearen/lineup-etl/pipeline"
	"github.com/ajpearen/lineup-etl/utils"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merges all source channel lists into the custom channel list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
			if err != nil {
				return fmt.Errorf("error creating pipeline: %w", err)
			}
			defer p.Close()

			summary, err := p.Merge(dryRun)
			if err != nil {
				log.Error(fmt.Sprintf("Error running merge pipeline: %v", err))
				return err
			}

			log.Info(fmt.Sprintf(
				"Merge completed: %d candidates in, %d channels out, %d duplicates collapsed, %d problem rows, %d excluded by pre-filter",
				summary.Loaded, summary.Channels, summary.Decisions, summary.Problems, summary.PreDropped,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and report without writing any artifact")
	return cmd
}
