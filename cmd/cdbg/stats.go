package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kingsford-group/cdbg/compactor"
	"github.com/kingsford-group/cdbg/internal/seqio"
	"github.com/kingsford-group/cdbg/oracle"
	"github.com/kingsford-group/cdbg/partition"
)

func newStatsCmd() *cobra.Command {
	var configPath, fastaPath string
	var withPartition bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Stream a file and print graph (and optionally partition) counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			hg, err := oracle.NewHashgraph(cfg.K)
			if err != nil {
				return errors.Wrap(err, "stats: new oracle")
			}
			c, err := compactor.New(hg, cfg)
			if err != nil {
				return errors.Wrap(err, "stats: new compactor")
			}

			var part *partition.Partitioner
			if withPartition {
				part = partition.New(hg, c.Codec(), cfg.TagDensity, 200)
			}

			seqs := make(chan string, 64)
			errCh := make(chan error, 1)
			go func() { errCh <- seqio.Stream(fastaPath, seqs) }()

			for s := range seqs {
				if _, err := c.ConsumeSequenceAndUpdate(s); err != nil {
					return errors.Wrap(err, "stats: consume sequence")
				}
				if part != nil {
					if err := part.Consume(s); err != nil {
						return errors.Wrap(err, "stats: partition sequence")
					}
				}
			}
			if err := <-errCh; err != nil {
				return err
			}

			fmt.Print(c.Report())
			if part != nil {
				created, destroyed := partition.ComponentStats()
				fmt.Printf("  n_components: %d\n  n_tags: %d\n  components_created: %d\n  components_destroyed: %d\n",
					part.NComponents(), part.NTags(), created, destroyed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config (required)")
	cmd.Flags().StringVar(&fastaPath, "fasta", "", "path to input FASTA/FASTQ (required)")
	cmd.Flags().BoolVar(&withPartition, "partition", false, "also run the streaming partitioner")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("fasta")
	return cmd
}
