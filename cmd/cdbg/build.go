package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kingsford-group/cdbg/compactor"
	"github.com/kingsford-group/cdbg/fastaio"
	"github.com/kingsford-group/cdbg/gmlio"
	"github.com/kingsford-group/cdbg/internal/config"
	"github.com/kingsford-group/cdbg/internal/seqio"
	"github.com/kingsford-group/cdbg/oracle"
	"github.com/kingsford-group/cdbg/partition"
)

func newBuildCmd() *cobra.Command {
	var configPath, fastaPath, gmlOut, fastaOut string
	var withPartition bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Stream a FASTA/FASTQ file through the compactor and optionally the partitioner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			hg, err := oracle.NewHashgraph(cfg.K)
			if err != nil {
				return errors.Wrap(err, "build: new oracle")
			}
			c, err := compactor.New(hg, cfg)
			if err != nil {
				return errors.Wrap(err, "build: new compactor")
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
					return errors.Wrap(err, "build: consume sequence")
				}
				if part != nil {
					if err := part.Consume(s); err != nil {
						return errors.Wrap(err, "build: partition sequence")
					}
				}
			}
			if err := <-errCh; err != nil {
				return err
			}

			if gmlOut != "" {
				f, err := os.Create(gmlOut)
				if err != nil {
					return errors.Wrap(err, "build: create gml output")
				}
				defer f.Close()
				if err := gmlio.Write(f, c); err != nil {
					return errors.Wrap(err, "build: write gml")
				}
			}
			if fastaOut != "" {
				f, err := os.Create(fastaOut)
				if err != nil {
					return errors.Wrap(err, "build: create fasta output")
				}
				defer f.Close()
				if err := fastaio.Write(f, c); err != nil {
					return errors.Wrap(err, "build: write fasta")
				}
			}

			log.Infof("built graph: %d nodes, %d edges, %d updates", c.NNodes(), c.NEdges(), c.NUpdates())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config (required)")
	cmd.Flags().StringVar(&fastaPath, "fasta", "", "path to input FASTA/FASTQ (required)")
	cmd.Flags().StringVar(&gmlOut, "gml", "", "optional GML output path")
	cmd.Flags().StringVar(&fastaOut, "fasta-out", "", "optional FASTA output path")
	cmd.Flags().BoolVar(&withPartition, "partition", false, "also run the streaming partitioner")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("fasta")
	return cmd
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}
