package cli

import (
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/daryltucker/model-harness/internal/media"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/output"
)

var (
	sampleCount    int
	sampleSeed     uint64
	sampleModality string
)

var generateCmd = &cobra.Command{
	Use:   "generate-samples",
	Short: "Write synthetic plant images and bird-call WAVs for the accuracy check",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rng := rand.New(rand.NewPCG(sampleSeed, sampleSeed^0x9e3779b97f4a7c15))
		if !cmd.Flags().Changed("seed") {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}

		var only *model.Modality
		if sampleModality != "" {
			m, err := model.ParseModality(sampleModality)
			if err != nil {
				return err
			}
			only = &m
		}
		want := func(m model.Modality) bool { return only == nil || *only == m }

		if want(model.Image) {
			paths, err := media.WritePlantImages(cfg.ImageSamplesDir, sampleCount, rng)
			if err != nil {
				return err
			}
			output.Logger.Info("Wrote sample images", "dir", cfg.ImageSamplesDir, "count", len(paths))
		}
		if want(model.Audio) {
			paths, err := media.WriteChirps(cfg.AudioSamplesDir, sampleCount, rng)
			if err != nil {
				return err
			}
			output.Logger.Info("Wrote sample audio", "dir", cfg.AudioSamplesDir, "count", len(paths))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntVarP(&sampleCount, "count", "n", 10, "files to write per modality")
	generateCmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "random seed (default: random)")
	generateCmd.Flags().StringVar(&sampleModality, "modality", "", "only write samples for image or audio")
}
