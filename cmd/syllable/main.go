package main

import (
	"fmt"
	"os"

	"github.com/drakos74/syllable/internal/feature"
	"github.com/drakos74/syllable/internal/metrics"
	"github.com/drakos74/syllable/internal/predict"
	"github.com/drakos74/syllable/internal/selection"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel    string
	pretty      bool
	metricsAddr string

	configFile  string
	modelFile   string
	featureFile string
	outputFile  string

	rootCmd = &cobra.Command{
		Use:   "syllable",
		Short: "Extracts song syllable features and selects the models that label them",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level '%s': %w", logLevel, err)
			}
			zerolog.SetGlobalLevel(level)
			if pretty {
				log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			}
			if metricsAddr != "" {
				metrics.Serve(metricsAddr)
			}
			return nil
		},
		SilenceUsage: true,
	}

	extractCmd = &cobra.Command{
		Use:   "extract",
		Short: "Computes the feature files for the annotated recordings of every todo item",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := feature.Load(configFile)
			if err != nil {
				return err
			}
			return feature.Run(cfg)
		},
	}

	selectCmd = &cobra.Command{
		Use:   "select",
		Short: "Trains and scores every model on increasing training sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := selection.Select(configFile)
			if err != nil {
				return err
			}
			for _, s := range summaries {
				log.Info().
					Str("run", s.RunID).
					Str("output", s.OutputDir).
					Msg("model selection done")
			}
			return nil
		},
	}

	predictCmd = &cobra.Command{
		Use:   "predict",
		Short: "Labels the syllables of a feature file with a saved model",
		RunE: func(cmd *cobra.Command, args []string) error {
			labels, err := predict.Predict(modelFile, featureFile)
			if err != nil {
				return err
			}
			return predict.Save(outputFile, labels)
		},
	}
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human readable console logs")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve the prometheus metrics on, e.g. :8080")

	for _, cmd := range []*cobra.Command{extractCmd, selectCmd} {
		cmd.Flags().StringVarP(&configFile, "config", "c", "", "yaml config file")
		_ = cmd.MarkFlagRequired("config")
	}

	predictCmd.Flags().StringVar(&modelFile, "model", "", "saved model file")
	predictCmd.Flags().StringVar(&featureFile, "features", "", "feature file to label")
	predictCmd.Flags().StringVar(&outputFile, "output", "pred_labels.json", "output file for the predicted labels")
	_ = predictCmd.MarkFlagRequired("model")
	_ = predictCmd.MarkFlagRequired("features")

	rootCmd.AddCommand(extractCmd, selectCmd, predictCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
