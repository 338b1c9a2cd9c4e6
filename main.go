package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/o0olele/sctree-go/config"
	"github.com/o0olele/sctree-go/growth"
)

var (
	logLevel   string
	logJSON    bool
	configPath string
	seed       uint64
	attractors int
)

func main() {
	root := &cobra.Command{
		Use:           "sctree",
		Short:         "Grow space colonization trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return errors.Wrap(err, "bad --log-level")
			}
			logrus.SetLevel(level)
			if logJSON {
				logrus.SetFormatter(&logrus.JSONFormatter{})
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&logJSON, "log-json", false, "log as JSON")
	flags.StringVarP(&configPath, "config", "c", "", "parameter file (.toml, .yaml)")
	flags.Uint64Var(&seed, "seed", 0, "override the random seed")
	flags.IntVar(&attractors, "attractors", 0, "override the attractor count")

	root.AddCommand(newServeCommand(), newGrowCommand(), newInitConfigCommand())

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("sctree failed")
		os.Exit(1)
	}
}

// loadParams reads --config if given and applies flag overrides.
func loadParams(cmd *cobra.Command) (growth.Params, error) {
	params := growth.DefaultParams()
	if configPath != "" {
		var err error
		if params, err = config.Load(configPath); err != nil {
			return growth.Params{}, err
		}
	}
	if cmd.Flags().Changed("seed") {
		params.Seed = seed
	}
	if cmd.Flags().Changed("attractors") {
		params.AttractorCount = attractors
	}
	return params, params.Validate()
}

func newInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <file>",
		Short: "Write the default parameters to a .toml or .yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], params); err != nil {
				return err
			}
			logrus.WithField("file", args[0]).Info("config written")
			return nil
		},
	}
}
