package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/galedb/joinplan/sql/analyzer"
)

// newRootCmd wires the single root command around analyzer.Plan: a small
// demonstration harness around the library, owning no listener or wire
// protocol of its own.
func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "joinplan <fixture.yaml>",
		Short: "Build and print a two-table join tree from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(v.GetString("log-level"))

			f, err := loadFixture(args[0])
			if err != nil {
				return err
			}
			mss, err := f.build()
			if err != nil {
				return fmt.Errorf("building multi-source select: %w", err)
			}

			consumer := &cliConsumer{}
			result, err := analyzer.Plan(mss, consumer)
			if err != nil {
				return fmt.Errorf("planning: %w", err)
			}
			if result == nil {
				return fmt.Errorf("query rejected: %w", consumer.validationErr)
			}

			fmt.Print(renderTree(result.Root))
			if result.HasFetchPhase {
				logrus.Info("fetch rewrite applied")
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "logrus level: trace, debug, info, warn, error")
	_ = v.BindPFlag("log-level", cmd.PersistentFlags().Lookup("log-level"))

	return cmd
}

func configureLogging(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
