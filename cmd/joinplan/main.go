// Command joinplan builds and prints a two-table join tree for a
// YAML-described multi-source select, as a debugging harness around the
// planner core.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("joinplan failed")
		os.Exit(1)
	}
}
