package main

import (
	"github.com/spf13/cobra"

	"github.com/jmigpin/xsynth/internal/logger"
)

// set through -ldflags at build time
var (
	Version = "0.1.0-dev"
	Commit  = "none"
	Date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		logger.Infof("xsynth %s", Version)
		logger.Infof("commit: %s", Commit)
		logger.Infof("built: %s", Date)
	},
}
