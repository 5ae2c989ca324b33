package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmigpin/xsynth"
	"github.com/jmigpin/xsynth/internal/config"
	"github.com/jmigpin/xsynth/internal/logger"
)

var (
	flagDisplay string
	flagConfig  string
	flagVerbose bool

	rootCmd = &cobra.Command{
		Use:   "xsynth",
		Short: "Xsynth - synthetic X11 input",
		Long: `Xsynth synthesizes pointer and keyboard input on an X11 session
through the XTEST extension, resolving characters against the live
keyboard layout.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagVerbose {
				logger.SetLevel("debug")
			}
			if flagConfig != "" {
				config.SetConfigPath(flagConfig)
			}
			return config.Init()
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&flagDisplay, "display", "d", "", "X display (defaults to $DISPLAY)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(clickCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(scrollCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func displayName() string {
	if flagDisplay != "" {
		return flagDisplay
	}
	return config.Get().Display
}

func newSynth() (*xsynth.Synth, error) {
	return xsynth.NewDisplay(displayName())
}

func parseCoord(s string) (int16, error) {
	v, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	return int16(v), nil
}
