package main

import (
	"github.com/spf13/cobra"

	"github.com/jmigpin/xsynth/internal/config"
)

var (
	clickButton  uint8
	clickPress   bool
	clickRelease bool
)

var clickCmd = &cobra.Command{
	Use:   "click <x> <y>",
	Short: "Press and release a pointer button",
	Args:  cobra.ExactArgs(2),
	RunE:  runClick,
}

func init() {
	clickCmd.Flags().Uint8VarP(&clickButton, "button", "b", 0, "Pointer button (defaults from config)")
	clickCmd.Flags().BoolVar(&clickPress, "press", false, "Press only")
	clickCmd.Flags().BoolVar(&clickRelease, "release", false, "Release only")
}

func runClick(cmd *cobra.Command, args []string) error {
	x, err := parseCoord(args[0])
	if err != nil {
		return err
	}
	y, err := parseCoord(args[1])
	if err != nil {
		return err
	}
	button := clickButton
	if button == 0 {
		button = config.Get().Button
	}

	syn, err := newSynth()
	if err != nil {
		return err
	}
	defer syn.Close()

	if clickPress {
		return syn.Click(x, y, button, true)
	}
	if clickRelease {
		return syn.Click(x, y, button, false)
	}
	if err := syn.Click(x, y, button, true); err != nil {
		return err
	}
	return syn.Click(x, y, button, false)
}
