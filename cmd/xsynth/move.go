package main

import (
	"github.com/spf13/cobra"
)

var moveRel bool

var moveCmd = &cobra.Command{
	Use:   "move <x> <y>",
	Short: "Move the pointer",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

func init() {
	moveCmd.Flags().BoolVarP(&moveRel, "rel", "r", false, "Move relative to the current position")
}

func runMove(cmd *cobra.Command, args []string) error {
	x, err := parseCoord(args[0])
	if err != nil {
		return err
	}
	y, err := parseCoord(args[1])
	if err != nil {
		return err
	}
	syn, err := newSynth()
	if err != nil {
		return err
	}
	defer syn.Close()

	if moveRel {
		return syn.MovePointerRel(x, y)
	}
	return syn.MovePointer(x, y)
}
