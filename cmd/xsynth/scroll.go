package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var scrollCmd = &cobra.Command{
	Use:   "scroll <dy> [dx]",
	Short: "Scroll the wheel (positive dy is up, positive dx is right)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runScroll,
}

func runScroll(cmd *cobra.Command, args []string) error {
	dy, err := parseTicks(args[0])
	if err != nil {
		return err
	}
	dx := int32(0)
	if len(args) == 2 {
		dx, err = parseTicks(args[1])
		if err != nil {
			return err
		}
	}

	syn, err := newSynth()
	if err != nil {
		return err
	}
	defer syn.Close()
	return syn.Scroll(dx, dy)
}

func parseTicks(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad tick count %q: %w", s, err)
	}
	return int32(v), nil
}
