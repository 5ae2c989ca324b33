package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmigpin/xsynth/internal/config"
)

var typeInterval int

var typeCmd = &cobra.Command{
	Use:   "type <text>",
	Short: "Type text on the current layout",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runType,
}

func init() {
	typeCmd.Flags().IntVarP(&typeInterval, "interval", "i", -1, "Pause between characters in milliseconds")
}

func runType(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	interval := typeInterval
	if interval < 0 {
		interval = config.Get().TypeInterval
	}

	syn, err := newSynth()
	if err != nil {
		return err
	}
	defer syn.Close()

	if interval == 0 {
		return syn.TypeString(text)
	}
	first := true
	for _, ru := range text {
		if ru > 0xff {
			continue
		}
		if !first {
			time.Sleep(time.Duration(interval) * time.Millisecond)
		}
		first = false
		if err := syn.SendChar(byte(ru)); err != nil {
			return err
		}
	}
	return nil
}
