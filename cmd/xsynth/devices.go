package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmigpin/xsynth/xconn"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the session's input devices",
	RunE:  runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	c, err := xconn.Connect(displayName())
	if err != nil {
		return err
	}
	defer c.Close()

	devs, err := c.ListDevices()
	if err != nil {
		return err
	}
	for _, d := range devs {
		kind := "other"
		if d.Keyboard {
			kind = "keyboard"
		}
		fmt.Printf("%3d  %-8s  %s\n", d.ID, kind, d.Name)
	}
	return nil
}
