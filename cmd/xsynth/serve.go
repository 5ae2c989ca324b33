package main

import (
	"github.com/spf13/cobra"

	"github.com/jmigpin/xsynth/internal/bridge"
	"github.com/jmigpin/xsynth/internal/config"
	"github.com/jmigpin/xsynth/internal/logger"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept input events over websocket and replay them",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (defaults from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveListen
	if addr == "" {
		addr = config.Get().Serve.Listen
	}

	syn, err := newSynth()
	if err != nil {
		return err
	}
	defer syn.Close()
	logger.Info("engine ready", "display", displayName())

	srv := bridge.NewServer(syn, config.Get().Button)
	return srv.ListenAndServe(addr)
}
