//go:build linux

// Command autovend-linux runs the device command loop on a Linux board, or on a simulated board,
// reading commands from stdin and answering on stdout.
package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/calvinmclean/autovend/controller"
	"github.com/calvinmclean/autovend/firmware/commands"
	"github.com/calvinmclean/autovend/firmware/stream"
	"github.com/calvinmclean/autovend/hal"
	"github.com/calvinmclean/autovend/hal/fake"
	"github.com/calvinmclean/autovend/hal/periph"
)

func main() {
	var configPath string
	var sim bool
	flag.StringVar(&configPath, "config", "", "Path to the JSON config")
	flag.BoolVar(&sim, "sim", false, "Use a simulated board instead of GPIO")
	flag.Parse()

	// stdout carries command responses
	log.SetOutput(os.Stderr)

	cfg := controller.DefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			log.Fatalf("error reading config: %v", err)
		}

		cfg, err = controller.LoadConfig(data)
		if err != nil {
			log.Fatalf("error loading config: %v", err)
		}
	}

	var board hal.Board
	if sim {
		board = fake.NewBoard()
	} else {
		b, err := periph.NewBoard()
		if err != nil {
			log.Fatalf("error opening GPIO: %v", err)
		}
		board = b
	}

	c, err := controller.New(board, hal.SystemClock{}, cfg)
	if err != nil {
		log.Fatalf("error creating controller: %v", err)
	}

	err = c.Initialize()
	if err != nil {
		log.Errorf("error initializing: %v", err)
	}

	log.Info("ready for commands")
	commands.Run(stream.New(c, os.Stdin, os.Stdout))
}
