package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/calvinmclean/autovend/api"
	"github.com/calvinmclean/autovend/firmware/commands"
	"github.com/calvinmclean/autovend/link"
	"github.com/calvinmclean/autovend/ui"
)

func main() {
	var (
		port, serveAddr, taskInput string
		baudRate                   int
		timeout                    time.Duration
		home, verbose              bool
	)
	flag.StringVar(&port, "port", "", "Serial port of the device. Defaults to AUTOVEND_PORT or the first USB serial port")
	flag.IntVar(&baudRate, "baud", 0, "Baud rate. Defaults to AUTOVEND_BAUD or 115200")
	flag.DurationVar(&timeout, "timeout", 0, "Maximum time to wait for a move. Defaults to AUTOVEND_TIMEOUT or no limit")
	flag.StringVar(&serveAddr, "serve", "", "Serve the task API on this address, for example \":8080\"")
	flag.StringVar(&taskInput, "task", "", "Run a single task in the format \"fromX,fromY,toX,toY,width,height\"")
	flag.BoolVar(&home, "home", false, "Initialize and home the device before anything else")
	flag.BoolVar(&verbose, "verbose", false, "Log serial traffic and enable verbose device output")
	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if os.Getenv("ENABLE_UI") == "true" {
		ui.NewConsoleUI().Run(ctx)
		return
	}

	cfg, err := linkConfig(port, baudRate, timeout)
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	client, err := link.Open(cfg)
	if err != nil {
		log.Fatalf("error connecting to device: %v", err)
	}
	defer client.Close()
	client.Logs = os.Stderr

	if verbose {
		err = client.Verbose(ctx)
		if err != nil {
			log.Fatalf("error enabling verbose output: %v", err)
		}
	}

	if home {
		err = homeDevice(ctx, client)
		if err != nil {
			log.Fatalf("error homing device: %v", err)
		}
	}

	switch {
	case taskInput != "":
		task, err := commands.ParseTask([]byte(taskInput))
		if err != nil {
			log.Fatalf("error parsing task: %v", err)
		}
		err = client.RunTask(ctx, task)
		if err != nil {
			log.Fatalf("error running task: %v", err)
		}
	case serveAddr != "":
		err = api.New(client).ListenAndServe(ctx, serveAddr)
		if err != nil {
			log.Fatalf("error serving API: %v", err)
		}
	default:
		err = runCLI(ctx, client)
		if err != nil {
			log.Fatalf("error running CLI: %v", err)
		}
	}
}

// linkConfig reads the environment and lets flags override it
func linkConfig(port string, baudRate int, timeout time.Duration) (link.Config, error) {
	if port != "" {
		os.Setenv("AUTOVEND_PORT", port)
	}

	cfg, err := link.ConfigFromEnv()
	if err != nil {
		return link.Config{}, err
	}

	if baudRate != 0 {
		cfg.BaudRate = baudRate
	}
	if timeout != 0 {
		cfg.Timeout = timeout
	}

	return cfg, nil
}

func homeDevice(ctx context.Context, client *link.Client) error {
	err := client.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	return client.Home(ctx)
}

// runCLI sends each line from stdin as one command and prints the result
func runCLI(ctx context.Context, client *link.Client) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// the set task command takes the rest of the line
		if input[0] == commands.SetTaskCommand.Flag {
			input += "\n"
		}

		result, err := client.Send(ctx, input)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(result)
	}

	return scanner.Err()
}
