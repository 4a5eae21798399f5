package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/calvinmclean/autovend"
	"github.com/calvinmclean/autovend/firmware/commands"
)

var (
	// ErrTimeout is returned by Await when the device does not report completion in time
	ErrTimeout     = errors.New("timed out waiting for device")
	ErrNoUSBSerial = errors.New("no USB serial ports found")

	errReadTimeout = errors.New("read timeout")
)

// SerialPortNone is offered next to detected ports so the UI can run without a device
const SerialPortNone = "None"

const (
	defaultBaudRate     = 115200
	defaultPollInterval = 50 * time.Millisecond
	readTimeout         = 100 * time.Millisecond
)

// DeviceError is an error reported by the device in response to a command
type DeviceError struct {
	Command string
	Message string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error for %q: %s", e.Command, e.Message)
}

// Config configures the serial connection
type Config struct {
	Port     string
	BaudRate int
	// Timeout bounds every Await. Zero waits until the context ends
	Timeout      time.Duration
	PollInterval time.Duration
}

// ParseConfig builds a Config from string values, as read from the environment or a form
func ParseConfig(port, baudRate, timeout string) (Config, error) {
	cfg := Config{
		Port:         port,
		BaudRate:     defaultBaudRate,
		PollInterval: defaultPollInterval,
	}

	if baudRate != "" {
		baud, err := strconv.Atoi(baudRate)
		if err != nil {
			return Config{}, fmt.Errorf("invalid baud rate %q: %w", baudRate, err)
		}
		cfg.BaudRate = baud
	}

	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// ConfigFromEnv reads AUTOVEND_PORT, AUTOVEND_BAUD and AUTOVEND_TIMEOUT. Without a port, the first
// USB serial port is used
func ConfigFromEnv() (Config, error) {
	cfg, err := ParseConfig(os.Getenv("AUTOVEND_PORT"), os.Getenv("AUTOVEND_BAUD"), os.Getenv("AUTOVEND_TIMEOUT"))
	if err != nil {
		return Config{}, err
	}

	if cfg.Port == "" {
		ports, err := GetSerialPorts()
		if err != nil {
			return Config{}, err
		}
		cfg.Port = ports[0]
	}

	return cfg, nil
}

// GetSerialPorts lists USB serial ports
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var result []string
	for _, port := range ports {
		if port.IsUSB {
			result = append(result, port.Name)
		}
	}

	if len(result) == 0 {
		return nil, ErrNoUSBSerial
	}

	return result, nil
}

// Client sends commands to the device and parses its responses. Only one command is in flight at
// a time
type Client struct {
	cfg    Config
	port   io.ReadWriter
	reader *bufio.Reader
	mtx    sync.Mutex

	// Logs receives every device line that is not a command response
	Logs io.Writer
}

// Open connects to the serial port named in the Config
func Open(cfg Config) (*Client, error) {
	port, err := serial.Open(cfg.Port, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", cfg.Port, err)
	}

	err = port.SetReadTimeout(readTimeout)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error setting read timeout: %w", err)
	}

	log.Infof("connected to %s at %d baud", cfg.Port, cfg.BaudRate)
	return NewClient(port, cfg), nil
}

// NewClient uses an already connected stream
func NewClient(rw io.ReadWriter, cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Client{
		cfg:    cfg,
		port:   rw,
		reader: bufio.NewReader(timeoutReader{rw}),
	}
}

// Close closes the underlying port if it can be closed
func (c *Client) Close() error {
	if closer, ok := c.port.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Send writes a raw command and waits for its response line. Log lines printed by the device in
// the meantime go to Logs
func (c *Client) Send(ctx context.Context, cmd string) (bool, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	log.Debugf("TX %q", cmd)
	_, err := io.WriteString(c.port, cmd)
	if err != nil {
		return false, fmt.Errorf("error writing command %q: %w", cmd, err)
	}

	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return false, fmt.Errorf("error reading response to %q: %w", cmd, err)
		}

		switch {
		case line == ">1":
			log.Debugf("RX %q: true", cmd)
			return true, nil
		case line == ">0":
			log.Debugf("RX %q: false", cmd)
			return false, nil
		case strings.HasPrefix(line, "!"):
			return false, &DeviceError{Command: cmd, Message: line[1:]}
		default:
			c.logLine(line)
		}
	}
}

func (c *Client) readLine(ctx context.Context) (string, error) {
	var line []byte
	for {
		part, err := c.reader.ReadBytes('\n')
		line = append(line, part...)

		switch {
		case err == nil:
			return strings.TrimRight(string(line), "\r\n"), nil
		case errors.Is(err, errReadTimeout):
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
		default:
			return "", err
		}
	}
}

func (c *Client) logLine(line string) {
	if line == "" {
		return
	}
	log.Debugf("device: %s", line)
	if c.Logs != nil {
		fmt.Fprintln(c.Logs, line)
	}
}

// Await repeats a predicate command every PollInterval until it reports true
func (c *Client) Await(ctx context.Context, cmd string) error {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		done, err := c.Send(ctx, cmd)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %q", ErrTimeout, cmd)
			}
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %q", ErrTimeout, cmd)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// timeoutReader turns the empty reads of a serial port with a read timeout into errReadTimeout so
// bufio does not give up on them
type timeoutReader struct {
	r io.Reader
}

func (t timeoutReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n == 0 && err == nil {
		return 0, errReadTimeout
	}
	return n, err
}

func flag(cmd *commands.Command, args ...byte) string {
	return string(append([]byte{cmd.Flag}, args...))
}

// FormatTask encodes a MoveTask as the argument line of the set task command
func FormatTask(task autovend.MoveTask) string {
	fields := []int32{task.FromX, task.FromY, task.ToX, task.ToY, task.Width, task.Height}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = strconv.Itoa(int(f))
	}
	return strings.Join(parts, ",")
}
