// Package stream runs the firmware command loop against any byte stream, so the controller can be
// driven from a Linux host or a test through pipes instead of a microcontroller's serial port.
package stream

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/calvinmclean/autovend/controller"
)

// ErrNoData is returned by ReadByte when no input is buffered. The command loop polls the
// controller and tries again
var ErrNoData = errors.New("no data")

const (
	inputBuffer = 256
	idleSleep   = 100 * time.Microsecond
)

// Device pairs a Controller with a stream. Input is read by a background goroutine so ReadByte
// never blocks the control loop
type Device struct {
	*controller.Controller

	in chan byte

	mtx  sync.Mutex
	out  io.Writer
	line []byte
}

// New starts reading r in the background. Responses are written to w a line at a time
func New(c *controller.Controller, r io.Reader, w io.Writer) *Device {
	d := &Device{
		Controller: c,
		in:         make(chan byte, inputBuffer),
		out:        w,
	}

	go d.feed(r)

	return d
}

func (d *Device) feed(r io.Reader) {
	defer close(d.in)

	buf := make([]byte, inputBuffer)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			d.in <- b
		}
		if err != nil {
			return
		}
	}
}

// ReadByte returns the next input byte, ErrNoData when none is buffered, or io.EOF after the input
// ended and was drained
func (d *Device) ReadByte() (byte, error) {
	select {
	case b, ok := <-d.in:
		if !ok {
			return 0, io.EOF
		}
		return b, nil
	default:
		time.Sleep(idleSleep)
		return 0, ErrNoData
	}
}

// WriteByte buffers output until a newline completes the line
func (d *Device) WriteByte(b byte) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.line = append(d.line, b)
	if b != '\n' {
		return nil
	}

	_, err := d.out.Write(d.line)
	d.line = d.line[:0]
	return err
}
