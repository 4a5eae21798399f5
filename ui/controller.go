package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/calvinmclean/autovend/link"
)

// controllerWrapper runs device operations off the UI goroutine, one at a time, and reports their
// outcome to the log view
type controllerWrapper struct {
	ctx    context.Context
	client *link.Client
	writer io.Writer
	timer  *timer

	mtx  sync.Mutex
	busy bool
}

// run starts op unless another operation is still running and reports whether it started. onDone
// is called with the result
func (c *controllerWrapper) run(name string, op func(context.Context, *link.Client) error, onDone func(error)) bool {
	if c.client == nil {
		fmt.Fprintf(c.writer, "%s: no device connected\n", name)
		return false
	}

	c.mtx.Lock()
	if c.busy {
		c.mtx.Unlock()
		fmt.Fprintf(c.writer, "%s: device busy\n", name)
		return false
	}
	c.busy = true
	c.mtx.Unlock()

	c.timer.Start()
	fmt.Fprintf(c.writer, "%s: started\n", name)

	go func() {
		err := op(c.ctx, c.client)

		c.timer.Stop()
		c.mtx.Lock()
		c.busy = false
		c.mtx.Unlock()

		if err != nil {
			log.WithError(err).Errorf("%s failed", name)
			fmt.Fprintf(c.writer, "%s: %v\n", name, err)
		} else {
			fmt.Fprintf(c.writer, "%s: done\n", name)
		}

		if onDone != nil {
			onDone(err)
		}
	}()

	return true
}
