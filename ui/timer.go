package ui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// timer shows how long the running step has taken. It keeps the last value once stopped
type timer struct {
	mtx       sync.Mutex
	startTime time.Time
	stop      chan struct{}
	text      *canvas.Text
}

func newTimer() *timer {
	return &timer{
		text: canvas.NewText("00:00.000", nil),
	}
}

// Start restarts the timer from zero
func (t *timer) Start() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.stop != nil {
		close(t.stop)
	}
	t.startTime = time.Now()
	t.stop = make(chan struct{})

	go t.tick(t.startTime, t.stop)
}

// Stop freezes the displayed time
func (t *timer) Stop() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *timer) tick(start time.Time, stop chan struct{}) {
	ticker := time.NewTicker(64 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		elapsed := time.Since(start)
		fyne.Do(func() {
			t.text.Text = formatElapsed(elapsed)
			t.text.Refresh()
		})
	}
}

func formatElapsed(elapsed time.Duration) string {
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60
	millis := int(elapsed.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}
