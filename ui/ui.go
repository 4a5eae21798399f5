package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/calvinmclean/autovend"
	"github.com/calvinmclean/autovend/firmware/commands"
	"github.com/calvinmclean/autovend/link"
)

const maxLogLines = 200

// ConsoleUI is the operator console. It is also an io.Writer for the log view
type ConsoleUI struct {
	app    fyne.App
	client *link.Client

	logMtx   sync.Mutex
	logLines []string
	logLabel *widget.Label
}

func NewConsoleUI() *ConsoleUI {
	return &ConsoleUI{
		logLabel: widget.NewLabel(""),
	}
}

// Write appends complete lines to the log view
func (ui *ConsoleUI) Write(p []byte) (int, error) {
	ui.logMtx.Lock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\r\n"), "\n") {
		ui.logLines = append(ui.logLines, strings.TrimRight(line, "\r"))
	}
	if len(ui.logLines) > maxLogLines {
		ui.logLines = ui.logLines[len(ui.logLines)-maxLogLines:]
	}
	text := strings.Join(ui.logLines, "\n")
	ui.logMtx.Unlock()

	fyne.Do(func() {
		ui.logLabel.SetText(text)
	})

	return len(p), nil
}

// Run shows the config window and then the console until the context ends or the app quits
func (ui *ConsoleUI) Run(ctx context.Context) {
	ui.app = app.NewWithID("com.github.calvinmclean.autovend")

	configWindow := NewConfigWindow(ui.app)
	configWindow.OnSubmit = func(cfg link.Config) {
		ui.connect(ctx, cfg)
	}
	configWindow.Show()

	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			ui.app.Quit()
		})
	}()

	ui.app.Run()

	if ui.client != nil {
		err := ui.client.Close()
		if err != nil {
			log.WithError(err).Error("error closing serial port")
		}
	}
}

func (ui *ConsoleUI) connect(ctx context.Context, cfg link.Config) {
	window := ui.app.NewWindow("Auto Vend")

	if cfg.Port != link.SerialPortNone {
		client, err := link.Open(cfg)
		if err != nil {
			window.Show()
			showError(ui.app, window, err)
			return
		}
		client.Logs = ui
		ui.client = client
	}

	c := &controllerWrapper{
		ctx:    ctx,
		client: ui.client,
		writer: ui,
		timer:  newTimer(),
	}

	window.SetContent(ui.content(c))
	window.Resize(fyne.NewSize(520, 640))
	window.Show()
}

func (ui *ConsoleUI) content(c *controllerWrapper) fyne.CanvasObject {
	taskEntry := widget.NewEntry()
	taskEntry.SetText(link.FormatTask(autovend.TestTask))
	taskEntry.SetPlaceHolder("fromX,fromY,toX,toY,width,height")

	readTask := func() (autovend.MoveTask, bool) {
		task, err := commands.ParseTask([]byte(taskEntry.Text))
		if err != nil {
			fmt.Fprintln(ui, err)
			return autovend.MoveTask{}, false
		}
		return task, true
	}

	currentState := stateNone
	stateLabel := widget.NewLabel("Ready")

	var stateButton *widget.Button
	stateButton = widget.NewButton(currentState.next().String(), func() {
		step := currentState.next()
		task, ok := readTask()
		if step == stateDispense && !ok {
			return
		}

		started := c.run(step.String(), func(ctx context.Context, client *link.Client) error {
			return step.run(ctx, client, task)
		}, func(err error) {
			fyne.Do(func() {
				if err == nil {
					currentState = step
					stateLabel.SetText(step.String())
				} else {
					stateLabel.SetText(step.String() + " failed")
				}
				stateButton.SetText(currentState.next().String())
				stateButton.Enable()
			})
		})
		if started {
			stateButton.Disable()
			stateLabel.SetText(step.String() + "...")
		}
	})

	runTaskButton := widget.NewButton("Run Task", func() {
		task, ok := readTask()
		if !ok {
			return
		}
		c.run("Run Task", func(ctx context.Context, client *link.Client) error {
			return client.RunTask(ctx, task)
		}, nil)
	})

	action := func(name string, op func(context.Context, *link.Client) error) *widget.Button {
		return widget.NewButton(name, func() {
			c.run(name, op, nil)
		})
	}

	pairButtons := container.NewGridWithColumns(3,
		action("Home", func(ctx context.Context, client *link.Client) error { return client.Home(ctx) }),
		action("Fast Init", func(ctx context.Context, client *link.Client) error { return client.FastInitSize(ctx) }),
		action("Zero", func(ctx context.Context, client *link.Client) error { return client.ZeroPair(ctx) }),
		action("Run Speed", func(ctx context.Context, client *link.Client) error { return client.SetPairSpeed(ctx) }),
		action("Base", func(ctx context.Context, client *link.Client) error {
			err := client.MoveToBase(ctx)
			if err != nil {
				return err
			}
			return client.AwaitPair(ctx)
		}),
		action("Debug", func(ctx context.Context, client *link.Client) error { return client.Debug(ctx) }),
	)

	trayButtons := container.NewGridWithColumns(4,
		action("Home Tray", func(ctx context.Context, client *link.Client) error { return client.HomeTray(ctx) }),
	)
	for _, stop := range []autovend.TrayStop{autovend.TrayBegin, autovend.TrayEnd, autovend.TrayBase, autovend.TrayFront, autovend.TrayBack} {
		trayButtons.Add(action("Tray "+stop.String(), func(ctx context.Context, client *link.Client) error {
			err := client.MoveTray(ctx, stop)
			if err != nil {
				return err
			}
			return client.AwaitTray(ctx)
		}))
	}

	actuatorRows := container.NewVBox()
	for _, id := range []autovend.ActuatorID{autovend.DoorOutside, autovend.DoorInside, autovend.Lock1, autovend.Lock2} {
		actuatorRows.Add(container.NewGridWithColumns(3,
			widget.NewLabel(id.String()),
			action("Open "+id.String(), func(ctx context.Context, client *link.Client) error {
				err := client.OpenActuator(ctx, id)
				if err != nil {
					return err
				}
				return client.AwaitActuator(ctx, id)
			}),
			action("Close "+id.String(), func(ctx context.Context, client *link.Client) error {
				err := client.CloseActuator(ctx, id)
				if err != nil {
					return err
				}
				return client.AwaitActuator(ctx, id)
			}),
		))
	}

	sensorButtons := container.NewGridWithColumns(5)
	for _, check := range []autovend.SensorCheck{
		autovend.SensorTrayBegin, autovend.SensorTrayEnd,
		autovend.SensorXBegin, autovend.SensorXEnd,
		autovend.SensorYBegin, autovend.SensorYEnd,
	} {
		sensorButtons.Add(action(check.String(), func(ctx context.Context, client *link.Client) error {
			pressed, err := client.CheckSensor(ctx, check)
			if err != nil {
				return err
			}
			fmt.Fprintf(ui, "%s pressed=%t\n", check, pressed)
			return nil
		}))
	}

	logScroll := container.NewVScroll(ui.logLabel)
	logScroll.SetMinSize(fyne.NewSize(300, 150))

	return container.NewVBox(
		container.NewHBox(
			container.NewPadded(stateLabel),
			layout.NewSpacer(),
			container.NewPadded(c.timer.text),
		),
		stateButton,
		widget.NewCard("Task", "", container.NewBorder(nil, nil, nil, runTaskButton, taskEntry)),
		widget.NewCard("Pair", "", pairButtons),
		widget.NewCard("Tray", "", trayButtons),
		widget.NewCard("Doors and Locks", "", actuatorRows),
		widget.NewCard("Sensors", "", sensorButtons),
		widget.NewAccordion(
			widget.NewAccordionItem("Logs", logScroll),
		),
	)
}
