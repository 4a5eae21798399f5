package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/calvinmclean/autovend/link"
)

// settings are the connection values edited in the config window
type settings struct {
	SerialPort string
	BaudRate   string
	Timeout    string
}

func (s settings) linkConfig() (link.Config, error) {
	return link.ParseConfig(s.SerialPort, s.BaudRate, s.Timeout)
}

type ConfigWindow struct {
	app      fyne.App
	OnSubmit func(link.Config)
}

func NewConfigWindow(app fyne.App) *ConfigWindow {
	return &ConfigWindow{
		app: app,
	}
}

func (cw *ConfigWindow) loadFromPreferences(s *settings) {
	prefs := cw.app.Preferences()
	s.SerialPort = prefs.StringWithFallback("serialPort", "")
	s.BaudRate = prefs.StringWithFallback("baudRate", "115200")
	s.Timeout = prefs.StringWithFallback("timeout", "2m")
}

func (cw *ConfigWindow) saveToPreferences(s *settings) {
	prefs := cw.app.Preferences()
	prefs.SetString("serialPort", s.SerialPort)
	prefs.SetString("baudRate", s.BaudRate)
	prefs.SetString("timeout", s.Timeout)
}

func (cw *ConfigWindow) Show() {
	window := cw.app.NewWindow("Auto Vend - Configuration")
	window.Resize(fyne.NewSize(400, 200))
	window.SetCloseIntercept(func() {
		// Treat window close as cancel
		window.Close()
		cw.app.Quit()
	})
	window.Show()

	var s settings
	cw.loadFromPreferences(&s)

	serialPorts, err := link.GetSerialPorts()
	if err != nil && !errors.Is(err, link.ErrNoUSBSerial) {
		showError(cw.app, window, fmt.Errorf("error getting serial ports: %w", err))
		return
	}

	serialPorts = append(serialPorts, link.SerialPortNone)

	serialEntry := widget.NewSelect(serialPorts, nil)
	if s.SerialPort == "" {
		s.SerialPort = serialPorts[0]
	}
	serialEntry.Bind(binding.BindString(&s.SerialPort))

	baudRateEntry := widget.NewEntry()
	baudRateEntry.Bind(binding.BindString(&s.BaudRate))

	timeoutEntry := widget.NewEntry()
	timeoutEntry.Bind(binding.BindString(&s.Timeout))

	submitButton := widget.NewButton("Connect", func() {
		cfg, err := s.linkConfig()
		if err != nil {
			dialog.NewError(err, window).Show()
			return
		}

		cw.saveToPreferences(&s)
		cw.OnSubmit(cfg)
		window.Close()
	})
	submitButton.Disable()

	validateForm := func() {
		if s.SerialPort != "" && s.BaudRate != "" {
			submitButton.Enable()
		} else {
			submitButton.Disable()
		}
	}

	serialEntry.OnChanged = func(_ string) { validateForm() }
	baudRateEntry.OnChanged = func(_ string) { validateForm() }

	validateForm()

	form := container.NewVBox(
		widget.NewCard("Configuration", "", container.NewVBox(
			container.NewGridWithColumns(2,
				widget.NewLabel("Serial Port:"),
				serialEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Baud Rate:"),
				baudRateEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Move Timeout:"),
				timeoutEntry,
			),
		)),
		container.NewHBox(
			widget.NewButton("Cancel", func() {
				window.Close()
				cw.app.Quit()
			}),
			submitButton,
		),
	)

	window.SetContent(form)
}

func showError(app fyne.App, window fyne.Window, err error) {
	d := dialog.NewError(err, window)
	d.SetOnClosed(func() {
		app.Quit()
	})
	d.Show()
}
