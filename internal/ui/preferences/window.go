package preferences

import (
	"tomatobar/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// SaveFunc applies saved settings. A non-nil error keeps the window open
// and is shown to the user.
type SaveFunc func(Settings) (model.PomodoroConfig, error)

// Window handles the preferences UI.
type Window struct {
	window    fyne.Window
	settings  Settings
	onSave    SaveFunc
	vaultPath *widget.Entry
	autostart *widget.Check
	config    *widget.Label
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, config model.PomodoroConfig, onSave SaveFunc) *Window {
	window := app.NewWindow("tomatobar Settings")

	vaultPath := widget.NewEntry()
	vaultPath.SetPlaceHolder("Path to your lifeos-pro vault")
	vaultPath.SetText(settings.VaultPath)

	browse := widget.NewButton("Choose...", func() {
		picker := dialog.NewFolderOpen(func(folder fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, window)
				return
			}
			if folder == nil {
				return
			}
			vaultPath.SetText(folder.Path())
		}, window)
		picker.Show()
	})

	autostart := widget.NewCheck("Start tomatobar at login", nil)
	autostart.SetChecked(settings.Autostart)

	configLabel := widget.NewLabel(describeConfig(config))

	form := container.NewVBox(
		widget.NewLabelWithStyle("Vault", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, nil, browse, vaultPath),
		widget.NewLabelWithStyle("Timer (from the vault plugin)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		configLabel,
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(480, 360))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs := &Window{
		window:    window,
		settings:  settings,
		onSave:    onSave,
		vaultPath: vaultPath,
		autostart: autostart,
		config:    configLabel,
	}

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.vaultPath.SetText(settings.VaultPath)
	prefs.autostart.SetChecked(settings.Autostart)
}

// UpdateConfig refreshes the timer configuration summary.
func (prefs *Window) UpdateConfig(config model.PomodoroConfig) {
	prefs.config.SetText(describeConfig(config))
}

func (prefs *Window) handleSave() {
	settings := Settings{
		VaultPath: prefs.vaultPath.Text,
		Autostart: prefs.autostart.Checked,
	}

	if prefs.onSave != nil {
		config, err := prefs.onSave(settings)
		if err != nil {
			dialog.ShowError(err, prefs.window)
			return
		}
		prefs.UpdateConfig(config)
	}

	prefs.settings = settings
	prefs.window.Hide()
}
