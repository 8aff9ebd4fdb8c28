package ui

import (
	"charm.land/bubbles/v2/help"
	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/pintaildata/pintail/internal/keys"
)

// FormTheme returns a huh theme that matches the current color palette.
// Called each time a form is created to pick up the current theme colors.
func FormTheme() huh.Theme {
	return huh.ThemeFunc(func(isDark bool) *huh.Styles {
		t := huh.ThemeBase(isDark)

		// Focused field styles, active field with left border indicator
		t.Focused.Base = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(ColorPrimary)
		t.Focused.Card = t.Focused.Base
		t.Focused.Title = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
		t.Focused.Description = lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)
		t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(ColorWarning).SetString(" *")
		t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(ColorWarning)

		// Select styles
		t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(ColorPrimary).SetString("> ")
		t.Focused.NextIndicator = lipgloss.NewStyle().Foreground(ColorPrimary).MarginLeft(1).SetString("→")
		t.Focused.PrevIndicator = lipgloss.NewStyle().Foreground(ColorPrimary).MarginRight(1).SetString("←")
		t.Focused.Option = lipgloss.NewStyle().Foreground(ColorText)
		t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)

		// Confirm button styles
		t.Focused.FocusedButton = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			Foreground(ColorTextInverse).
			Background(ColorPrimary)
		t.Focused.BlurredButton = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			Foreground(ColorTextMuted)

		// Text input styles
		t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(ColorPrimary)
		t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(ColorTextMuted)
		t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(ColorPrimary)
		t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(ColorText)

		// Blurred field styles, inactive field with hidden border
		t.Blurred = t.Focused
		t.Blurred.Base = lipgloss.NewStyle().PaddingLeft(2)
		t.Blurred.Card = t.Blurred.Base
		t.Blurred.NextIndicator = lipgloss.NewStyle()
		t.Blurred.PrevIndicator = lipgloss.NewStyle()

		// Group styles
		t.Group.Title = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
		t.Group.Description = lipgloss.NewStyle().Foreground(ColorTextMuted)

		t.FieldSeparator = lipgloss.NewStyle().SetString("\n")
		t.Help = help.New().Styles

		return t
	})
}

// SettingsResult holds the values collected by the settings form.
type SettingsResult struct {
	Model         string
	DataSource    string
	Theme         string
	Notifications bool
}

// SettingsState edits workspace settings with a huh form: default model,
// active data source, color theme, and completion notifications.
type SettingsState struct {
	form        *huh.Form
	result      *SettingsResult
	initialized bool
}

func (*SettingsState) modalState() {}

func (s *SettingsState) Title() string { return "Settings" }

func (s *SettingsState) Help() string {
	return "Tab: next field  Enter: save  Esc: cancel"
}

func (s *SettingsState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, s.form.View(), help)
}

func (s *SettingsState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Enter, keys.Escape:
			// Handled by the app-layer modal handlers
			return s, nil
		}
	}
	m, cmd := s.form.Update(msg)
	s.form = m.(*huh.Form)
	return s, cmd
}

// Result returns the collected settings values.
func (s *SettingsState) Result() SettingsResult {
	return *s.result
}

// NewSettingsState creates the settings form seeded with current values.
func NewSettingsState(models []string, currentModel, dataSource, currentTheme string, notifications bool) *SettingsState {
	result := &SettingsResult{
		Model:         currentModel,
		DataSource:    dataSource,
		Theme:         currentTheme,
		Notifications: notifications,
	}

	modelOptions := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		modelOptions = append(modelOptions, huh.NewOption(m, m))
	}

	themeOptions := make([]huh.Option[string], 0, len(ThemeNames()))
	for _, name := range ThemeNames() {
		themeOptions = append(themeOptions, huh.NewOption(GetTheme(name).Name, string(name)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model").
				Options(modelOptions...).
				Value(&result.Model),
			huh.NewInput().
				Title("Data source").
				Placeholder("none").
				Value(&result.DataSource),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themeOptions...).
				Value(&result.Theme),
			huh.NewConfirm().
				Title("Desktop notifications").
				Affirmative("On").
				Negative("Off").
				Value(&result.Notifications),
		),
	).WithTheme(FormTheme()).WithShowHelp(false)

	// Init eagerly so the form renders correctly on first View
	form.Init()

	return &SettingsState{form: form, result: result}
}
