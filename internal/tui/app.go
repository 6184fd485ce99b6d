// Package tui is the terminal rendition of the Citron/Spam gadget: a
// launcher menu and a dialog for reviewing one report, built with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/plantaest/citronspam/internal/wiki"
)

// AppConfig describes the page the App runs on.
type AppConfig struct {
	// Title is the report page the dialog opens.
	Title string

	// Skin decides where the launcher goes.
	Skin string

	// User is the logged-in user.
	User wiki.UserInfo
}

const helpText = `Open the dialog to review the hostnames reported for this page.
Mark each one good (a legitimate site) or bad (spam), then save.
Good-only hostnames are ignored by future reports after the daily sync.`

// App is the top-level Bubble Tea model. It owns the dialog visibility.
type App struct {
	ctx      context.Context
	service  ReportService
	messages Messages
	cfg      AppConfig

	portlets     *Portlets
	supportLinks int

	// linked holds the hostnames the page links to.
	linked map[string]bool

	showDialog bool
	dialog     Dialog
	showHelp   bool

	width  int
	height int
}

// NewApp returns an App with the launcher registered.
func NewApp(ctx context.Context, service ReportService, messages Messages, cfg AppConfig) App {
	a := App{
		ctx:      ctx,
		service:  service,
		messages: messages,
		cfg:      cfg,
		portlets: &Portlets{},
	}
	a.ensureLauncher()
	return a
}

func (a App) ensureLauncher() {
	a.portlets.AddPortletLink(PortletForSkin(a.cfg.Skin), LauncherTarget, LauncherLabel, LauncherID, LauncherLabel)
}

// AttachPage runs on each rendered page content: it binds the support links
// found in html, remembers the hostnames it links to so the dialog can
// highlight them, and makes sure the launcher exists.
func (a *App) AttachPage(html string) error {
	links, err := wiki.ExtractLinks(html)
	if err != nil {
		return fmt.Errorf("failed to parse page content: %w", err)
	}
	a.supportLinks = links.SupportLinks
	a.linked = make(map[string]bool, len(links.Hostnames))
	for _, h := range links.Hostnames {
		a.linked[h] = true
	}
	a.ensureLauncher()
	return nil
}

// DialogVisible reports whether the dialog is shown.
func (a App) DialogVisible() bool {
	return a.showDialog
}

// Portlets returns the launcher registry.
func (a App) Portlets() *Portlets {
	return a.portlets
}

// SupportLinks returns the number of support links bound on the page.
func (a App) SupportLinks() int {
	return a.supportLinks
}

// OpenDialog shows the dialog and starts loading the report.
func (a App) OpenDialog() (App, tea.Cmd) {
	a.showDialog = true
	a.dialog = NewDialog(a.ctx, a.service, a.messages, a.cfg.Title, a.cfg.User)
	a.dialog.linked = a.linked
	return a, a.dialog.Init()
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case closeDialogMsg:
		a.showDialog = false
		return a, nil

	case reportLoadedMsg, feedbackSavedMsg:
		if !a.showDialog {
			return a, nil
		}
		var cmd tea.Cmd
		a.dialog, cmd = a.dialog.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.showDialog {
			var cmd tea.Cmd
			a.dialog, cmd = a.dialog.Update(msg)
			return a, cmd
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Open):
			return a.OpenDialog()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
		}
	}
	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	if a.showDialog {
		return lipgloss.JoinVertical(lipgloss.Left, a.dialog.View(), a.renderHelp(true))
	}

	var b strings.Builder
	for _, l := range a.portlets.Links() {
		b.WriteString(portletHeaderStyle.Render(l.Portlet))
		b.WriteString("\n")
		b.WriteString(rowSelectedStyle.Render("> " + l.Label))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(l.Target))
		b.WriteString("\n")
	}
	if a.supportLinks > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d support link(s) on this page", a.supportLinks)))
		b.WriteString("\n")
	}
	if a.showHelp {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(helpText))
		b.WriteString("\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left, portletStyle.Render(b.String()), a.renderHelp(false))
}

func (a App) renderHelp(dialog bool) string {
	bindings := []key.Binding{keys.Open, keys.Help, keys.Quit}
	if dialog {
		bindings = []key.Binding{keys.Up, keys.Down, keys.Good, keys.Bad, keys.Clear, keys.Expand, keys.Save, keys.Reload, keys.Close}
	}

	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}
