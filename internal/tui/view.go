package tui

import (
	"fmt"
	"strings"

	"github.com/bilgisen/addconnect/internal/intake"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6"))
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("7"))

	labelStyle        = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("7"))
	focusedLabelStyle = labelStyle.Bold(true).Foreground(lipgloss.Color("6"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	chipStyle         = lipgloss.NewStyle().Padding(0, 1)
	activeChipStyle   = chipStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			Width(56)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Add & Connect"))
	b.WriteString("\n\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	form := m.form()
	t := m.tab()
	errs := form.Errors()
	for i, f := range t.fields {
		b.WriteString(m.fieldView(t, f, i == t.focus))
		b.WriteString("\n")
		if msg := errs.Message(f.name); msg != "" {
			b.WriteString(labelStyle.Render(""))
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	if t.kind == models.SourceURL {
		b.WriteString("\n")
		b.WriteString(m.previewView())
	}

	b.WriteString("\n")
	b.WriteString(m.statusView(form))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) tabsView() string {
	tabs := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		label := fmt.Sprintf("F%d %s", i+1, t.title)
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) fieldView(t *tab, f *field, focused bool) string {
	label := labelStyle.Render(f.label)
	if focused {
		label = focusedLabelStyle.Render(f.label)
	}

	switch f.kind {
	case typeField:
		chips := make([]string, 0, len(models.ContentTypes))
		for i, ct := range models.ContentTypes {
			if i == t.typeIdx {
				chips = append(chips, activeChipStyle.Render(ct.Label()))
			} else {
				chips = append(chips, chipStyle.Render(ct.Label()))
			}
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, label, strings.Join(chips, " "))
	case areaField:
		return lipgloss.JoinHorizontal(lipgloss.Top, label, f.area.View())
	}

	view := f.input.View()
	if f.name == "file" {
		if sel := m.page.File.Values().File; sel != nil {
			view += helpStyle.Render(fmt.Sprintf("  %s, %s", sel.Name, humanSize(sel.Size)))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, view)
}

func (m Model) previewView() string {
	form := m.page.URL
	switch {
	case form.PreviewLoading():
		return m.spinner.View() + " Loading preview..."
	case form.PreviewErr() != nil:
		return errorStyle.Render("No preview available")
	}

	p := form.Preview()
	if p.Empty() {
		return helpStyle.Render("ctrl+l loads a preview")
	}

	var lines []string
	if p.Site != nil {
		lines = append(lines, helpStyle.Render(*p.Site))
	}
	if p.Title != nil {
		lines = append(lines, titleStyle.Render(*p.Title))
	}
	if p.Description != nil {
		lines = append(lines, *p.Description)
	}
	if p.Image != nil {
		lines = append(lines, helpStyle.Render("image: "+*p.Image))
	}
	return previewStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) statusView(form intake.Form) string {
	if form.Busy() {
		if form.Kind() == models.SourceFile {
			pct := m.page.File.Progress()
			return m.progress.ViewAs(float64(pct)/100) + fmt.Sprintf(" %d%%", pct)
		}
		return m.spinner.View() + " Saving..."
	}

	st := form.Status()
	switch st.Outcome {
	case intake.OutcomeOK:
		return okStyle.Render("✓ " + st.Message)
	case intake.OutcomeFailed:
		msg := st.Message
		if st.Err != nil {
			msg += ": " + st.Err.Error()
		}
		return errorStyle.Render("✗ " + msg)
	}
	return ""
}

func (m Model) help() string {
	keys := []string{"tab/shift+tab field", "←/→ type", "F1-F3 tab", "ctrl+s submit"}
	if m.tab().kind == models.SourceURL {
		keys = append(keys, "ctrl+l preview")
	}
	keys = append(keys, "ctrl+r reset", "esc quit")
	return strings.Join(keys, " • ")
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
