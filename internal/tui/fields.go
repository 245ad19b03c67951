package tui

import (
	"strings"

	"github.com/bilgisen/addconnect/internal/intake"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type fieldKind int

const (
	textField fieldKind = iota
	typeField
	areaField
)

// field is one focusable row of a tab
type field struct {
	name  string
	label string
	kind  fieldKind
	input textinput.Model
	area  textarea.Model
}

func newTextField(name, label, placeholder string) *field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.Width = 48
	return &field{name: name, label: label, kind: textField, input: in}
}

func newAreaField(name, label, placeholder string) *field {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetWidth(50)
	ta.SetHeight(4)
	return &field{name: name, label: label, kind: areaField, area: ta}
}

func (f *field) value() string {
	if f.kind == areaField {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *field) setValue(v string) {
	if f.kind == areaField {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
}

func (f *field) focus() tea.Cmd {
	switch f.kind {
	case areaField:
		return f.area.Focus()
	case textField:
		return f.input.Focus()
	}
	return nil
}

func (f *field) blur() {
	switch f.kind {
	case areaField:
		f.area.Blur()
	case textField:
		f.input.Blur()
	}
}

func (f *field) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.kind {
	case areaField:
		f.area, cmd = f.area.Update(msg)
	case textField:
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

// tab holds the inputs of one intake path
type tab struct {
	kind    models.SourceType
	title   string
	fields  []*field
	focus   int
	typeIdx int // index into models.ContentTypes, -1 when unset
}

func newTab(kind models.SourceType) *tab {
	t := &tab{kind: kind, typeIdx: -1}
	typ := &field{name: "type", label: "Type", kind: typeField}

	switch kind {
	case models.SourceURL:
		t.title = "From URL"
		t.fields = []*field{
			newTextField("url", "URL", "https://example.com/article"),
			typ,
			newTextField("tags", "Tags", "comma, separated"),
		}
	case models.SourceFile:
		t.title = "File Upload"
		t.fields = []*field{
			newTextField("file", "File", "paste or drop a file path"),
			typ,
			newTextField("title", "Title", "at least 3 characters"),
			newTextField("tags", "Tags", "comma, separated"),
		}
	default:
		t.title = "Manual"
		t.fields = []*field{
			typ,
			newTextField("title", "Title", "at least 3 characters"),
			newAreaField("summary", "Summary", "at least 10 characters"),
			newTextField("source_url", "Source URL", "optional"),
			newTextField("tags", "Tags", "comma, separated"),
		}
	}
	return t
}

func (t *tab) field(name string) *field {
	for _, f := range t.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (t *tab) get(name string) string {
	if name == "type" {
		return t.typeValue()
	}
	if f := t.field(name); f != nil {
		return f.value()
	}
	return ""
}

func (t *tab) set(name, v string) {
	if name == "type" {
		t.setType(v)
		return
	}
	if f := t.field(name); f != nil {
		f.setValue(v)
	}
}

func (t *tab) typeValue() string {
	if t.typeIdx < 0 || t.typeIdx >= len(models.ContentTypes) {
		return ""
	}
	return string(models.ContentTypes[t.typeIdx])
}

func (t *tab) setType(v string) {
	t.typeIdx = -1
	for i, ct := range models.ContentTypes {
		if string(ct) == strings.TrimSpace(v) {
			t.typeIdx = i
		}
	}
}

// cycleType moves the type selection by delta, wrapping around
func (t *tab) cycleType(delta int) {
	n := len(models.ContentTypes)
	if t.typeIdx < 0 {
		if delta > 0 {
			t.typeIdx = 0
		} else {
			t.typeIdx = n - 1
		}
		return
	}
	t.typeIdx = ((t.typeIdx+delta)%n + n) % n
}

func (t *tab) current() *field {
	return t.fields[t.focus]
}

// moveFocus shifts focus by delta and returns the blink command
func (t *tab) moveFocus(delta int) tea.Cmd {
	t.current().blur()
	n := len(t.fields)
	t.focus = ((t.focus+delta)%n + n) % n
	return t.current().focus()
}

// load copies form values into the inputs
func (t *tab) load(page *intake.Page) {
	switch t.kind {
	case models.SourceManual:
		v := page.Manual.Values()
		t.set("type", v.Type)
		t.set("title", v.Title)
		t.set("summary", v.Summary)
		t.set("source_url", v.SourceURL)
		t.set("tags", v.Tags)
	case models.SourceURL:
		v := page.URL.Values()
		t.set("url", v.URL)
		t.set("type", v.Type)
		t.set("tags", v.Tags)
	case models.SourceFile:
		v := page.File.Values()
		path := ""
		if v.File != nil {
			path = v.File.Path
		}
		t.set("file", path)
		t.set("type", v.Type)
		t.set("title", v.Title)
		t.set("tags", v.Tags)
	}
}

// store copies the inputs into the form. A typed file path is taken as is;
// one that cannot be selected is reported through the field errors on submit.
func (t *tab) store(page *intake.Page) {
	switch t.kind {
	case models.SourceManual:
		page.Manual.SetValues(intake.ManualValues{
			Type:      t.get("type"),
			Title:     t.get("title"),
			Summary:   t.get("summary"),
			SourceURL: t.get("source_url"),
			Tags:      t.get("tags"),
		})
	case models.SourceURL:
		page.URL.SetValues(intake.URLValues{
			URL:  t.get("url"),
			Type: t.get("type"),
			Tags: t.get("tags"),
		})
	case models.SourceFile:
		page.File.SetMetadata(t.get("type"), t.get("title"), t.get("tags"))
		path := strings.TrimSpace(t.get("file"))
		cur := page.File.Values().File
		if cur == nil || cur.Path != path {
			_ = page.File.ChooseFile(path)
		}
	}
}
