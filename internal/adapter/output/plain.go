package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// PlainFormatter formats devices and history as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
	now      func() time.Time
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts, now: time.Now}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// FormatDevices writes one device per line, marking the default with "*".
func (f *PlainFormatter) FormatDevices(w io.Writer, devices []DeviceEntry) error {
	for _, d := range devices {
		if f.template != nil {
			if err := f.template.Execute(w, d); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			continue
		}

		var sb strings.Builder
		if d.Default {
			sb.WriteString("* ")
		} else {
			sb.WriteString("  ")
		}
		if f.opts.ShowIndex {
			sb.WriteString(fmt.Sprintf("[%d] ", d.Index))
		}
		sb.WriteString(d.Name)
		if f.opts.ShowID {
			sb.WriteString(fmt.Sprintf(" (%s)", d.ID))
		}
		sb.WriteString("\n")

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// FormatHistory writes one event per line.
func (f *PlainFormatter) FormatHistory(w io.Writer, events []model.SwitchEvent) error {
	for _, e := range events {
		var sb strings.Builder
		if f.opts.ShowTime {
			sb.WriteString(fmt.Sprintf("%-16s ", humanize.RelTime(e.Time(), f.now(), "ago", "from now")))
		} else {
			sb.WriteString(e.Time().Format(time.DateTime) + " ")
		}
		sb.WriteString(fmt.Sprintf("%-7s ", e.Trigger))
		sb.WriteString(displayName(e))
		if f.opts.ShowID {
			sb.WriteString(fmt.Sprintf(" (%s)", e.ToID))
		}
		sb.WriteString("\n")

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// displayName is the event target name, or its ID when the name is unknown.
func displayName(e model.SwitchEvent) string {
	if e.ToName != "" {
		return e.ToName
	}
	return e.ToID
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			r := []rune(s)
			if maxLen <= 0 || len(r) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return string(r[:maxLen])
			}
			return string(r[:maxLen-3]) + "..."
		},
		"mark": func(isDefault bool) string {
			if isDefault {
				return "*"
			}
			return " "
		},
		"upper": strings.ToUpper,
	}
}
