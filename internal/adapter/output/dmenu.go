package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// DmenuFormatter formats one selectable line per device for dmenu/rofi/fuzzel.
// The leading index can be passed back to "audioswitch set".
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// FormatDevices writes devices one per line.
func (f *DmenuFormatter) FormatDevices(w io.Writer, devices []DeviceEntry) error {
	for _, d := range devices {
		if _, err := fmt.Fprintln(w, f.deviceLine(d)); err != nil {
			return err
		}
	}
	return nil
}

// FormatHistory writes events one per line.
func (f *DmenuFormatter) FormatHistory(w io.Writer, events []model.SwitchEvent) error {
	sep := f.separator()
	for _, e := range events {
		line := strings.Join([]string{string(e.Trigger), displayName(e)}, sep)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) deviceLine(d DeviceEntry) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, d); err == nil {
			return sanitizeLine(buf.String())
		}
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, strconv.Itoa(d.Index))
	}
	name := d.Name
	if d.Default {
		name += " *"
	}
	parts = append(parts, name)
	if f.opts.ShowID {
		parts = append(parts, d.ID)
	}
	return sanitizeLine(strings.Join(parts, f.separator()))
}

func (f *DmenuFormatter) separator() string {
	if f.opts.Separator == "" {
		return " | "
	}
	return f.opts.Separator
}

// sanitizeLine keeps a selection on one line.
func sanitizeLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// ParseDmenuSelection returns the leading index of a line written by a
// DmenuFormatter with ShowIndex set.
func ParseDmenuSelection(line, separator string) (int, error) {
	if separator == "" {
		separator = " | "
	}
	head, _, _ := strings.Cut(strings.TrimSpace(line), separator)
	idx, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || idx < 1 {
		return 0, fmt.Errorf("no device index in %q", line)
	}
	return idx, nil
}
