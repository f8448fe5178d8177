package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by the console handler. Rendering degrades to plain text
// when the terminal reports no color support.
var (
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	msgStyle  = lipgloss.NewStyle().Bold(true)
	strStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	yesStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	noStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	durStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// levelStyle picks the badge color for a record's level.
func levelStyle(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return noStyle
	case l >= slog.LevelWarn:
		return numStyle
	case l >= slog.LevelInfo:
		return yesStyle
	}

	return timeStyle
}

// console is a slog handler that renders records for humans, as either
// a single key=value line or an indented JSON object. The configured
// time layout and the trace level name reach it through the ReplaceAttr
// hook it is built with.
type console struct {
	opts  slog.HandlerOptions
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
	group string
	json  bool
}

func newConsole(w io.Writer, format Format, opts *slog.HandlerOptions) *console {
	return &console{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		json: format == FormatJSON,
	}
}

func (h *console) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *console) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &c
}

func (h *console) WithGroup(name string) slog.Handler {
	c := *h
	if name != "" {
		c.group = h.qualify(name)
	}

	return &c
}

// qualify prefixes key with the open group path, if any.
func (h *console) qualify(key string) string {
	if h.group == "" {
		return key
	}

	return h.group + "." + key
}

// field is one rendered cell of a record: its key and the value text,
// already styled and quoted for the output mode.
type field struct {
	key string
	val string
}

func (h *console) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if s := h.timestamp(r); s != "" {
			fields = append(fields, field{slog.TimeKey, timeStyle.Render(h.quote(s))})
		}
	}

	name := strings.ToUpper(Level(r.Level).String())
	fields = append(fields,
		field{slog.LevelKey, levelStyle(r.Level).Render(h.quote(name))})

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			at := fmt.Sprintf("%s:%d", src.File, src.Line)
			fields = append(fields, field{slog.SourceKey, keyStyle.Render(h.quote(at))})
		}
	}

	fields = append(fields,
		field{slog.MessageKey, msgStyle.Render(h.quote(r.Message))})

	for _, a := range h.attrs {
		fields = append(fields, field{h.qualify(a.Key), h.paint(a.Value)})
	}

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, field{h.qualify(a.Key), h.paint(a.Value)})

		return true
	})

	buf := new(bytes.Buffer)
	if h.json {
		h.renderJSON(buf, fields)
	} else {
		h.renderText(buf, fields)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// timestamp formats the record time through the ReplaceAttr hook so
// the console agrees with the stock slog handlers. An empty result
// omits the timestamp.
func (h *console) timestamp(r slog.Record) string {
	a := slog.Time(slog.TimeKey, r.Time)
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Equal(slog.Attr{}) {
		return ""
	}

	return a.Value.String()
}

func (h *console) renderText(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		switch f.key {
		case slog.TimeKey, slog.LevelKey, slog.MessageKey:
			// Leading fixed fields read better without their keys.
			buf.WriteString(f.val)

		default:
			buf.WriteString(keyStyle.Render(f.key))
			buf.WriteByte('=')
			buf.WriteString(f.val)
		}
	}
}

func (h *console) renderJSON(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(keyStyle.Render(strconv.Quote(f.key)))
		buf.WriteString(": ")
		buf.WriteString(f.val)
	}

	buf.WriteString("\n}")
}

// quote wraps s in JSON string quotes when rendering JSON.
func (h *console) quote(s string) string {
	if h.json {
		return strconv.Quote(s)
	}

	return s
}

// paint renders a value with the style of its kind. LogValuer values
// are resolved first, so error types surface their structured form.
func (h *console) paint(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return strStyle.Render(h.quote(v.String()))

	case slog.KindInt64:
		return numStyle.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return numStyle.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return numStyle.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return yesStyle.Render("true")
		}

		return noStyle.Render("false")

	case slog.KindDuration:
		return durStyle.Render(h.quote(v.Duration().String()))

	case slog.KindTime:
		return timeStyle.Render(h.quote(v.Time().String()))

	case slog.KindGroup:
		return h.paintGroup(v.Group())
	}

	return strStyle.Render(h.quote(fmt.Sprint(v.Any())))
}

// paintGroup renders grouped attributes as a nested object (JSON) or a
// bracketed key=value list (text).
func (h *console) paintGroup(attrs []slog.Attr) string {
	parts := make([]string, 0, len(attrs))

	for _, a := range attrs {
		key := a.Key
		if h.json {
			key = strconv.Quote(key)
		}

		sep := "="
		if h.json {
			sep = ": "
		}

		parts = append(parts, keyStyle.Render(key)+sep+h.paint(a.Value))
	}

	if h.json {
		return "{" + strings.Join(parts, ", ") + "}"
	}

	return "[" + strings.Join(parts, " ") + "]"
}
