package column

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownFormatter indicates a formatter or styler name with no entry.
var ErrUnknownFormatter = errors.New("unknown formatter")

// Date layouts used by the built-in formatters.
const (
	DateLayout     = "Jan 2, 2006"
	DateTimeLayout = "Jan 2, 2006 15:04"
)

// DateFormatter parses RFC 3339 timestamps and renders them with layout.
// Unparsable input is reported as an error; the caller decides what to show.
func DateFormatter(layout string) Formatter {
	return func(raw any) (string, error) {
		var t time.Time
		switch v := raw.(type) {
		case time.Time:
			t = v
		case string:
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return "", fmt.Errorf("format date %q: %w", v, err)
			}
			t = parsed
		case nil:
			return "", nil
		default:
			return "", fmt.Errorf("format date: unsupported type %T", raw)
		}
		return t.UTC().Format(layout), nil
	}
}

// UpperFormatter renders the default string form in upper case.
func UpperFormatter(raw any) (string, error) {
	return strings.ToUpper(DefaultString(raw)), nil
}

// LowerFormatter renders the default string form in lower case.
func LowerFormatter(raw any) (string, error) {
	return strings.ToLower(DefaultString(raw)), nil
}

// BadgeStyler returns "badge.<value>" in lower case, so a theme can colour
// each member of an enumeration separately.
func BadgeStyler(raw any) string {
	s := strings.ToLower(strings.TrimSpace(DefaultString(raw)))
	if s == "" {
		return ""
	}
	return "badge." + s
}

// Formatters is a name-indexed set of formatters and stylers, used when
// column definitions come from a dataset file.
type Formatters struct {
	formats map[string]Formatter
	stylers map[string]Styler
}

// DefaultFormatters returns the built-in set:
// "date", "datetime", "upper", "lower" formatters and the "badge" styler.
func DefaultFormatters() *Formatters {
	return &Formatters{
		formats: map[string]Formatter{
			"date":     DateFormatter(DateLayout),
			"datetime": DateFormatter(DateTimeLayout),
			"upper":    UpperFormatter,
			"lower":    LowerFormatter,
		},
		stylers: map[string]Styler{
			"badge": BadgeStyler,
		},
	}
}

// RegisterFormatter adds or replaces a formatter.
func (f *Formatters) RegisterFormatter(name string, fn Formatter) {
	f.formats[name] = fn
}

// RegisterStyler adds or replaces a styler.
func (f *Formatters) RegisterStyler(name string, fn Styler) {
	f.stylers[name] = fn
}

// Formatter returns the formatter registered under name.
// The empty name yields nil, meaning the default string form.
func (f *Formatters) Formatter(name string) (Formatter, error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := f.formats[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormatter, name)
	}
	return fn, nil
}

// Styler returns the styler registered under name.
// The empty name yields nil.
func (f *Formatters) Styler(name string) (Styler, error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := f.stylers[name]
	if !ok {
		return nil, fmt.Errorf("%w: styler %q", ErrUnknownFormatter, name)
	}
	return fn, nil
}
