package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/config/loader"
	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/validate"
)

//go:embed data/users.yaml
var usersYAML []byte

// Dataset is a grid description read from a YAML or TOML file: the
// column definitions and the records they project.
type Dataset struct {
	// Title is shown in the toolbar.
	Title string `yaml:"title"`

	Columns []ColumnSpec     `yaml:"columns"`
	Records []map[string]any `yaml:"records"`

	// Source is the file the dataset came from.
	Source string `yaml:"-"`
}

// ColumnSpec is the file form of a column definition. Formatters and
// stylers are referenced by name.
type ColumnSpec struct {
	Key      string   `yaml:"key"`
	Header   string   `yaml:"header"`
	MinWidth int      `yaml:"minWidth"`
	Editable bool     `yaml:"editable"`
	Format   string   `yaml:"format"`
	Badge    string   `yaml:"badge"`
	Enum     []string `yaml:"enum"`

	// Validators are built-in specs such as "required" or "maxlen:40".
	Validators []string `yaml:"validators"`

	// Script is Lua source defining validate(value).
	Script string `yaml:"script"`
}

// DefaultDataset returns the embedded twelve-user sample.
func DefaultDataset() (*Dataset, error) {
	return ParseDataset(loader.FormatYAML, "<embedded users.yaml>", usersYAML)
}

// LoadDataset reads a dataset file. Unlike settings, the file must exist.
func LoadDataset(fsys loader.FileSystem, path string) (*Dataset, error) {
	if fsys == nil {
		fsys = loader.DefaultFS()
	}
	format, err := loader.FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return ParseDataset(format, path, data)
}

// ParseDataset decodes dataset data of the given format.
func ParseDataset(format loader.Format, source string, data []byte) (*Dataset, error) {
	m, err := loader.Parse(format, source, data)
	if err != nil {
		return nil, err
	}
	// Round-trip through YAML so both formats share the struct tags.
	buf, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", source, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(buf, &ds); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDataset, source, err)
	}
	ds.Source = source
	if len(ds.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s: no columns", ErrInvalidDataset, source)
	}
	return &ds, nil
}

// Definitions builds column definitions, resolving formatter and styler
// names in f. Nil f means column.DefaultFormatters.
func (d *Dataset) Definitions(f *column.Formatters) ([]column.Definition, error) {
	if f == nil {
		f = column.DefaultFormatters()
	}
	defs := make([]column.Definition, 0, len(d.Columns))
	for _, c := range d.Columns {
		format, err := f.Formatter(c.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidDataset, c.Key, err)
		}
		badge, err := f.Styler(c.Badge)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidDataset, c.Key, err)
		}
		defs = append(defs, column.Definition{
			Key:      c.Key,
			Header:   c.Header,
			MinWidth: c.MinWidth,
			Editable: c.Editable,
			Format:   format,
			Badge:    badge,
			Enum:     c.Enum,
		})
	}
	return defs, nil
}

// BuildRecords converts the record maps. Every record needs an id.
func (d *Dataset) BuildRecords() ([]*grid.Record, error) {
	records := make([]*grid.Record, 0, len(d.Records))
	for i, fields := range d.Records {
		raw, ok := fields[grid.IDField]
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no %q", ErrInvalidDataset, i, grid.IDField)
		}
		id, err := grid.ParseID(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidDataset, i, err)
		}
		records = append(records, grid.NewRecord(id, fields))
	}
	return records, nil
}

// Policy builds the validation policy from the validators and scripts of
// every column. Enumerations are left to the column definitions. The
// caller owns the policy and must Close it.
func (d *Dataset) Policy() (*validate.Policy, error) {
	p := validate.NewPolicy()
	for _, c := range d.Columns {
		for _, spec := range c.Validators {
			v, err := validate.Parse(spec)
			if err != nil {
				p.Close()
				return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidDataset, c.Key, err)
			}
			p.Register(c.Key, v)
		}
		if c.Script != "" {
			s, err := validate.Lua(c.Script)
			if err != nil {
				p.Close()
				return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidDataset, c.Key, err)
			}
			p.Register(c.Key, s)
		}
	}
	return p, nil
}
