package config

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/policy"
	"gopkg.in/ini.v1"
)

// DefaultFileName is the config file looked up inside the snapshot directory.
const DefaultFileName = "rotate.conf"

// Defaults applied when neither the section nor DEFAULT sets a key.
const (
	DefaultMethod   = "copy"
	DefaultInterval = "daily"
	DefaultAmount   = 7
	DefaultOffset   = "0d"
)

var ErrInvalidAmount = errors.New("invalid amount")

// RawSection is a section as written in the config file, after DEFAULT cascading.
//
// Fields:
//   - Method: copy, hardlink or btrfs.
//   - Interval: daily, weekly, monthly, biyearly, yearly or <n>d.
//   - Amount: maximum number of snapshots kept, must be positive.
//   - Offset: <n>d added to all timestamps before bucketing.
type RawSection struct {
	Method   string `ini:"method"`
	Interval string `ini:"interval"`
	Amount   int    `ini:"amount"`
	Offset   string `ini:"offset"`
}

// newRawSection returns a RawSection populated with the built-in defaults.
func newRawSection() RawSection {
	return RawSection{
		Method:   DefaultMethod,
		Interval: DefaultInterval,
		Amount:   DefaultAmount,
		Offset:   DefaultOffset,
	}
}

// Normalize validates every option and converts the section into a policy.Section.
// All invalid options are reported together; any of them invalidates the section.
func (r RawSection) Normalize(name string) (policy.Section, error) {
	var errs []error

	method, err := policy.ResolveMethod(r.Method)
	if err != nil {
		errs = append(errs, err)
	}

	scheme, err := policy.ResolveScheme(r.Interval)
	if err != nil {
		errs = append(errs, err)
	}

	offset, err := policy.ResolveOffset(r.Offset)
	if err != nil {
		errs = append(errs, err)
	}

	if r.Amount <= 0 {
		errs = append(errs, fmt.Errorf("%w %d; must be a positive integer", ErrInvalidAmount, r.Amount))
	}

	if len(errs) > 0 {
		return policy.Section{}, errors.Join(errs...)
	}

	return policy.Section{
		Name:   name,
		Method: method,
		Scheme: scheme,
		Offset: offset,
		Amount: r.Amount,
	}, nil
}

// SectionResult is the outcome of resolving one configured section.
type SectionResult struct {
	Name    string
	Raw     RawSection
	Section policy.Section
	// UnknownKeys lists keys that are not recognized options. They are ignored.
	UnknownKeys []string
	// Err is set when the section is invalid and must be skipped.
	Err error
}

// Valid reports whether the section resolved without errors.
func (r SectionResult) Valid() bool {
	return r.Err == nil
}

// File is a parsed rotate.conf.
type File struct {
	Path string
	// Missing is true when the file does not exist; it then has no sections.
	Missing bool
	// Sections are in declaration order.
	Sections []SectionResult
}

// Names returns the section names in declaration order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Sections))
	for _, s := range f.Sections {
		names = append(names, s.Name)
	}
	return names
}

// Load reads the config file at path. A missing file is not an error.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &File{Path: path, Missing: true}, nil
	}

	f, err := Parse(path)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse resolves all sections from source, which is a file name, []byte or io.Reader
// as accepted by ini.Load.
func Parse(source any) (*File, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, source)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	defaults := cfg.Section(ini.DefaultSection).KeysHash()

	file := &File{}
	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		file.Sections = append(file.Sections, resolveSection(sec.Name(), defaults, sec.KeysHash()))
	}
	return file, nil
}

// resolveSection cascades DEFAULT into the section keys, decodes and validates them.
func resolveSection(name string, defaults, keys map[string]string) SectionResult {
	values := maps.Clone(defaults)
	if values == nil {
		values = map[string]string{}
	}
	maps.Copy(values, keys)

	result := SectionResult{Name: name, Raw: newRawSection()}

	// amount is the only non-string field, so it is the only key that can fail decoding.
	var decodeErr error
	unknown, err := decodeKeys(values, &result.Raw)
	if err != nil {
		decodeErr = fmt.Errorf("%w '%s'; must be a positive integer", ErrInvalidAmount, values["amount"])
	}
	result.UnknownKeys = unknown

	section, err := result.Raw.Normalize(name)
	if err := errors.Join(decodeErr, err); err != nil {
		result.Err = err
		return result
	}

	result.Section = section
	return result
}
