package generator

import (
	"fmt"
	"sort"

	"github.com/junoblue/launch/pkg/uild"
)

// Options configures the set of formats.
type Options struct {
	Default          string
	SnowflakeMachine int64
	SnowflakeEpoch   int64
	NanoIDSize       int
	NanoIDAlphabet   string
	CUID2Length      int
}

// Formats looks generators up by format name.
type Formats struct {
	registry   *uild.Registry
	generators map[string]Generator
	def        string
}

// NewFormats builds every supported format on top of gen's type registry.
func NewFormats(gen *uild.Generator, opts Options) (*Formats, error) {
	if gen == nil {
		gen = uild.NewGenerator()
	}
	reg := gen.Registry()

	snowflake, err := NewSnowflakeGenerator(reg, opts.SnowflakeMachine, opts.SnowflakeEpoch)
	if err != nil {
		return nil, err
	}
	nanoid, err := NewNanoIDGenerator(reg, opts.NanoIDSize, opts.NanoIDAlphabet)
	if err != nil {
		return nil, err
	}
	cuid, err := NewCUID2Generator(reg, opts.CUID2Length)
	if err != nil {
		return nil, err
	}

	f := &Formats{
		registry: reg,
		generators: map[string]Generator{
			FormatUILD:      NewUILDGenerator(gen),
			FormatUUID:      NewUUIDGenerator(reg),
			FormatULID:      NewULIDGenerator(reg),
			FormatKSUID:     NewKSUIDGenerator(reg),
			FormatNanoID:    nanoid,
			FormatCUID2:     cuid,
			FormatSnowflake: snowflake,
		},
		def: FormatUILD,
	}

	if opts.Default != "" {
		if _, ok := f.generators[opts.Default]; !ok {
			return nil, fmt.Errorf("default format: %w: %s", ErrUnknownFormat, opts.Default)
		}
		f.def = opts.Default
	}
	return f, nil
}

// Get returns the named generator; an empty name selects the default.
func (f *Formats) Get(name string) (Generator, error) {
	if name == "" {
		name = f.def
	}
	g, ok := f.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return g, nil
}

// Default is the format used when a request names none.
func (f *Formats) Default() string {
	return f.def
}

// Names returns the format names, sorted.
func (f *Formats) Names() []string {
	names := make([]string, 0, len(f.generators))
	for name := range f.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry is the entity type registry shared by all formats.
func (f *Formats) Registry() *uild.Registry {
	return f.registry
}
