package config

import (
	"fmt"
	"strings"

	"calibcat/internal/fits"
)

// Config is the global scope of a calibration catalog.
type Config struct {
	Settings
	Filters map[string]Filter

	categories []*Category
}

// New returns a Config with default settings and no categories.
func New() *Config {
	return &Config{
		Settings: DefaultSettings(),
		Filters:  map[string]Filter{},
	}
}

// Get returns the current value of f.
func (c *Config) Get(f Field) any {
	return c.Settings.get(f)
}

// Set assigns f, rejecting values whose type does not match the field.
func (c *Config) Set(f Field, v any) error {
	if _, ok := v.(inheritMarker); ok {
		return fmt.Errorf("%w: %s cannot inherit at global scope", ErrTypeMismatch, f)
	}
	return c.Settings.set(f, v)
}

// OverwriteROI replaces the global region of interest. Categories that do
// not set their own ROI see the new value immediately.
func (c *Config) OverwriteROI(roi ROI) {
	c.ROI = roi
}

// Categories returns the categories in declaration order.
func (c *Config) Categories() []*Category {
	out := make([]*Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category looks a category up by name.
func (c *Config) Category(name string) (*Category, bool) {
	for _, cat := range c.categories {
		if cat.name == name {
			return cat, true
		}
	}
	return nil, false
}

// AddCategory registers a new category owned by c.
func (c *Config) AddCategory(name string, sources Sources) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name must not be empty")
	}
	if _, exists := c.Category(name); exists {
		return nil, fmt.Errorf("category %q defined twice", name)
	}
	if len(sources) == 0 {
		return nil, keyError(categoryScope(name), "sources", ErrMissingSources)
	}
	cat := &Category{
		name:    name,
		config:  c,
		sources: sources,
		Filters: map[string]Filter{},
	}
	c.categories = append(c.categories, cat)
	return cat, nil
}

type fieldState uint8

const (
	inherit fieldState = iota
	override
)

type inheritMarker struct{}

// Inherit passed to Category.Set clears an override so the field reads
// through to the owning Config again.
var Inherit any = inheritMarker{}

// Category is a named group of calibration files. Unset fields read through
// to the owning Config.
type Category struct {
	name    string
	config  *Config
	sources Sources
	// Filters are local to the category and are not merged with the global
	// filters here; see filter.Merge.
	Filters map[string]Filter

	own   Settings
	state [fieldCount]fieldState
}

func (c *Category) Name() string { return c.name }
func (c *Category) Config() *Config { return c.config }
func (c *Category) Sources() Sources { return c.sources }

// IsSet reports whether the category overrides f.
func (c *Category) IsSet(f Field) bool {
	return f < fieldCount && c.state[f] == override
}

// Get returns the category's own value for f, or the Config's when unset.
func (c *Category) Get(f Field) any {
	if c.IsSet(f) {
		return c.own.get(f)
	}
	return c.config.Get(f)
}

// Set overrides f. Passing Inherit restores read-through to the Config.
func (c *Category) Set(f Field, v any) error {
	if f >= fieldCount {
		return fmt.Errorf("%w: field %d", ErrUnknownKey, f)
	}
	if _, ok := v.(inheritMarker); ok {
		c.Unset(f)
		return nil
	}
	if err := c.own.set(f, v); err != nil {
		return err
	}
	c.state[f] = override
	return nil
}

// Unset clears the override for f.
func (c *Category) Unset(f Field) {
	if f >= fieldCount {
		return
	}
	c.state[f] = inherit
}

func pick[T any](c *Category, f Field, own, parent T) T {
	if c.state[f] == override {
		return own
	}
	return parent
}

func (c *Category) Title() string {
	return pick(c, FieldTitle, c.own.Title, c.config.Title)
}

func (c *Category) ROI() ROI {
	return pick(c, FieldROI, c.own.ROI, c.config.ROI)
}

func (c *Category) Exptime() string {
	return pick(c, FieldExptime, c.own.Exptime, c.config.Exptime)
}

func (c *Category) Dir() string {
	return pick(c, FieldDir, c.own.Dir, c.config.Dir)
}

func (c *Category) HDU() fits.HDU {
	return pick(c, FieldHDU, c.own.HDU, c.config.HDU)
}

func (c *Category) Files() []string {
	return pick(c, FieldFiles, c.own.Files, c.config.Files)
}

func (c *Category) Suffixes() []string {
	return pick(c, FieldSuffixes, c.own.Suffixes, c.config.Suffixes)
}

func (c *Category) ExcludeFiles() []string {
	return pick(c, FieldExcludeFiles, c.own.ExcludeFiles, c.config.ExcludeFiles)
}

func (c *Category) IncludeSubdirectories() bool {
	return pick(c, FieldIncludeSubdirectories, c.own.IncludeSubdirectories, c.config.IncludeSubdirectories)
}

func (c *Category) FollowSymbolicLinks() bool {
	return pick(c, FieldFollowSymbolicLinks, c.own.FollowSymbolicLinks, c.config.FollowSymbolicLinks)
}
