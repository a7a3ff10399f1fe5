package config

import "fmt"

// Validate checks the invariants that span scopes: at least one category,
// sources on every category, and an exptime keyword that every category
// can resolve.
func (c *Config) Validate() error {
	if len(c.categories) == 0 {
		return ErrNoCategories
	}
	for _, cat := range c.categories {
		if len(cat.sources) == 0 {
			return keyError(categoryScope(cat.name), keySources, ErrMissingSources)
		}
	}
	if err := c.validateExptime(); err != nil {
		return err
	}
	return c.validateFilters()
}

func (c *Config) validateExptime() error {
	if c.Exptime != "" {
		for _, cat := range c.categories {
			if cat.IsSet(FieldExptime) && cat.own.Exptime == "" {
				return keyError(categoryScope(cat.name), FieldExptime.String(), fmt.Errorf("%w: empty override", ErrMissingExptime))
			}
		}
		return nil
	}
	for _, cat := range c.categories {
		if cat.Exptime() == "" {
			return keyError(categoryScope(cat.name), FieldExptime.String(),
				fmt.Errorf("%w: no global exptime and none set for the category", ErrMissingExptime))
		}
	}
	return nil
}

func (c *Config) validateFilters() error {
	for key, f := range c.Filters {
		if f == nil {
			return keyError(globalScope, key, ErrMalformedFilter)
		}
	}
	for _, cat := range c.categories {
		for key, f := range cat.Filters {
			if f == nil {
				return keyError(categoryScope(cat.name), key, ErrMalformedFilter)
			}
		}
	}
	return nil
}
