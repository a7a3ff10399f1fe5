package config

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnknownKey       = errors.New("unknown key")
	ErrForbiddenKey     = errors.New("key may not be set from a configuration file")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrMalformedFilter  = errors.New("malformed filter")
	ErrUnsupportedType  = errors.New("unsupported value type")
	ErrMissingSources   = errors.New("missing sources")
	ErrMissingExptime   = errors.New("missing exptime")
	ErrNoCategories     = errors.New("no categories defined")
	ErrMalformedROI     = errors.New("malformed roi")
	ErrMalformedSources = errors.New("malformed sources expression")
)

const globalScope = "global"

func categoryScope(name string) string {
	return "category " + strconv.Quote(name)
}

// KeyError reports a configuration problem tied to one key.
type KeyError struct {
	Scope string
	Key   string
	Err   error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s: key %q: %v", e.Scope, e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

func keyError(scope, key string, err error) error {
	return &KeyError{Scope: scope, Key: key, Err: err}
}
