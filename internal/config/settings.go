package config

import (
	"fmt"

	"calibcat/internal/fits"
)

// Settings are the values shared between the global scope and categories.
type Settings struct {
	Title                 string
	ROI                   ROI
	Exptime               string
	Dir                   string
	HDU                   fits.HDU
	Files                 []string
	Suffixes              []string
	ExcludeFiles          []string
	IncludeSubdirectories bool
	FollowSymbolicLinks   bool
}

func (s *Settings) get(f Field) any {
	switch f {
	case FieldTitle:
		return s.Title
	case FieldROI:
		return s.ROI
	case FieldExptime:
		return s.Exptime
	case FieldDir:
		return s.Dir
	case FieldHDU:
		return s.HDU
	case FieldFiles:
		return s.Files
	case FieldSuffixes:
		return s.Suffixes
	case FieldExcludeFiles:
		return s.ExcludeFiles
	case FieldIncludeSubdirectories:
		return s.IncludeSubdirectories
	case FieldFollowSymbolicLinks:
		return s.FollowSymbolicLinks
	default:
		return nil
	}
}

// set assigns v to f after checking it against the field's declared type.
// A mismatched value leaves the settings untouched.
func (s *Settings) set(f Field, v any) error {
	var ok bool
	switch f {
	case FieldTitle:
		ok = assign(&s.Title, v)
	case FieldROI:
		ok = assign(&s.ROI, v)
	case FieldExptime:
		ok = assign(&s.Exptime, v)
	case FieldDir:
		ok = assign(&s.Dir, v)
	case FieldHDU:
		hdu, isHDU := v.(fits.HDU)
		if isHDU {
			if err := hdu.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
			}
			s.HDU = hdu
		}
		ok = isHDU
	case FieldFiles:
		ok = assign(&s.Files, v)
	case FieldSuffixes:
		ok = assign(&s.Suffixes, v)
	case FieldExcludeFiles:
		ok = assign(&s.ExcludeFiles, v)
	case FieldIncludeSubdirectories:
		ok = assign(&s.IncludeSubdirectories, v)
	case FieldFollowSymbolicLinks:
		ok = assign(&s.FollowSymbolicLinks, v)
	default:
		return fmt.Errorf("%w: field %d", ErrUnknownKey, f)
	}
	if !ok {
		return fmt.Errorf("%w: %s expects %s, got %T", ErrTypeMismatch, f, f.TypeName(), v)
	}
	return nil
}

func assign[T any](dst *T, v any) bool {
	typed, ok := v.(T)
	if ok {
		*dst = typed
	}
	return ok
}
