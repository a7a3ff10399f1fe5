package config

// Field names a setting shared by Config and Category.
type Field uint8

const (
	FieldTitle Field = iota
	FieldROI
	FieldExptime
	FieldDir
	FieldHDU
	FieldFiles
	FieldSuffixes
	FieldExcludeFiles
	FieldIncludeSubdirectories
	FieldFollowSymbolicLinks
	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldTitle:                 "title",
	FieldROI:                   "roi",
	FieldExptime:               "exptime",
	FieldDir:                   "dir",
	FieldHDU:                   "hdu",
	FieldFiles:                 "files",
	FieldSuffixes:              "suffixes",
	FieldExcludeFiles:          "exclude_files",
	FieldIncludeSubdirectories: "include_subdirectories",
	FieldFollowSymbolicLinks:   "follow_symbolic_links",
}

var fieldTypes = [fieldCount]string{
	FieldTitle:                 "string",
	FieldROI:                   "roi",
	FieldExptime:               "string",
	FieldDir:                   "string",
	FieldHDU:                   "hdu",
	FieldFiles:                 "list of strings",
	FieldSuffixes:              "list of strings",
	FieldExcludeFiles:          "list of strings",
	FieldIncludeSubdirectories: "boolean",
	FieldFollowSymbolicLinks:   "boolean",
}

// Fields lists every shared setting in declaration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// ParseField resolves a normalized key to a Field.
func ParseField(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return Field(f), true
		}
	}
	return 0, false
}

func (f Field) String() string {
	if f < fieldCount {
		return fieldNames[f]
	}
	return "field(?)"
}

// TypeName describes the Go-side type a field accepts.
func (f Field) TypeName() string {
	if f < fieldCount {
		return fieldTypes[f]
	}
	return "?"
}
