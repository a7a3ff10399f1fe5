package fits

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnitNotFound = errors.New("image unit not found")
	ErrNotImage     = errors.New("unit holds no image data")
)

// HDU selects a header/data unit by 1-based index or by EXTNAME.
type HDU struct {
	Index int
	Name  string
}

// Primary selects the first unit of a file.
var Primary = HDU{Index: 1}

func HDUIndex(i int) HDU { return HDU{Index: i} }
func HDUName(name string) HDU { return HDU{Name: name} }

func (h HDU) IsNamed() bool { return h.Name != "" }

func (h HDU) String() string {
	if h.IsNamed() {
		return strconv.Quote(h.Name)
	}
	return strconv.Itoa(h.Index)
}

// Validate rejects selectors that cannot address any unit.
func (h HDU) Validate() error {
	if h.IsNamed() {
		return nil
	}
	if h.Index < 1 {
		return fmt.Errorf("hdu index must be >= 1, got %d", h.Index)
	}
	return nil
}
