package assemble

import (
	"fmt"
	"log/slog"

	"calibcat/internal/calibdata"
	"calibcat/internal/config"
	"calibcat/internal/fits"
	"calibcat/internal/logging"
	"calibcat/internal/metrics"
)

// frameSize is the run-wide leading image dimensions, fixed by the first
// successfully opened file.
type frameSize struct {
	nx, ny int
}

// categoryROI is the ROI of one category resolved against the frame size.
type categoryROI struct {
	roi    config.ROI
	region fits.Region
}

// loader opens accepted files and pushes their frames.
type loader struct {
	reader  fits.Reader
	data    *calibdata.Data
	metrics *metrics.Run
	logger  *slog.Logger
	size    *frameSize
	rois    map[string]*categoryROI
}

func newLoader(reader fits.Reader, data *calibdata.Data, m *metrics.Run, logger *slog.Logger) *loader {
	return &loader{reader: reader, data: data, metrics: m, logger: logger, rois: map[string]*categoryROI{}}
}

// expect constrains the image of a file before it is read. Zero fields are
// not checked.
type expect struct {
	width, height, frames int
}

// load pushes every frame of the selected unit of path into category and
// returns how many were pushed. Files that cannot be opened, have an
// unsupported shape or do not contain the ROI are skipped with a warning.
// A file whose leading dimensions differ from the first file of the run is
// an error, whatever its category.
func (l *loader) load(category string, roi config.ROI, path string, hdu fits.HDU, exptime float64, want *expect) (int, error) {
	logger := l.logger.With(logging.Category(category), logging.Path(path))

	img, err := l.reader.OpenImage(path, hdu)
	if err != nil {
		logging.WarnWithContext(logger, "cannot open image unit", "image_unreadable",
			logging.String("hdu", hdu.String()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file skipped"),
		)
		return 0, nil
	}

	axes := img.Axes()
	planes, ok := framePlanes(axes)
	if !ok {
		logging.WarnWithContext(logger, "unsupported image dimensionality", "image_shape_unsupported",
			logging.Any("axes", axes),
			logging.String(logging.FieldImpact, "file skipped"),
		)
		return 0, nil
	}
	nx, ny := axes[0], axes[1]

	if want != nil {
		if (want.width > 0 && want.width != nx) || (want.height > 0 && want.height != ny) {
			return 0, fmt.Errorf("%s: %w: declared %dx%d, file is %dx%d", path, ErrIncompatibleSize, want.width, want.height, nx, ny)
		}
		if want.frames > 0 && want.frames != planes {
			return 0, fmt.Errorf("%s: %w: declared %d frames, file has %d", path, ErrIncompatibleSize, want.frames, planes)
		}
	}

	if l.size == nil {
		l.size = &frameSize{nx: nx, ny: ny}
		logger.Debug("frame size resolved", logging.Int("width", nx), logging.Int("height", ny))
	} else if l.size.nx != nx || l.size.ny != ny {
		return 0, fmt.Errorf("%s: %w: run expects %dx%d, file is %dx%d",
			path, ErrIncompatibleSize, l.size.nx, l.size.ny, nx, ny)
	}

	cr, ok := l.rois[category]
	if !ok {
		if !roi.Fits(nx, ny) {
			logging.WarnWithContext(logger, "region of interest outside image", "roi_out_of_bounds",
				logging.String("roi", roi.String()),
				logging.Int("width", nx),
				logging.Int("height", ny),
				logging.String(logging.FieldImpact, "file skipped"),
			)
			return 0, nil
		}
		resolved := roi.Resolve(nx, ny)
		region, err := resolved.Region()
		if err != nil {
			return 0, fmt.Errorf("category %q: %w", category, err)
		}
		cr = &categoryROI{roi: resolved, region: region}
		l.rois[category] = cr
		logger.Debug("category roi resolved", logging.String("roi", resolved.String()))
	}

	for plane := 0; plane < planes; plane++ {
		pixels, err := img.ReadRegion(cr.region, plane)
		if err != nil {
			return plane, fmt.Errorf("read %s plane %d: %w", path, plane, err)
		}
		frame := calibdata.Frame{Width: cr.region.Width(), Height: cr.region.Height(), Pixels: pixels}
		if err := l.data.PushFrame(category, exptime, frame); err != nil {
			return plane, fmt.Errorf("%s: %w", path, err)
		}
		l.metrics.FramePushed(category)
	}
	logger.Debug("frames pushed", logging.Int("frames", planes), logging.Float64(logging.FieldExptime, exptime))
	return planes, nil
}

// roiString reports the resolved ROI of category, or roi when no file of
// the category was opened.
func (l *loader) roiString(category string, roi config.ROI) string {
	if cr, ok := l.rois[category]; ok {
		return cr.roi.String()
	}
	return roi.String()
}

// framePlanes returns how many 2D frames an image of the given axes holds.
// 2D images and 3D images with a single plane hold one.
func framePlanes(axes []int) (int, bool) {
	switch len(axes) {
	case 2:
		return 1, true
	case 3:
		return axes[2], true
	default:
		return 0, false
	}
}
