package assemble

import (
	"context"
	"fmt"
	"time"

	"calibcat/internal/calibdata"
	"calibcat/internal/config"
	"calibcat/internal/fits"
	"calibcat/internal/logging"
)

// CalibrationInformation describes one calibration file whose category and
// exposure time are already known, bypassing configuration, discovery and
// filtering.
type CalibrationInformation struct {
	Path         string
	HDU          fits.HDU
	Width        int
	Height       int
	Frames       int
	ExposureTime float64
	Category     string
	Sources      config.Sources
}

// ReadCalibrationInformation pushes the frames of each described file.
// Files are checked against their declared shape; the ROI is
// opts.OverwriteROI or the full image.
func ReadCalibrationInformation(ctx context.Context, infos []CalibrationInformation, opts Options) (*Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "assemble")
	started := time.Now()

	roi := config.FullROI()
	if opts.OverwriteROI != nil {
		roi = *opts.OverwriteROI
	}

	data := calibdata.New(opts.Precision)
	ld := newLoader(opts.reader(), data, opts.Metrics, logger)
	byName := map[string]*CategorySummary{}
	var order []string

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assembly interrupted: %w", err)
		}
		summary, ok := byName[info.Category]
		if !ok {
			summary = &CategorySummary{Name: info.Category, Sources: info.Sources.String(), Rejected: map[string]int{}}
			byName[info.Category] = summary
			order = append(order, info.Category)
			data.AddCategory(info.Category, info.Sources)
		}
		summary.Candidates++
		summary.Accepted++
		opts.Metrics.Discovered(info.Category, 1)
		opts.Metrics.Accepted(info.Category)

		hdu := info.HDU
		if hdu == (fits.HDU{}) {
			hdu = fits.Primary
		}
		want := &expect{width: info.Width, height: info.Height, frames: info.Frames}
		pushed, err := ld.load(info.Category, roi, info.Path, hdu, info.ExposureTime, want)
		if err != nil {
			return nil, err
		}
		summary.Frames += pushed
	}

	summaries := make([]CategorySummary, 0, len(order))
	for _, name := range order {
		s := byName[name]
		s.ROI = ld.roiString(name, roi)
		summaries = append(summaries, *s)
	}
	return finish(data, summaries, opts, started, logger)
}
