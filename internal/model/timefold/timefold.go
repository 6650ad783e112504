// Package timefold provides time-based cross-validation splits for detection
// datasets. Random K-fold leaks future information into training when
// observations are ordered in time; these iterators always train strictly on
// the past and test on a single day.
package timefold

import (
	"fmt"
	"math/rand"
	"time"
)

// Fold is one train/test split as index slices into the dataset.
type Fold struct {
	Train []int
	Test  []int
	// TestDate is the day the test indices fall on.
	TestDate time.Time
}

// Resampling strategies applied to training indices of imbalanced folds.
const (
	ResampleNone       = "none"
	ResampleUpsample   = "upsample"   // duplicate a random sample of positives
	ResampleDownsample = "downsample" // all positives plus an equal random slice of negatives
)

// Config controls fold generation.
type Config struct {
	// StepSize is the distance the test day moves backwards between folds.
	StepSize time.Duration
	// MaxFolds caps the number of generated folds.
	MaxFolds int
	// TestDate is the most recent test day; folds step backwards from here.
	// Defaults to the day of the maximum date in the data.
	TestDate time.Time
	// Resample selects the training-set resampling strategy.
	Resample string
	// ResampleMinPositiveRate triggers resampling when the training
	// positive rate falls below it. Default 0.20.
	ResampleMinPositiveRate float64
	// Seed fixes the resampling RNG.
	Seed int64
}

func (c Config) withDefaults(dates []time.Time) Config {
	if c.StepSize <= 0 {
		c.StepSize = 24 * time.Hour
	}
	if c.MaxFolds <= 0 {
		c.MaxFolds = 10
	}
	if c.TestDate.IsZero() {
		max := dates[0]
		for _, d := range dates[1:] {
			if d.After(max) {
				max = d
			}
		}
		c.TestDate = day(max)
	}
	if c.Resample == "" {
		c.Resample = ResampleNone
	}
	if c.ResampleMinPositiveRate <= 0 {
		c.ResampleMinPositiveRate = 0.20
	}
	return c
}

// Sequential generates folds where the test set is a single day and the
// training set is every observation strictly before that day. The test day
// starts at cfg.TestDate and steps backwards by StepSize per fold, skipping
// days with no observations, until MaxFolds folds exist or the data runs out.
func Sequential(dates []time.Time, labels []bool, cfg Config) ([]Fold, error) {
	if err := validate(dates, labels); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults(dates)
	rng := rand.New(rand.NewSource(cfg.Seed))

	minDate := day(dates[0])
	for _, d := range dates[1:] {
		if day(d).Before(minDate) {
			minDate = day(d)
		}
	}

	var folds []Fold
	testDay := day(cfg.TestDate)
	for len(folds) < cfg.MaxFolds && testDay.After(minDate) {
		test := indicesOnDay(dates, testDay)
		train := indicesBefore(dates, testDay)
		currentTestDay := testDay
		testDay = testDay.Add(-cfg.StepSize)

		if len(test) == 0 || len(train) == 0 {
			continue
		}
		train = maybeResample(train, labels, cfg, rng)
		folds = append(folds, Fold{Train: train, Test: test, TestDate: currentTestDay})
	}

	if len(folds) == 0 {
		return nil, fmt.Errorf("no usable folds: every candidate test day was empty")
	}
	return folds, nil
}

// Stratified generates folds like Sequential, but draws the training set from
// the same calendar window (test day going back windowDays) of every year in
// the data, so an August test day trains on prior Augusts rather than the
// whole history. When the windowed training set's positive rate falls below
// minPositiveRate, the fold falls back to all observations before the test day.
func Stratified(dates []time.Time, labels []bool, windowDays int, minPositiveRate float64, cfg Config) ([]Fold, error) {
	if err := validate(dates, labels); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		return nil, fmt.Errorf("windowDays must be positive")
	}
	if minPositiveRate <= 0 {
		minPositiveRate = 0.05
	}
	cfg = cfg.withDefaults(dates)
	rng := rand.New(rand.NewSource(cfg.Seed))

	minDate, maxDate := day(dates[0]), day(dates[0])
	for _, d := range dates[1:] {
		if day(d).Before(minDate) {
			minDate = day(d)
		}
		if day(d).After(maxDate) {
			maxDate = day(d)
		}
	}

	var folds []Fold
	testDay := day(cfg.TestDate)
	for len(folds) < cfg.MaxFolds && testDay.After(minDate) {
		test := indicesOnDay(dates, testDay)
		currentTestDay := testDay
		testDay = testDay.Add(-cfg.StepSize)
		if len(test) == 0 {
			continue
		}

		train := windowedTrainIndices(dates, currentTestDay, windowDays, minDate.Year(), maxDate.Year())
		if positiveRate(train, labels) < minPositiveRate {
			train = indicesBefore(dates, currentTestDay)
		}
		if len(train) == 0 {
			continue
		}
		train = maybeResample(train, labels, cfg, rng)
		folds = append(folds, Fold{Train: train, Test: test, TestDate: currentTestDay})
	}

	if len(folds) == 0 {
		return nil, fmt.Errorf("no usable folds: every candidate test day was empty")
	}
	return folds, nil
}

// windowedTrainIndices collects indices in [testDay-windowDays, testDay) for
// the test day's own year, and the same calendar window of every other year.
func windowedTrainIndices(dates []time.Time, testDay time.Time, windowDays, yearMin, yearMax int) []int {
	var train []int
	for year := yearMin; year <= yearMax; year++ {
		end := testDay
		if year != testDay.Year() {
			end = time.Date(year, testDay.Month(), testDay.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
		}
		start := end.Add(-time.Duration(windowDays) * 24 * time.Hour)
		for i, d := range dates {
			if !d.Before(start) && d.Before(end) && d.Before(testDay) {
				train = append(train, i)
			}
		}
	}
	return train
}

// maybeResample applies the configured resampling when the training positive
// rate is below the configured minimum.
func maybeResample(train []int, labels []bool, cfg Config, rng *rand.Rand) []int {
	if cfg.Resample == ResampleNone {
		return train
	}
	if positiveRate(train, labels) >= cfg.ResampleMinPositiveRate {
		return train
	}

	var positives, negatives []int
	for _, i := range train {
		if labels[i] {
			positives = append(positives, i)
		} else {
			negatives = append(negatives, i)
		}
	}
	if len(positives) == 0 {
		return train
	}

	switch cfg.Resample {
	case ResampleUpsample:
		// Duplicate a random sample of positives, equal in size to the
		// positive set, on top of the original indices.
		out := make([]int, len(train), len(train)+len(positives))
		copy(out, train)
		for range positives {
			out = append(out, positives[rng.Intn(len(positives))])
		}
		return out
	case ResampleDownsample:
		// All positives plus an equal random slice of negatives.
		if len(negatives) <= len(positives) {
			return train
		}
		out := make([]int, 0, 2*len(positives))
		out = append(out, positives...)
		for _, k := range rng.Perm(len(negatives))[:len(positives)] {
			out = append(out, negatives[k])
		}
		return out
	default:
		return train
	}
}

func positiveRate(idx []int, labels []bool) float64 {
	if len(idx) == 0 {
		return 0
	}
	positives := 0
	for _, i := range idx {
		if labels[i] {
			positives++
		}
	}
	return float64(positives) / float64(len(idx))
}

func indicesOnDay(dates []time.Time, d time.Time) []int {
	next := d.Add(24 * time.Hour)
	var idx []int
	for i, t := range dates {
		if !t.Before(d) && t.Before(next) {
			idx = append(idx, i)
		}
	}
	return idx
}

func indicesBefore(dates []time.Time, d time.Time) []int {
	var idx []int
	for i, t := range dates {
		if t.Before(d) {
			idx = append(idx, i)
		}
	}
	return idx
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validate(dates []time.Time, labels []bool) error {
	if len(dates) == 0 {
		return fmt.Errorf("empty dataset")
	}
	if len(dates) != len(labels) {
		return fmt.Errorf("dates (%d) and labels (%d) differ", len(dates), len(labels))
	}
	return nil
}
