package timefold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoWeeks builds 14 days of observations, 3 per day, where day 8 onward
// contains the positives.
func twoWeeks() ([]time.Time, []bool) {
	var dates []time.Time
	var labels []bool
	start := time.Date(2013, 8, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 14; d++ {
		for k := 0; k < 3; k++ {
			dates = append(dates, start.Add(time.Duration(d)*24*time.Hour).Add(time.Duration(k)*time.Hour))
			labels = append(labels, d >= 7)
		}
	}
	return dates, labels
}

func TestSequential(t *testing.T) {
	dates, labels := twoWeeks()

	t.Run("trains strictly on the past", func(t *testing.T) {
		folds, err := Sequential(dates, labels, Config{MaxFolds: 5})
		require.NoError(t, err)
		require.Len(t, folds, 5)

		for _, fold := range folds {
			require.NotEmpty(t, fold.Train)
			require.NotEmpty(t, fold.Test)
			for _, i := range fold.Test {
				assert.False(t, dates[i].Before(fold.TestDate))
				assert.True(t, dates[i].Before(fold.TestDate.Add(24*time.Hour)))
			}
			for _, i := range fold.Train {
				assert.True(t, dates[i].Before(fold.TestDate), "train index %d leaks the future", i)
			}
		}
	})

	t.Run("steps backwards", func(t *testing.T) {
		folds, err := Sequential(dates, labels, Config{MaxFolds: 3})
		require.NoError(t, err)
		require.Len(t, folds, 3)
		assert.True(t, folds[1].TestDate.Before(folds[0].TestDate))
		assert.True(t, folds[2].TestDate.Before(folds[1].TestDate))
	})

	t.Run("max folds caps output", func(t *testing.T) {
		folds, err := Sequential(dates, labels, Config{MaxFolds: 2})
		require.NoError(t, err)
		assert.Len(t, folds, 2)
	})

	t.Run("explicit test date", func(t *testing.T) {
		testDate := time.Date(2013, 8, 10, 0, 0, 0, 0, time.UTC)
		folds, err := Sequential(dates, labels, Config{MaxFolds: 1, TestDate: testDate})
		require.NoError(t, err)
		assert.Equal(t, testDate, folds[0].TestDate)
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := Sequential(nil, nil, Config{})
		assert.Error(t, err)
	})

	t.Run("mismatched labels", func(t *testing.T) {
		_, err := Sequential(dates, labels[:3], Config{})
		assert.Error(t, err)
	})

	t.Run("no usable folds", func(t *testing.T) {
		single := []time.Time{time.Date(2013, 8, 1, 0, 0, 0, 0, time.UTC)}
		_, err := Sequential(single, []bool{true}, Config{})
		assert.Error(t, err)
	})
}

func TestSequential_Resampling(t *testing.T) {
	// 1 positive, 19 negatives on past days; test day at the end.
	var dates []time.Time
	var labels []bool
	start := time.Date(2013, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		dates = append(dates, start.Add(time.Duration(i%10)*24*time.Hour))
		labels = append(labels, i == 0)
	}
	dates = append(dates, start.Add(12*24*time.Hour))
	labels = append(labels, false)

	positiveCount := func(idx []int) int {
		n := 0
		for _, i := range idx {
			if labels[i] {
				n++
			}
		}
		return n
	}

	t.Run("downsample balances classes", func(t *testing.T) {
		folds, err := Sequential(dates, labels, Config{
			MaxFolds: 1,
			Resample: ResampleDownsample,
			Seed:     24,
		})
		require.NoError(t, err)
		train := folds[0].Train
		assert.Len(t, train, 2*positiveCount(train))
	})

	t.Run("upsample duplicates positives", func(t *testing.T) {
		folds, err := Sequential(dates, labels, Config{
			MaxFolds: 1,
			Resample: ResampleUpsample,
			Seed:     24,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, positiveCount(folds[0].Train))
	})

	t.Run("balanced folds skip resampling", func(t *testing.T) {
		balDates, balLabels := twoWeeks()
		want, err := Sequential(balDates, balLabels, Config{MaxFolds: 1, TestDate: time.Date(2013, 8, 14, 0, 0, 0, 0, time.UTC)})
		require.NoError(t, err)
		got, err := Sequential(balDates, balLabels, Config{
			MaxFolds: 1,
			TestDate: time.Date(2013, 8, 14, 0, 0, 0, 0, time.UTC),
			Resample: ResampleDownsample,
			Seed:     24,
		})
		require.NoError(t, err)
		assert.Equal(t, want[0].Train, got[0].Train)
	})
}

func TestStratified(t *testing.T) {
	// Two fire seasons: August 2012 and August 2013, plus off-season noise.
	var dates []time.Time
	var labels []bool
	for _, year := range []int{2012, 2013} {
		for d := 1; d <= 20; d++ {
			dates = append(dates, time.Date(year, 8, d, 12, 0, 0, 0, time.UTC))
			labels = append(labels, d%3 == 0)
		}
		dates = append(dates, time.Date(year, 1, 15, 0, 0, 0, 0, time.UTC))
		labels = append(labels, false)
	}

	t.Run("window draws from both seasons", func(t *testing.T) {
		folds, err := Stratified(dates, labels, 10, 0.05, Config{
			MaxFolds: 1,
			TestDate: time.Date(2013, 8, 20, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, folds, 1)

		years := map[int]bool{}
		for _, i := range folds[0].Train {
			years[dates[i].Year()] = true
			assert.True(t, dates[i].Before(folds[0].TestDate), "train index leaks the future")
			assert.Equal(t, time.August, dates[i].Month(), "window should exclude off-season rows")
		}
		assert.True(t, years[2012], "expected prior-year august rows in training")
		assert.True(t, years[2013], "expected same-year august rows in training")
	})

	t.Run("sparse positives fall back to full history", func(t *testing.T) {
		folds, err := Stratified(dates, labels, 10, 0.99, Config{
			MaxFolds: 1,
			TestDate: time.Date(2013, 8, 20, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		hasOffSeason := false
		for _, i := range folds[0].Train {
			if dates[i].Month() == time.January {
				hasOffSeason = true
			}
		}
		assert.True(t, hasOffSeason, "fallback should include the full prior history")
	})

	t.Run("invalid window", func(t *testing.T) {
		_, err := Stratified(dates, labels, 0, 0.05, Config{})
		assert.Error(t, err)
	})
}
