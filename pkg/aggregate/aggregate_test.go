package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/pulse/pkg/models"
)

func apiSample(method, path string, status int, respTime float64) models.APIMetric {
	return models.APIMetric{
		Method:         method,
		Path:           path,
		StatusCode:     status,
		ResponseTimeMs: respTime,
		Timestamp:      time.Now(),
	}
}

func TestAverageResponseTime(t *testing.T) {
	tests := []struct {
		name    string
		samples []models.APIMetric
		want    float64
	}{
		{
			name:    "empty set returns zero",
			samples: nil,
			want:    0,
		},
		{
			name: "single sample",
			samples: []models.APIMetric{
				apiSample("GET", "/orders", 200, 120),
			},
			want: 120,
		},
		{
			name: "mean of several",
			samples: []models.APIMetric{
				apiSample("GET", "/orders", 200, 100),
				apiSample("GET", "/orders", 200, 200),
				apiSample("GET", "/orders", 200, 300),
			},
			want: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AverageResponseTime(tt.samples), 0.0001)
		})
	}
}

func TestErrorRate(t *testing.T) {
	t.Run("empty set returns zero", func(t *testing.T) {
		assert.Zero(t, ErrorRate(nil))
	})

	t.Run("100 samples with 6 failures", func(t *testing.T) {
		samples := make([]models.APIMetric, 0, 100)
		for i := 0; i < 94; i++ {
			samples = append(samples, apiSample("GET", "/orders", 200, 50))
		}

		for i := 0; i < 6; i++ {
			samples = append(samples, apiSample("POST", "/orders", 500, 50))
		}

		assert.InDelta(t, 6.0, ErrorRate(samples), 0.0001)
	})

	t.Run("all failures", func(t *testing.T) {
		samples := []models.APIMetric{
			apiSample("GET", "/fittings", 404, 10),
			apiSample("GET", "/fittings", 500, 10),
		}

		assert.InDelta(t, 100.0, ErrorRate(samples), 0.0001)
	})

	t.Run("always within bounds", func(t *testing.T) {
		samples := []models.APIMetric{
			apiSample("GET", "/a", 200, 1),
			apiSample("GET", "/b", 400, 1),
			apiSample("GET", "/c", 503, 1),
		}

		rate := ErrorRate(samples)
		assert.GreaterOrEqual(t, rate, 0.0)
		assert.LessOrEqual(t, rate, 100.0)
	})
}

func TestTopEndpoints(t *testing.T) {
	t.Run("busiest endpoint first", func(t *testing.T) {
		samples := []models.APIMetric{
			apiSample("GET", "/orders", 200, 100),
			apiSample("POST", "/orders", 201, 150),
			apiSample("GET", "/orders", 200, 120),
			apiSample("GET", "/orders", 500, 90),
		}

		top := TopEndpoints(samples, 10)
		require.Len(t, top, 2)

		assert.Equal(t, "GET", top[0].Method)
		assert.Equal(t, "/orders", top[0].Path)
		assert.Equal(t, 3, top[0].Count)
		assert.InDelta(t, (100.0+120+90)/3, top[0].AvgResponseTime, 0.0001)
		assert.InDelta(t, 100.0/3, top[0].ErrorRate, 0.0001)

		assert.Equal(t, "POST", top[1].Method)
		assert.Equal(t, 1, top[1].Count)
	})

	t.Run("truncates to n", func(t *testing.T) {
		samples := []models.APIMetric{
			apiSample("GET", "/a", 200, 1),
			apiSample("GET", "/b", 200, 1),
			apiSample("GET", "/c", 200, 1),
		}

		assert.Len(t, TopEndpoints(samples, 2), 2)
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		samples := []models.APIMetric{
			apiSample("GET", "/first", 200, 1),
			apiSample("GET", "/second", 200, 1),
		}

		top := TopEndpoints(samples, 10)
		require.Len(t, top, 2)
		assert.Equal(t, "/first", top[0].Path)
		assert.Equal(t, "/second", top[1].Path)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, TopEndpoints(nil, 10))
	})
}

func TestTimeBuckets(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	samples := []models.SystemMetric{
		{CPUPercent: 40, MemPercent: 50, Timestamp: base.Add(10 * time.Minute)},
		{CPUPercent: 60, MemPercent: 70, Timestamp: base.Add(20 * time.Minute)},
		{CPUPercent: 90, MemPercent: 80, Timestamp: base.Add(90 * time.Minute)},
	}

	series := TimeBuckets(samples, time.Hour)
	require.Len(t, series, 2)

	assert.Equal(t, base, series[0].Bucket)
	assert.InDelta(t, 50.0, series[0].CPUPercent, 0.0001)
	assert.InDelta(t, 60.0, series[0].MemPercent, 0.0001)
	assert.Equal(t, 2, series[0].Samples)

	assert.Equal(t, base.Add(time.Hour), series[1].Bucket)
	assert.InDelta(t, 90.0, series[1].CPUPercent, 0.0001)
	assert.Equal(t, 1, series[1].Samples)
}

func TestAggregationIdempotent(t *testing.T) {
	samples := []models.APIMetric{
		apiSample("GET", "/orders", 200, 100),
		apiSample("GET", "/orders", 404, 250),
		apiSample("POST", "/fittings", 201, 80),
	}

	first := TopEndpoints(samples, 10)
	second := TopEndpoints(samples, 10)

	assert.Equal(t, first, second)
	assert.Equal(t, AverageResponseTime(samples), AverageResponseTime(samples))
	assert.Equal(t, ErrorRate(samples), ErrorRate(samples))
}
