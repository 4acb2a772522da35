// Package aggregate turns raw metric samples into numeric summaries.
// Every function here is a pure function of its input slice: calling it
// twice on the same samples yields identical output, and empty inputs
// produce zeros rather than NaN or errors.
package aggregate

import (
	"sort"
	"time"

	"github.com/atelierhq/pulse/pkg/models"
)

const DefaultTopN = 10

// AverageResponseTime returns the arithmetic mean response time in
// milliseconds, 0 for an empty set.
func AverageResponseTime(samples []models.APIMetric) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for i := range samples {
		sum += samples[i].ResponseTimeMs
	}

	return sum / float64(len(samples))
}

// ErrorRate returns the percentage of samples with status >= 400 over the
// total, 0 when the set is empty. The result is always within [0, 100].
func ErrorRate(samples []models.APIMetric) float64 {
	if len(samples) == 0 {
		return 0
	}

	var failed int
	for i := range samples {
		if samples[i].StatusCode >= 400 {
			failed++
		}
	}

	return float64(failed) / float64(len(samples)) * 100
}

type endpointKey struct {
	method string
	path   string
}

// TopEndpoints groups samples by (method, path) and returns the n busiest
// groups by request count, each with its own average response time and
// error rate. Ties keep first-seen order.
func TopEndpoints(samples []models.APIMetric, n int) []models.EndpointSummary {
	if n <= 0 {
		n = DefaultTopN
	}

	type bucket struct {
		count   int
		errors  int
		timeSum float64
	}

	buckets := make(map[endpointKey]*bucket)
	order := make([]endpointKey, 0)

	for i := range samples {
		key := endpointKey{method: samples[i].Method, path: samples[i].Path}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}

		b.count++
		b.timeSum += samples[i].ResponseTimeMs

		if samples[i].StatusCode >= 400 {
			b.errors++
		}
	}

	summaries := make([]models.EndpointSummary, 0, len(order))

	for _, key := range order {
		b := buckets[key]
		summaries = append(summaries, models.EndpointSummary{
			Method:          key.method,
			Path:            key.path,
			Count:           b.count,
			AvgResponseTime: b.timeSum / float64(b.count),
			ErrorRate:       float64(b.errors) / float64(b.count) * 100,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Count > summaries[j].Count
	})

	if len(summaries) > n {
		summaries = summaries[:n]
	}

	return summaries
}

// TimeBuckets groups system samples into fixed-size buckets (hour
// granularity unless overridden) and averages CPU and memory per bucket.
// The returned series is chronologically ordered.
func TimeBuckets(samples []models.SystemMetric, granularity time.Duration) []models.SeriesPoint {
	if granularity <= 0 {
		granularity = time.Hour
	}

	type bucket struct {
		cpuSum float64
		memSum float64
		count  int
	}

	buckets := make(map[time.Time]*bucket)

	for i := range samples {
		key := samples[i].Timestamp.Truncate(granularity)

		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}

		b.cpuSum += samples[i].CPUPercent
		b.memSum += samples[i].MemPercent
		b.count++
	}

	series := make([]models.SeriesPoint, 0, len(buckets))

	for key, b := range buckets {
		series = append(series, models.SeriesPoint{
			Bucket:     key,
			CPUPercent: b.cpuSum / float64(b.count),
			MemPercent: b.memSum / float64(b.count),
			Samples:    b.count,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Bucket.Before(series[j].Bucket)
	})

	return series
}
