// Package sysinfo reads host-level resource usage for the collector and
// the health/performance queries.
package sysinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

//go:generate mockgen -destination=mock_sysinfo.go -package=sysinfo github.com/atelierhq/pulse/pkg/sysinfo Provider

// Stats is one host resource snapshot.
type Stats struct {
	CPUPercent  float64
	MemPercent  float64
	DiskPercent float64
	Uptime      time.Duration
}

// Provider supplies host resource usage. Read-only and synchronous.
type Provider interface {
	Snapshot(ctx context.Context) (*Stats, error)
}

// HostProvider reads live host stats via gopsutil.
type HostProvider struct {
	diskPath string
}

// NewHostProvider returns a Provider sampling the local host. diskPath is
// the mount point to report disk usage for, "/" when empty.
func NewHostProvider(diskPath string) *HostProvider {
	if diskPath == "" {
		diskPath = "/"
	}

	return &HostProvider{diskPath: diskPath}
}

// Snapshot reads current CPU, memory and disk usage. CPU is sampled over
// a short interval so the first call is as meaningful as later ones.
func (p *HostProvider) Snapshot(ctx context.Context) (*Stats, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu usage: %w", err)
	}

	stats := &Stats{}
	if len(cpuPercents) > 0 {
		stats.CPUPercent = cpuPercents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}

	stats.MemPercent = vm.UsedPercent

	// Disk and uptime are best effort; cpu/mem drive alerting
	if usage, err := disk.UsageWithContext(ctx, p.diskPath); err == nil {
		stats.DiskPercent = usage.UsedPercent
	}

	if uptime, err := host.UptimeWithContext(ctx); err == nil {
		stats.Uptime = time.Duration(uptime) * time.Second
	}

	return stats, nil
}
