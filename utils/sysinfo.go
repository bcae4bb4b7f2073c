package utils

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo is a point-in-time view of the host the bot runs on.
type SystemInfo struct {
	Platform        string  `json:"platform"`
	PlatformVersion string  `json:"platform_version"`
	KernelVersion   string  `json:"kernel_version"`
	GoVersion       string  `json:"go_version"`
	CPUCount        int     `json:"cpu_count"`
	CPUPercent      float64 `json:"cpu_percent"`
	MemoryPercent   float64 `json:"memory_percent"`
	MemoryUsedMB    uint64  `json:"memory_used_mb"`
	MemoryTotalMB   uint64  `json:"memory_total_mb"`
	Goroutines      int     `json:"goroutines"`
	HostUptime      uint64  `json:"host_uptime_seconds"`
}

// CollectSystemInfo gathers host statistics. Probes that fail leave their
// fields zero; the host being unreadable is not an error for callers.
func CollectSystemInfo(ctx context.Context) SystemInfo {
	info := SystemInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	}

	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Platform = h.Platform
		info.PlatformVersion = h.PlatformVersion
		info.KernelVersion = h.KernelVersion
		info.HostUptime = h.Uptime
	} else {
		log.Printf("Failed to read host info: %v", err)
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.CPUCount = n
	}
	if pct, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(pct) > 0 {
		info.CPUPercent = pct[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryPercent = vm.UsedPercent
		info.MemoryUsedMB = vm.Used / 1024 / 1024
		info.MemoryTotalMB = vm.Total / 1024 / 1024
	}
	return info
}
