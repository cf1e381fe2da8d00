// Package sysinfo probes the host's capacity for running local models.
package sysinfo

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/effective-security/xlog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/ollama-mcp", "sysinfo")

const bytesPerGB = 1024 * 1024 * 1024

// Probe takes a snapshot of CPU, memory, disk, and platform, optionally
// attempting GPU detection. Individual probe failures degrade to zero
// values; the call itself never fails.
func Probe(ctx context.Context, detectGPU bool) *ollamamodel.SystemResources {
	res := &ollamamodel.SystemResources{
		Platform: runtime.GOOS,
	}

	if cores, err := cpu.CountsWithContext(ctx, true); err == nil {
		res.CPUCores = cores
	} else {
		logger.ContextKV(ctx, xlog.WARNING, "probe", "cpu", "err", err.Error())
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		res.TotalMemoryGB = float64(vm.Total) / bytesPerGB
		res.AvailableMemoryGB = float64(vm.Available) / bytesPerGB
		res.MemoryUsagePercent = vm.UsedPercent
	} else {
		logger.ContextKV(ctx, xlog.WARNING, "probe", "memory", "err", err.Error())
	}

	if du, err := disk.UsageWithContext(ctx, rootPath()); err == nil {
		res.DiskTotalGB = float64(du.Total) / bytesPerGB
		res.DiskFreeGB = float64(du.Free) / bytesPerGB
	} else {
		logger.ContextKV(ctx, xlog.WARNING, "probe", "disk", "err", err.Error())
	}

	if info, err := host.InfoWithContext(ctx); err == nil && info.Platform != "" {
		res.Platform = info.Platform
	}

	if detectGPU {
		res.GPUs = detectGPUs(ctx)
	}
	return res
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

// detectGPUs tries the vendor tools available on this host. Detection
// failures are logged and yield an empty list.
func detectGPUs(ctx context.Context) []ollamamodel.GPUInfo {
	if gpus := detectNvidia(ctx); len(gpus) > 0 {
		return gpus
	}
	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return []ollamamodel.GPUInfo{{
			Name:   "Apple Silicon",
			Vendor: ollamamodel.GPUVendorApple,
		}}
	}
	return nil
}

// detectNvidia queries nvidia-smi for one CSV row per GPU:
// name, memory.total [MiB], driver_version.
func detectNvidia(ctx context.Context) []ollamamodel.GPUInfo {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=name,memory.total,driver_version",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		logger.ContextKV(ctx, xlog.DEBUG, "probe", "nvidia-smi", "err", err.Error())
		return nil
	}
	return parseNvidiaCSV(string(out))
}

func parseNvidiaCSV(out string) []ollamamodel.GPUInfo {
	var gpus []ollamamodel.GPUInfo
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}
		gpu := ollamamodel.GPUInfo{
			Name:   strings.TrimSpace(fields[0]),
			Vendor: ollamamodel.GPUVendorNvidia,
		}
		if mb, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil {
			gpu.MemoryMB = &mb
		}
		if len(fields) > 2 {
			gpu.DriverVersion = strings.TrimSpace(fields[2])
		}
		gpus = append(gpus, gpu)
	}
	return gpus
}
