package ollamamodel

// GPUVendor identifies the GPU manufacturer.
type GPUVendor string

const (
	GPUVendorNvidia  GPUVendor = "nvidia"
	GPUVendorAMD     GPUVendor = "amd"
	GPUVendorIntel   GPUVendor = "intel"
	GPUVendorApple   GPUVendor = "apple"
	GPUVendorUnknown GPUVendor = "unknown"
)

// GPUInfo describes one detected GPU.
type GPUInfo struct {
	Name              string    `json:"name"`
	Vendor            GPUVendor `json:"vendor"`
	MemoryMB          *int      `json:"memory_mb,omitempty"`
	ComputeCapability string    `json:"compute_capability,omitempty"`
	DriverVersion     string    `json:"driver_version,omitempty"`
}

// MemoryGB returns the GPU memory in gigabytes, or nil when unknown.
func (g *GPUInfo) MemoryGB() *float64 {
	if g.MemoryMB == nil {
		return nil
	}
	gb := float64(*g.MemoryMB) / 1024
	return &gb
}

// IsCompatible reports whether the GPU meets vendor-specific minimums for
// AI workloads: nvidia needs 4GB, amd needs 8GB, apple always qualifies.
func (g *GPUInfo) IsCompatible() bool {
	switch g.Vendor {
	case GPUVendorNvidia:
		return g.MemoryMB != nil && *g.MemoryMB >= 4096
	case GPUVendorAMD:
		return g.MemoryMB != nil && *g.MemoryMB >= 8192
	case GPUVendorApple:
		return true
	}
	return false
}

// SystemResources is a snapshot of the host's capacity.
type SystemResources struct {
	CPUCores           int       `json:"cpu_cores"`
	TotalMemoryGB      float64   `json:"total_memory_gb"`
	AvailableMemoryGB  float64   `json:"available_memory_gb"`
	MemoryUsagePercent float64   `json:"memory_usage_percent"`
	DiskFreeGB         float64   `json:"disk_free_gb"`
	DiskTotalGB        float64   `json:"disk_total_gb"`
	Platform           string    `json:"platform"`
	GPUs               []GPUInfo `json:"gpus,omitempty"`
}

// HasGPU reports whether any detected GPU is compatible.
func (s *SystemResources) HasGPU() bool {
	for i := range s.GPUs {
		if s.GPUs[i].IsCompatible() {
			return true
		}
	}
	return false
}

// GPUCount returns the number of compatible GPUs.
func (s *SystemResources) GPUCount() int {
	n := 0
	for i := range s.GPUs {
		if s.GPUs[i].IsCompatible() {
			n++
		}
	}
	return n
}

// IsAIReady reports whether the host meets the minimum requirements:
// 4GB available memory, 10GB free disk, 2 cores.
func (s *SystemResources) IsAIReady() bool {
	return s.AvailableMemoryGB >= 4.0 && s.DiskFreeGB >= 10.0 && s.CPUCores >= 2
}

// RecommendedModelSize is a coarse sizing hint based on available memory.
func (s *SystemResources) RecommendedModelSize() string {
	switch {
	case s.AvailableMemoryGB >= 16:
		return "large (13B+)"
	case s.AvailableMemoryGB >= 8:
		return "medium (7B)"
	case s.AvailableMemoryGB >= 4:
		return "small (3B)"
	default:
		return "micro (1B)"
	}
}

// ModelRecommendation scores one candidate model for the user's needs.
type ModelRecommendation struct {
	ModelName      string   `json:"model_name"`
	Score          float64  `json:"score"`
	Reasons        []string `json:"reasons"`
	Size           string   `json:"size"`
	MinRAMGB       float64  `json:"min_ram_gb"`
	EstimatedSpeed string   `json:"estimated_speed"`
	Quality        string   `json:"quality"`
	UseCases       []string `json:"use_cases,omitempty"`
}
