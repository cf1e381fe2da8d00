package ollamamodel

import (
	"fmt"
	"time"
)

// DownloadStatus is the lifecycle state of a pull job.
type DownloadStatus string

const (
	DownloadPending     DownloadStatus = "pending"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadFailed      DownloadStatus = "failed"
	DownloadCancelled   DownloadStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s DownloadStatus) Terminal() bool {
	switch s {
	case DownloadCompleted, DownloadFailed, DownloadCancelled:
		return true
	}
	return false
}

// DownloadProgress describes one pull attempt. The current pull call is
// synchronous, so a progress value resolves immediately to Completed or
// Failed; the type still carries the full incremental shape for the
// progress-tracking tool.
type DownloadProgress struct {
	JobID           string         `json:"job_id"`
	ModelName       string         `json:"model_name"`
	Status          DownloadStatus `json:"status"`
	ProgressPercent float64        `json:"progress_percent"`
	BytesDownloaded int64          `json:"bytes_downloaded"`
	TotalBytes      *int64         `json:"total_bytes,omitempty"`
	SpeedMbps       *float64       `json:"download_speed_mbps,omitempty"`
	ETASeconds      *int           `json:"eta_seconds,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// ClampProgress forces the percentage into the 0..100 range.
func (p *DownloadProgress) ClampProgress() {
	if p.ProgressPercent < 0 {
		p.ProgressPercent = 0
	}
	if p.ProgressPercent > 100 {
		p.ProgressPercent = 100
	}
}

// IsActive reports whether the job is still pending or downloading.
func (p *DownloadProgress) IsActive() bool {
	return !p.Status.Terminal()
}

// IsCompleted reports whether the job finished successfully.
func (p *DownloadProgress) IsCompleted() bool {
	return p.Status == DownloadCompleted
}

// SizeHumanProgress renders the downloaded/total byte counts in MB.
func (p *DownloadProgress) SizeHumanProgress() string {
	downloaded := p.BytesDownloaded / (1024 * 1024)
	if p.TotalBytes == nil {
		return fmt.Sprintf("%dMB downloaded", downloaded)
	}
	return fmt.Sprintf("%dMB / %dMB", downloaded, *p.TotalBytes/(1024*1024))
}

// ETAHuman renders the estimated remaining time for display.
func (p *DownloadProgress) ETAHuman() string {
	if p.ETASeconds == nil {
		return "Unknown"
	}
	eta := *p.ETASeconds
	switch {
	case eta < 60:
		return fmt.Sprintf("%ds", eta)
	case eta < 3600:
		return fmt.Sprintf("%dm", eta/60)
	default:
		return fmt.Sprintf("%dh %dm", eta/3600, (eta%3600)/60)
	}
}
