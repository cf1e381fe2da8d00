// Package ollamamodel defines the value objects exchanged with the Ollama
// daemon: model descriptors, health status, chat requests and responses,
// download progress, and system resource reports. All entities are
// constructed fresh per call and never mutated in place.
package ollamamodel

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/effective-security/ollama-mcp/olerrors"
)

// nameRegexp restricts model names to letters, digits, dots, colons,
// underscores and hyphens, matching what the daemon accepts.
var nameRegexp = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// ValidateModelName trims the given name and checks the allowed charset.
// It returns the trimmed name or a validation failure.
func ValidateModelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", olerrors.Validation("model name cannot be empty")
	}
	if !nameRegexp.MatchString(name) {
		return "", olerrors.Validation("model name %q contains invalid characters", name)
	}
	return name, nil
}

// ModelInfo describes a locally installed model.
type ModelInfo struct {
	Name              string    `json:"name"`
	Size              int64     `json:"size"`
	Digest            string    `json:"digest,omitempty"`
	Modified          time.Time `json:"modified"`
	Families          []string  `json:"families,omitempty"`
	Format            string    `json:"format,omitempty"`
	ParameterSize     string    `json:"parameter_size,omitempty"`
	QuantizationLevel string    `json:"quantization_level,omitempty"`
}

// Validate checks the name charset and the size invariant.
func (m *ModelInfo) Validate() error {
	name, err := ValidateModelName(m.Name)
	if err != nil {
		return err
	}
	m.Name = name
	if m.Size < 0 {
		return olerrors.Validation("model %q has negative size", m.Name)
	}
	return nil
}

// SizeHuman renders the model size with binary-prefix scaling.
func (m *ModelInfo) SizeHuman() string {
	return HumanBytes(m.Size)
}

func (m *ModelInfo) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.SizeHuman())
}

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanBytes renders a byte count with the smallest unit where the scaled
// value is below 1024, with one decimal digit: 512 -> "512.0 B",
// 1073741824 -> "1.0 GB".
func HumanBytes(b int64) string {
	size := float64(b)
	for _, unit := range byteUnits {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f PB", size)
}
