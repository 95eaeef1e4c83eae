// Package objectkey generates blob-store keys for uploaded media.
package objectkey

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator defines the interface for upload key generation strategies.
type Generator interface {
	// GenerateKey creates the object key an upload will be stored under.
	// Temporary uploads land in the transient namespace.
	GenerateKey(fileName string, temporary bool) (string, error)
}

// fileNamePattern is the allow-list for client-supplied file names. Anything
// outside it is rejected rather than silently rewritten, so the caller sees
// exactly which name was refused.
var fileNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateFileName reports whether the name is acceptable for an upload.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name is required")
	}
	if !fileNamePattern.MatchString(name) {
		return fmt.Errorf("file name %q contains disallowed characters", name)
	}
	return nil
}

// TimestampedGenerator produces keys of the form
// 20060102_150405_<id>.<ext>, optionally under the temporary prefix. The
// client's base name is discarded; only its extension survives, so two
// uploads of the same file never collide.
type TimestampedGenerator struct {
	// TempPrefix, when non-empty, is prepended to keys for temporary
	// uploads.
	TempPrefix string
}

// NewTimestampedGenerator returns a generator using the given transient
// namespace prefix.
func NewTimestampedGenerator(tempPrefix string) *TimestampedGenerator {
	return &TimestampedGenerator{TempPrefix: tempPrefix}
}

func (g *TimestampedGenerator) GenerateKey(fileName string, temporary bool) (string, error) {
	if err := ValidateFileName(fileName); err != nil {
		return "", err
	}

	ext := "unknown"
	if i := strings.LastIndex(fileName, "."); i >= 0 && i < len(fileName)-1 {
		ext = strings.ToLower(fileName[i+1:])
	}

	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	key := fmt.Sprintf("%s_%s.%s", time.Now().UTC().Format("20060102_150405"), id, ext)
	if temporary {
		key = g.TempPrefix + key
	}
	return key, nil
}
