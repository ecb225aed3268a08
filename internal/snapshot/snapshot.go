// Package snapshot loads the current-holdings statement: a JSON file
// describing the positions currently held per ticker, independent of the
// transaction history.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/asheworth/portfolio-analyzer/internal/apperrors"
	"github.com/asheworth/portfolio-analyzer/internal/model"
)

// Loader reads a holdings snapshot file.
type Loader struct {
	path string
}

// NewLoader creates a Loader for the given snapshot file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the snapshot file. A missing file yields an empty snapshot:
// the analyses that depend on it simply produce no results. A present but
// unreadable or malformed file is a structural error and aborts the run.
func (l *Loader) Load() (model.HoldingsSnapshot, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return model.HoldingsSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSnapshotUnreadable, err)
	}

	var holdings model.HoldingsSnapshot
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSnapshotUnreadable, err)
	}

	return holdings, nil
}
