package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamancini/alfredwf/internal/fsutil"
)

// DefaultInterval is the check interval for freshly created state, in seconds.
const DefaultInterval int64 = 24 * 60 * 60

// CheckStatusFile is the name of the record holding the outcome of the most
// recent remote check, kept in the workflow data directory.
const CheckStatusFile = "last_check_status.json"

// fallbackName is used for path derivation when the host sets no workflow name.
const fallbackName = "unnamed-workflow"

// State is the persisted updater record for one workflow installation.
type State struct {
	CurrentVersion Version    `json:"current_version"`
	LastCheck      *time.Time `json:"last_check"`
	UpdateInterval int64      `json:"update_interval"`
}

// NewState returns first-run state for version.
func NewState(version Version) *State {
	return &State{
		CurrentVersion: version,
		UpdateInterval: DefaultInterval,
	}
}

// maxIntervalSeconds is the largest interval a time.Duration can hold.
const maxIntervalSeconds = math.MaxInt64 / int64(time.Second)

// IntervalDuration converts an interval in seconds to a duration, saturating
// at the range of time.Duration instead of overflowing.
func IntervalDuration(seconds int64) time.Duration {
	switch {
	case seconds > maxIntervalSeconds:
		seconds = maxIntervalSeconds
	case seconds < -maxIntervalSeconds:
		seconds = -maxIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// Interval returns UpdateInterval as a duration.
func (s *State) Interval() time.Duration {
	return IntervalDuration(s.UpdateInterval)
}

// DueAt reports whether a remote check is due at now. A state that was never
// checked, or has a zero or negative interval, is always due.
func (s *State) DueAt(now time.Time) bool {
	if s.LastCheck == nil || s.UpdateInterval <= 0 {
		return true
	}
	return now.Sub(*s.LastCheck) > s.Interval()
}

// Touch records a check at now. LastCheck never moves backwards.
func (s *State) Touch(now time.Time) {
	now = now.UTC()
	if s.LastCheck != nil && now.Before(*s.LastCheck) {
		return
	}
	s.LastCheck = &now
}

// CheckStatus is the cached result of the last remote check.
type CheckStatus struct {
	UpdateReady bool     `json:"update_ready"`
	Version     *Version `json:"version"`
}

// SanitizeName replaces every rune that is not an ASCII letter or digit
// with '_'.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// StatePath returns <dataDir>/<uid>-<sanitized name>-updater.json.
func StatePath(dataDir, uid, name string) string {
	if name == "" {
		name = fallbackName
	}
	return filepath.Join(dataDir, uid+"-"+SanitizeName(name)+"-updater.json")
}

// Store loads and saves State at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file yields an ErrIO error wrapping
// fs.ErrNotExist.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Op: "load state", Err: err}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, &Error{Kind: ErrSerialization, Op: "load state", Err: fmt.Errorf("%s: %w", s.path, err)}
	}
	return &st, nil
}

// Save writes st to the state file via a tmp file and rename.
func (s *Store) Save(st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return &Error{Kind: ErrSerialization, Op: "save state", Err: err}
	}
	if err := fsutil.AtomicWrite(s.path, data, 0o644); err != nil {
		return &Error{Kind: ErrIO, Op: "save state", Err: err}
	}
	return nil
}

// IsNotExist reports whether err means the state file does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func readCheckStatus(path string) (*CheckStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Op: "read check status", Err: err}
	}
	var cs CheckStatus
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, &Error{Kind: ErrSerialization, Op: "read check status", Err: err}
	}
	return &cs, nil
}

func writeCheckStatus(path string, cs CheckStatus) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return &Error{Kind: ErrSerialization, Op: "write check status", Err: err}
	}
	if err := fsutil.AtomicWrite(path, data, 0o644); err != nil {
		return &Error{Kind: ErrIO, Op: "write check status", Err: err}
	}
	return nil
}
