package configs

import (
	"errors"
	"fmt"
	"io/fs"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/tracker"
)

// pushStateFile is .cred/state.toml:
//
//	[targets.github]
//	API_KEY = "blake3:..."
type pushStateFile struct {
	Targets map[string]map[string]string `toml:"targets"`
}

// LoadPushState reads the push records at path. A missing file is empty state.
func LoadPushState(path string) (tracker.Records, error) {
	file := pushStateFile{}
	if err := LoadTOML(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tracker.Records{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read push state: %v", kerrors.ErrIO, err)
	}
	if file.Targets == nil {
		return tracker.Records{}, nil
	}
	return tracker.Records(file.Targets), nil
}

// SavePushState atomically writes records to path.
func SavePushState(path string, records tracker.Records) error {
	if records == nil {
		records = tracker.Records{}
	}
	if err := SaveTOML(path, pushStateFile{Targets: records}); err != nil {
		return fmt.Errorf("%w: failed to write push state: %v", kerrors.ErrIO, err)
	}
	return nil
}

// OpenPushState loads the records at path into a tracker.State that writes
// every commit straight back to path.
func OpenPushState(path string) (*tracker.State, error) {
	records, err := LoadPushState(path)
	if err != nil {
		return nil, err
	}
	return tracker.NewState(records, func(r tracker.Records) error {
		return SavePushState(path, r)
	}), nil
}
