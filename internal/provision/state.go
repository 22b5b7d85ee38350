package provision

import "path/filepath"

// ToolState classifies an installed tool directory. Computed fresh by
// filesystem probing; never persisted.
type ToolState int

const (
	ToolAbsent ToolState = iota
	ToolIncomplete
	ToolComplete
)

// MediaState is the probed state of the media bundle install directory.
// Missing lists required file names not found when the state is
// ToolIncomplete.
type MediaState struct {
	State   ToolState
	Missing []string
}

// FuncStatus is the outcome of the final functional probe, for display only.
type FuncStatus int

const (
	MediaNotAvailable FuncStatus = iota
	MediaNonfunctional
	MediaFunctional
)

func (s FuncStatus) String() string {
	switch s {
	case MediaFunctional:
		return "functional"
	case MediaNonfunctional:
		return "installed but not functional"
	default:
		return "not available"
	}
}

// Result is the immutable outcome of provisioning, read by the option
// compiler and the session loop.
type Result struct {
	AdvancedEnabled bool
	BinDir          string
	DownloaderPath  string
	MediaProbe      FuncStatus
}

// ProbeMediaDir inspects binDir for the required executables.
func ProbeMediaDir(binDir string, required []string, fileExists func(string) (bool, error)) MediaState {
	var missing []string
	for _, name := range required {
		ok, err := fileExists(filepath.Join(binDir, name))
		if err != nil || !ok {
			missing = append(missing, name)
		}
	}

	switch {
	case len(missing) == 0:
		return MediaState{State: ToolComplete}
	case len(missing) == len(required):
		return MediaState{State: ToolAbsent, Missing: missing}
	default:
		return MediaState{State: ToolIncomplete, Missing: missing}
	}
}
