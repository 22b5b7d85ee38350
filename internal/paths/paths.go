package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppPaths captures canonical locations for vidgrab's per-user state.
type AppPaths struct {
	Root         string
	BinDir       string
	LogsDir      string
	DownloadsDir string
	ConfigFile   string
	HistoryFile  string
}

// Resolve determines the application root, honouring VIDGRAB_HOME when set
// and falling back to ~/.vidgrab otherwise. Directories are not created
// here; callers ensure the pieces they need.
func Resolve() (AppPaths, error) {
	root := os.Getenv("VIDGRAB_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return AppPaths{}, fmt.Errorf("detect user home: %w", err)
		}
		root = filepath.Join(home, ".vidgrab")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return AppPaths{}, fmt.Errorf("resolve app root: %w", err)
	}
	return newAppPaths(abs), nil
}

func newAppPaths(root string) AppPaths {
	return AppPaths{
		Root:         root,
		BinDir:       filepath.Join(root, "bin"),
		LogsDir:      filepath.Join(root, "logs"),
		DownloadsDir: filepath.Join(root, "downloads"),
		ConfigFile:   filepath.Join(root, "config.yaml"),
		HistoryFile:  filepath.Join(root, "history.json"),
	}
}

// DownloaderPath returns the managed yt-dlp executable location.
func (p AppPaths) DownloaderPath() string {
	return filepath.Join(p.BinDir, ExecutableName("yt-dlp"))
}

// EnsureBase creates the root, bin and logs directories.
func (p AppPaths) EnsureBase() error {
	for _, dir := range []string{p.Root, p.BinDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExecutableName appends the platform executable suffix.
func ExecutableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
