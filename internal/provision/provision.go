package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"

	"vidgrab/internal/bundle"
	"vidgrab/internal/config"
	"vidgrab/internal/execx"
	"vidgrab/internal/paths"
	"vidgrab/internal/prompt"
)

var (
	// ErrDeclined means the user chose not to continue without verified
	// connectivity.
	ErrDeclined = errors.New("user declined to continue without connectivity")

	// ErrDownloaderUnavailable means the primary downloader could not be
	// obtained; nothing else can function without it.
	ErrDownloaderUnavailable = errors.New("downloader could not be obtained")
)

// Provisioner runs the one-time session setup: connectivity precheck,
// downloader presence/update, media bundle install or repair, PATH
// augmentation and a final functional probe.
type Provisioner struct {
	Paths  paths.AppPaths
	Cfg    config.Config
	Prompt prompt.Provider
	Runner execx.Runner
	Fetch  bundle.FetchFunc
	Logger *log.Logger
	Out    io.Writer

	// Install and LookupHost are swappable for tests.
	Install    func(ctx context.Context, opts bundle.Options) bool
	LookupHost func(ctx context.Context, host string) error
}

// Run executes the provisioning sequence and returns the immutable result
// consumed by the rest of the session. The returned error is fatal to the
// session; degraded outcomes are reported through the result instead.
func (p *Provisioner) Run(ctx context.Context) (Result, error) {
	if err := p.checkConnectivity(ctx); err != nil {
		return Result{}, err
	}

	if err := p.Paths.EnsureBase(); err != nil {
		return Result{}, fmt.Errorf("prepare app directories: %w", err)
	}

	if err := p.ensureDownloader(ctx); err != nil {
		return Result{}, err
	}

	advanced, err := p.ensureMediaBundle(ctx)
	if err != nil {
		return Result{}, err
	}

	if advanced {
		prependPath(p.Paths.BinDir)
	}

	result := Result{
		AdvancedEnabled: advanced,
		BinDir:          p.Paths.BinDir,
		DownloaderPath:  p.Paths.DownloaderPath(),
		MediaProbe:      p.probeMediaTool(ctx),
	}

	p.logf("provisioning done: advanced=%v probe=%s", result.AdvancedEnabled, result.MediaProbe)
	return result, nil
}

func (p *Provisioner) checkConnectivity(ctx context.Context) error {
	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.lookup(lookupCtx, connectivityHost)
	if err == nil {
		return nil
	}

	p.logf("connectivity check failed: %v", err)
	color.New(color.FgYellow).Fprintf(p.out(),
		"Could not reach %s (%v). Downloads and update checks will likely fail.\n",
		connectivityHost, err)

	cont, perr := p.Prompt.Confirm("Continue anyway?", false)
	if perr != nil {
		return fmt.Errorf("connectivity prompt: %w", perr)
	}
	if !cont {
		return ErrDeclined
	}
	return nil
}

func (p *Provisioner) ensureDownloader(ctx context.Context) error {
	dlPath := p.Paths.DownloaderPath()

	present, err := paths.FileExists(dlPath)
	if err != nil {
		return fmt.Errorf("probe downloader: %w", err)
	}

	if present {
		p.selfUpdateDownloader(ctx, dlPath)
		return nil
	}

	url := DownloaderURL(p.Cfg)
	if url == "" {
		return fmt.Errorf("%w: no release for %s", ErrDownloaderUnavailable, currentPlatformKey())
	}

	fmt.Fprintf(p.out(), "Downloading yt-dlp...\n")
	if !p.Fetch(ctx, url, dlPath, p.Cfg.Network.MaxAttempts) {
		return fmt.Errorf("%w: download failed from %s", ErrDownloaderUnavailable, url)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(dlPath, 0o755); err != nil {
			return fmt.Errorf("mark downloader executable: %w", err)
		}
	}
	color.New(color.FgGreen).Fprintln(p.out(), "yt-dlp installed.")
	return nil
}

// selfUpdateDownloader asks yt-dlp to update itself. Best effort; failures
// are warnings only.
func (p *Provisioner) selfUpdateDownloader(ctx context.Context, dlPath string) {
	updateCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	fmt.Fprintln(p.out(), "Checking yt-dlp for updates...")
	res, err := p.Runner.Run(updateCtx, dlPath, []string{"-U"}, execx.RunOptions{})
	if err != nil {
		p.logf("yt-dlp self-update failed: %v (stderr: %s)", err, strings.TrimSpace(string(res.Stderr)))
		color.New(color.FgYellow).Fprintln(p.out(), "Could not check for updates; continuing with the current version.")
		return
	}
	if line := firstLine(strings.TrimSpace(string(res.Stdout))); line != "" {
		fmt.Fprintln(p.out(), line)
	}
}

func (p *Provisioner) ensureMediaBundle(ctx context.Context) (bool, error) {
	state := ProbeMediaDir(p.Paths.BinDir, RequiredMediaFiles(), paths.FileExists)

	switch state.State {
	case ToolComplete:
		return true, nil

	case ToolIncomplete:
		color.New(color.FgYellow).Fprintf(p.out(),
			"The ffmpeg bundle is incomplete (missing: %s).\n", strings.Join(state.Missing, ", "))
		repair, err := p.Prompt.Confirm("Repair the ffmpeg bundle now?", true)
		if err != nil {
			return false, fmt.Errorf("repair prompt: %w", err)
		}
		if !repair {
			return false, nil
		}
		return p.installBundle(ctx, "repair"), nil

	default: // ToolAbsent
		fmt.Fprintln(p.out(), "ffmpeg enables metadata/thumbnail embedding and audio conversion.")
		install, err := p.Prompt.Confirm("Install the ffmpeg bundle? (recommended)", true)
		if err != nil {
			return false, fmt.Errorf("install prompt: %w", err)
		}
		if !install {
			return false, nil
		}
		return p.installBundle(ctx, "install"), nil
	}
}

func (p *Provisioner) installBundle(ctx context.Context, action string) bool {
	url := BundleURL(p.Cfg)
	if url == "" {
		color.New(color.FgYellow).Fprintf(p.out(),
			"No ffmpeg bundle is published for %s; set releases.bundle_url in %s to use one.\n",
			currentPlatformKey(), p.Paths.ConfigFile)
		return false
	}

	fmt.Fprintf(p.out(), "Downloading the ffmpeg bundle (this can take a while)...\n")
	ok := p.install(ctx, bundle.Options{
		ArchiveURL:    url,
		RequiredFiles: RequiredMediaFiles(),
		MarkerDir:     MarkerDirName,
		TargetDir:     p.Paths.BinDir,
		WorkDir:       p.Paths.DownloadsDir,
	})
	if ok {
		color.New(color.FgGreen).Fprintf(p.out(), "ffmpeg bundle %s complete.\n", action)
	} else {
		color.New(color.FgRed).Fprintf(p.out(),
			"ffmpeg bundle %s failed; continuing without advanced features.\n", action)
	}
	return ok
}

// probeMediaTool runs a trivial version query against ffmpeg. The tri-state
// outcome is purely informational.
func (p *Provisioner) probeMediaTool(ctx context.Context) FuncStatus {
	ffmpeg := filepath.Join(p.Paths.BinDir, RequiredMediaFiles()[0])
	installed, err := paths.FileExists(ffmpeg)
	if err != nil || !installed {
		return MediaNotAvailable
	}

	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, runErr := p.Runner.Run(probeCtx, ffmpeg, []string{"-version"}, execx.RunOptions{})
	if runErr != nil {
		p.logf("ffmpeg probe failed: %v", runErr)
		return MediaNonfunctional
	}
	return MediaFunctional
}

func (p *Provisioner) install(ctx context.Context, opts bundle.Options) bool {
	if p.Install != nil {
		return p.Install(ctx, opts)
	}
	inst := &bundle.Installer{Fetch: p.Fetch, MaxAttempts: p.Cfg.Network.MaxAttempts, Logger: p.Logger}
	return inst.Install(ctx, opts)
}

func (p *Provisioner) lookup(ctx context.Context, host string) error {
	if p.LookupHost != nil {
		return p.LookupHost(ctx, host)
	}
	_, err := net.DefaultResolver.LookupHost(ctx, host)
	return err
}

// prependPath puts dir at the front of the process's executable search path
// for the remainder of the run only.
func prependPath(dir string) {
	current := os.Getenv("PATH")
	if current == "" {
		os.Setenv("PATH", dir)
		return
	}
	os.Setenv("PATH", dir+string(os.PathListSeparator)+current)
}

func (p *Provisioner) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

func (p *Provisioner) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}
