package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/shirou/gopsutil/v3/disk"

	"vidgrab/internal/execx"
	"vidgrab/internal/history"
	"vidgrab/internal/options"
	"vidgrab/internal/prompt"
	"vidgrab/internal/provision"
)

// lowDiskThreshold triggers a confirmation before downloading into a nearly
// full volume.
const lowDiskThreshold = 500 * 1024 * 1024

const currentDirLabel = "Current directory"

// job is the per-iteration download request. It lives for one pass through
// the state machine and is not persisted beyond the folder history.
type job struct {
	url    string
	mode   options.Mode
	folder string
}

// state enumerates the session loop's prompt-and-run machine.
type state int

const (
	stateCollectingURL state = iota
	stateCollectingMode
	stateCollectingFolder
	stateConfirmingSummary
	stateRunning
	stateReportingResult
	stateAskRepeat
	stateExit
)

// Loop drives download jobs one at a time until the user declines to
// continue.
type Loop struct {
	Prompt  prompt.Provider
	Runner  execx.Runner
	Prov    provision.Result
	History *history.Store
	Logger  *log.Logger
	Out     io.Writer

	// Notify is nil when desktop notifications are disabled.
	Notify func(title, message string) error

	// DiskFree and Getwd are swappable for tests.
	DiskFree func(path string) (uint64, error)
	Getwd    func() (string, error)
}

// Run executes the session state machine. A prompt.ErrAborted from any
// question unwinds here and is returned for the caller to treat as a clean
// exit.
func (l *Loop) Run(ctx context.Context) error {
	var (
		current  job
		exitCode int
		spawnErr error
	)

	st := stateCollectingURL
	for st != stateExit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var err error
		switch st {
		case stateCollectingURL:
			st, err = l.collectURL(&current)
		case stateCollectingMode:
			st, err = l.collectMode(&current)
		case stateCollectingFolder:
			st, err = l.collectFolder(&current)
		case stateConfirmingSummary:
			st, err = l.confirmSummary(current)
		case stateRunning:
			exitCode, spawnErr = l.runJob(ctx, current)
			st = stateReportingResult
		case stateReportingResult:
			l.reportResult(current, exitCode, spawnErr)
			st = stateAskRepeat
		case stateAskRepeat:
			st, err = l.askRepeat()
			if st == stateCollectingURL {
				current = job{}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) collectURL(j *job) (state, error) {
	raw, err := l.Prompt.Input("Video URL", "https://...")
	if err != nil {
		return stateExit, err
	}
	raw = strings.TrimSpace(raw)

	switch classifyURL(raw) {
	case urlRecognized:
		j.url = raw
		return stateCollectingMode, nil

	case urlGeneric:
		cont, err := l.Prompt.Confirm("This is not a recognized video site. Try it anyway?", false)
		if err != nil {
			return stateExit, err
		}
		if !cont {
			return stateCollectingURL, nil
		}
		j.url = raw
		return stateCollectingMode, nil

	default:
		color.New(color.FgYellow).Fprintln(l.out(), "That does not look like an http(s) URL.")
		return stateCollectingURL, nil
	}
}

func (l *Loop) collectMode(j *job) (state, error) {
	idx, err := l.Prompt.Select("Download profile", options.Labels())
	if err != nil {
		return stateExit, err
	}

	mode := options.Mode{Kind: options.Kind(idx)}
	if mode.Kind == options.Custom {
		expr, err := l.Prompt.Input("yt-dlp format expression (empty for default)", "bestvideo+bestaudio")
		if err != nil {
			return stateExit, err
		}
		mode.Expr = strings.TrimSpace(expr)

		if l.Prov.AdvancedEnabled {
			embeds, err := l.Prompt.Confirm("Embed metadata and thumbnail?", true)
			if err != nil {
				return stateExit, err
			}
			mode.Embeds = embeds
		}
	}

	j.mode = mode
	return stateCollectingFolder, nil
}

func (l *Loop) collectFolder(j *job) (state, error) {
	entries := l.History.Load()
	choices := make([]string, 0, len(entries)+2)
	choices = append(choices, entries...)
	choices = append(choices, currentDirLabel, "Enter a new path")

	idx, err := l.Prompt.Select("Destination folder", choices)
	if err != nil {
		return stateExit, err
	}

	var folder string
	record := false

	switch {
	case idx < len(entries):
		folder = entries[idx]
		record = true

	case choices[idx] == currentDirLabel:
		folder, err = l.getwd()
		if err != nil {
			color.New(color.FgRed).Fprintf(l.out(), "Could not resolve the current directory: %v\n", err)
			return stateCollectingURL, nil
		}

	default:
		raw, err := l.Prompt.Input("Destination path", "~/Videos")
		if err != nil {
			return stateExit, err
		}
		folder, err = expandPath(strings.TrimSpace(raw))
		if err != nil {
			color.New(color.FgYellow).Fprintf(l.out(), "Invalid path: %v\n", err)
			return stateCollectingFolder, nil
		}
		record = true
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		color.New(color.FgRed).Fprintf(l.out(), "Could not create %s: %v\n", folder, err)
		l.logf("create destination %s: %v", folder, err)
		return stateCollectingURL, nil
	}

	if ok, err := l.checkDiskSpace(folder); err != nil {
		return stateExit, err
	} else if !ok {
		return stateCollectingFolder, nil
	}

	if record {
		if err := l.History.Touch(folder); err != nil {
			l.logf("record folder history: %v", err)
		}
	}

	j.folder = folder
	return stateConfirmingSummary, nil
}

// checkDiskSpace warns when the destination volume is nearly full. Returns
// false when the user wants to pick another folder.
func (l *Loop) checkDiskSpace(folder string) (bool, error) {
	free, err := l.diskFree(folder)
	if err != nil {
		l.logf("disk usage check for %s: %v", folder, err)
		return true, nil
	}
	if free >= lowDiskThreshold {
		return true, nil
	}

	color.New(color.FgYellow).Fprintf(l.out(),
		"Only %d MB free on the destination volume.\n", free/(1024*1024))
	cont, err := l.Prompt.Confirm("Download here anyway?", false)
	if err != nil {
		return false, err
	}
	return cont, nil
}

func (l *Loop) confirmSummary(j job) (state, error) {
	labels := options.Labels()
	fmt.Fprintf(l.out(), "\n  URL:     %s\n  Profile: %s\n  Folder:  %s\n\n",
		j.url, labels[j.mode.Kind], j.folder)

	start, err := l.Prompt.Confirm("Start download?", true)
	if err != nil {
		return stateExit, err
	}
	if !start {
		return stateCollectingURL, nil
	}
	return stateRunning, nil
}

// runJob spawns the downloader with the compiled argument vector. The
// terminal is inherited so progress rendering belongs to the tool.
func (l *Loop) runJob(ctx context.Context, j job) (int, error) {
	args := options.Compile(j.mode, l.Prov.AdvancedEnabled, l.Prov.BinDir)
	args = append(args, j.url)

	l.logf("running %s %s (dir=%s)", l.Prov.DownloaderPath, strings.Join(args, " "), j.folder)

	code, ok, err := l.Runner.RunInteractive(ctx, l.Prov.DownloaderPath, args, j.folder)
	if !ok {
		return 0, err
	}
	return code, nil
}

func (l *Loop) reportResult(j job, exitCode int, spawnErr error) {
	switch {
	case spawnErr != nil:
		color.New(color.FgRed).Fprintf(l.out(), "Could not start the downloader: %v\n", spawnErr)
		l.logf("spawn failed: %v", spawnErr)

	case exitCode == 0:
		color.New(color.FgGreen).Fprintf(l.out(), "Download finished in %s\n", j.folder)
		l.notify("Download finished", filepath.Base(j.folder))

	default:
		color.New(color.FgRed).Fprintf(l.out(), "Download failed (exit code %d)\n", exitCode)
		l.logf("downloader exited with code %d", exitCode)
		l.notify("Download failed", fmt.Sprintf("exit code %d", exitCode))
	}
}

func (l *Loop) askRepeat() (state, error) {
	again, err := l.Prompt.Confirm("Download another?", false)
	if err != nil {
		return stateExit, err
	}
	if again {
		return stateCollectingURL, nil
	}
	return stateExit, nil
}

func (l *Loop) notify(title, message string) {
	if l.Notify == nil {
		return
	}
	if err := l.Notify(notifyTitle+": "+title, message); err != nil {
		l.logf("notification failed: %v", err)
	}
}

func (l *Loop) diskFree(path string) (uint64, error) {
	if l.DiskFree != nil {
		return l.DiskFree(path)
	}
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

func (l *Loop) getwd() (string, error) {
	if l.Getwd != nil {
		return l.Getwd()
	}
	return os.Getwd()
}

func (l *Loop) out() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return os.Stdout
}

func (l *Loop) logf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
	}
}

// expandPath resolves ~ and makes the path absolute and clean.
func expandPath(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty path")
	}
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return filepath.Clean(abs), nil
}
