package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidgrab/internal/bundle"
	"vidgrab/internal/config"
	"vidgrab/internal/execx"
	"vidgrab/internal/logx"
	"vidgrab/internal/netfetch"
	"vidgrab/internal/paths"
	"vidgrab/internal/provision"
)

var installForce bool

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage the external downloader and media tools",
	}

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsInstallCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show resolved tool statuses",
		RunE:  runToolsList,
	}
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	appPaths, err := paths.Resolve()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	cmd.Printf("%-10s %-10s %s\n", "Tool", "State", "Detail")

	dlPath := appPaths.DownloaderPath()
	if ok, _ := paths.FileExists(dlPath); ok {
		version := readToolVersion(ctx, dlPath, "--version")
		cmd.Printf("%-10s %-10s %s\n", "yt-dlp", "ready", version)
	} else {
		cmd.Printf("%-10s %-10s %s\n", "yt-dlp", "missing", "(run vidgrab tools install yt-dlp)")
	}

	state := provision.ProbeMediaDir(appPaths.BinDir, provision.RequiredMediaFiles(), paths.FileExists)
	switch state.State {
	case provision.ToolComplete:
		cmd.Printf("%-10s %-10s %s\n", "ffmpeg", "ready", appPaths.BinDir)
	case provision.ToolIncomplete:
		cmd.Printf("%-10s %-10s missing: %s\n", "ffmpeg", "partial", strings.Join(state.Missing, ", "))
	default:
		cmd.Printf("%-10s %-10s %s\n", "ffmpeg", "missing", "(run vidgrab tools install ffmpeg)")
	}
	return nil
}

func readToolVersion(ctx context.Context, path, versionSwitch string) string {
	res, err := execx.CmdRunner{}.Run(ctx, path, []string{versionSwitch}, execx.RunOptions{})
	if err != nil {
		return "(version check failed)"
	}
	out := strings.TrimSpace(string(res.Stdout))
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		out = out[:idx]
	}
	return out
}

func newToolsInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [yt-dlp|ffmpeg|all]",
		Short: "Install or reinstall managed tools without the interactive flow",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runToolsInstall,
	}
	cmd.Flags().BoolVar(&installForce, "force", false, "Reinstall even when already present")
	return cmd
}

func runToolsInstall(cmd *cobra.Command, args []string) error {
	target := "all"
	if len(args) == 1 {
		target = strings.ToLower(args[0])
	}
	if target != "all" && target != "yt-dlp" && target != "ffmpeg" {
		return fmt.Errorf("unknown tool: %s", target)
	}

	appPaths, err := paths.Resolve()
	if err != nil {
		return err
	}
	if err := appPaths.EnsureBase(); err != nil {
		return err
	}

	cfg, err := config.Load(appPaths.ConfigFile)
	if err != nil {
		return err
	}

	logger, closer, err := logx.New(appPaths)
	if err != nil {
		return err
	}
	defer closer.Close()

	fetcher := netfetch.New(logger)
	fetcher.Backoff = time.Duration(cfg.Network.BackoffSeconds) * time.Second

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	if target == "all" || target == "yt-dlp" {
		if err := installDownloader(ctx, cmd, appPaths, cfg, fetcher); err != nil {
			return err
		}
	}
	if target == "all" || target == "ffmpeg" {
		if err := installMediaBundle(ctx, cmd, appPaths, cfg, fetcher); err != nil {
			return err
		}
	}
	return nil
}

func installDownloader(ctx context.Context, cmd *cobra.Command, appPaths paths.AppPaths, cfg config.Config, fetcher *netfetch.Fetcher) error {
	dlPath := appPaths.DownloaderPath()
	if ok, _ := paths.FileExists(dlPath); ok && !installForce {
		cmd.Println("yt-dlp already installed; use --force to reinstall")
		return nil
	}

	url := provision.DownloaderURL(cfg)
	if url == "" {
		return fmt.Errorf("no yt-dlp release for this platform")
	}
	cmd.Printf("downloading %s\n", url)
	if !fetcher.Fetch(ctx, url, dlPath, cfg.Network.MaxAttempts) {
		return fmt.Errorf("yt-dlp download failed")
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(dlPath, 0o755); err != nil {
			return fmt.Errorf("mark yt-dlp executable: %w", err)
		}
	}
	cmd.Println("yt-dlp installed")
	return nil
}

func installMediaBundle(ctx context.Context, cmd *cobra.Command, appPaths paths.AppPaths, cfg config.Config, fetcher *netfetch.Fetcher) error {
	state := provision.ProbeMediaDir(appPaths.BinDir, provision.RequiredMediaFiles(), paths.FileExists)
	if state.State == provision.ToolComplete && !installForce {
		cmd.Println("ffmpeg bundle already installed; use --force to reinstall")
		return nil
	}

	url := provision.BundleURL(cfg)
	if url == "" {
		return fmt.Errorf("no ffmpeg bundle for this platform; set releases.bundle_url in %s", appPaths.ConfigFile)
	}

	cmd.Printf("downloading %s\n", url)
	installer := &bundle.Installer{Fetch: fetcher.Fetch, MaxAttempts: cfg.Network.MaxAttempts, Logger: fetcher.Logger}
	ok := installer.Install(ctx, bundle.Options{
		ArchiveURL:    url,
		RequiredFiles: provision.RequiredMediaFiles(),
		MarkerDir:     provision.MarkerDirName,
		TargetDir:     appPaths.BinDir,
		WorkDir:       appPaths.DownloadsDir,
	})
	if !ok {
		return fmt.Errorf("ffmpeg bundle install failed")
	}
	cmd.Println("ffmpeg bundle installed")
	return nil
}
