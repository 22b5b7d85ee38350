package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidgrab/internal/config"
	"vidgrab/internal/execx"
	"vidgrab/internal/history"
	"vidgrab/internal/logx"
	"vidgrab/internal/netfetch"
	"vidgrab/internal/paths"
	"vidgrab/internal/prompt"
	"vidgrab/internal/provision"
	"vidgrab/internal/session"
	"vidgrab/internal/tui"
)

func runSession(cmd *cobra.Command, _ []string) error {
	appPaths, err := paths.Resolve()
	if err != nil {
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

	provider := tui.NewProvider()
	out := cmd.OutOrStdout()

	prov := &provision.Provisioner{
		Paths:  appPaths,
		Cfg:    cfg,
		Prompt: provider,
		Runner: execx.CmdRunner{},
		Fetch:  fetcher.Fetch,
		Logger: logger,
		Out:    out,
	}

	result, err := prov.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(out, "aborted")
			return nil
		}
		return err
	}

	if result.AdvancedEnabled {
		fmt.Fprintf(out, "ffmpeg: %s\n", result.MediaProbe)
	} else {
		fmt.Fprintln(out, "Continuing without ffmpeg; metadata embedding and audio conversion are off.")
	}

	loop := &session.Loop{
		Prompt:  provider,
		Runner:  execx.CmdRunner{},
		Prov:    result,
		History: &history.Store{Path: appPaths.HistoryFile, Logger: logger},
		Logger:  logger,
		Out:     out,
	}
	if cfg.NotificationsEnabled() {
		loop.Notify = session.DesktopNotify
	}

	if err := loop.Run(cmd.Context()); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(out, "bye")
			return nil
		}
		return err
	}

	fmt.Fprintln(out, "bye")
	return nil
}
