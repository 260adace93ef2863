package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"vinyl/internal/api"
	"vinyl/internal/config"
	"vinyl/internal/preflight"
	"vinyl/internal/session"
	"vinyl/internal/tui"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "vinyl [url-or-directory]",
		Short:         "Terminal playlist player",
		Long:          "vinyl browses saved YouTube playlists and local directories and plays them through mpv, downloading remote tracks on demand.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, ctx, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newPlaylistsCommand(ctx))
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func runUI(cmd *cobra.Command, ctx *commandContext, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	var startURL, startDir string
	if len(args) == 1 {
		startURL, startDir, err = resolveTarget(args[0])
		if err != nil {
			return err
		}
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess, err := session.Open(signalCtx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	client := api.New(cfg.YouTube.APIKey,
		api.WithInstances(cfg.YouTube.InvidiousInstances),
		api.WithLogger(sess.Logger()))

	return tui.Run(signalCtx, tui.Deps{
		Config:   cfg,
		Store:    sess.Store(),
		Player:   sess.Player(),
		Client:   client,
		Logger:   sess.Logger(),
		Warning:  startupWarning(signalCtx, sess),
		StartURL: startURL,
		StartDir: startDir,
	})
}

// resolveTarget decides whether the positional argument is a playlist URL or
// a local directory.
func resolveTarget(arg string) (startURL, startDir string, err error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", "", nil
	}
	if _, perr := api.ParsePlaylistURL(arg); perr == nil {
		return arg, "", nil
	}
	expanded, err := config.ExpandPath(arg)
	if err != nil {
		return "", "", err
	}
	if info, serr := os.Stat(expanded); serr == nil && info.IsDir() {
		return "", expanded, nil
	}
	return "", "", fmt.Errorf("%q is neither a playlist URL nor a directory", arg)
}

// startupWarning condenses failed preflight checks into one status-bar line.
func startupWarning(ctx context.Context, sess *session.Session) string {
	var failed []string
	for _, result := range preflight.RunAll(ctx, sess.Config(), sess.Store()) {
		if !result.Passed {
			failed = append(failed, result.Name)
		}
	}
	for _, status := range preflight.CheckSystemDeps(ctx, sess.Config()) {
		if !status.Available && !status.Optional {
			failed = append(failed, status.Name)
		}
	}
	if len(failed) == 0 {
		return ""
	}
	return "Preflight: " + strings.Join(failed, ", ") + " (run vinyl doctor)"
}
