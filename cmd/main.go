package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/brettbedarf/dirshell/adapters"
	"github.com/brettbedarf/dirshell/config"
	"github.com/brettbedarf/dirshell/internal/util"
	"github.com/brettbedarf/dirshell/server"
	"github.com/brettbedarf/dirshell/shell"
	"github.com/brettbedarf/dirshell/sinks"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		verbose    int
		mnt        string
		httpAddr   string
		hashToken  string
		umount     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to a yaml or json config file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&mnt, "mount", "", "Mount a read-only view of the tree at this directory")
	flag.StringVar(&mnt, "m", "", "--mount (shorthand)")
	flag.StringVar(&httpAddr, "http", "", "Serve the HTTP console on this address, e.g. :8080")
	flag.StringVar(&hashToken, "hash-token", "", "Print the bcrypt hash of this HTTP console token for the config file and exit")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the mount point first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.Parse()

	if hashToken != "" {
		hash, err := adapters.HashToken(hashToken)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	// Flags set on the command line win over the config file
	override := &config.ConfigOverride{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose", "v":
			override.LogLvl = &verbose
		case "http":
			override.HTTPAddr = &httpAddr
		}
	})

	cfg := config.NewDefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.NewConfigFromFile(configPath); err != nil {
			util.InitializeLogger(util.LevelFromVerbose(verbose))
			mainLogger := util.GetLogger("main")
			mainLogger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
	}
	cfg.Merge(override)

	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	logger.Info().
		Str("config", configPath).
		Str("mnt", mnt).
		Str("http", cfg.HTTPAddr).
		Str("sink", cfg.Sink).
		Msg("dirshell initializing")

	// Output
	sinks.RegisterBuiltins()
	sink, err := sinks.New(cfg.Sink, os.Stdout)
	if err != nil {
		logger.Fatal().Err(err).Str("sink", cfg.Sink).Msg("Failed to create output sink")
	}

	sh, err := shell.New(cfg, sink)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start shell")
	}

	// Mount view
	if mnt != "" {
		if umount {
			cmd := exec.Command("fusermount", "-u", mnt)
			// we ignore error here if not already mounted
			cmd.Run() // nolint:errcheck
		}
		view := server.New(sh, cfg)
		if err := view.Serve(mnt); err != nil {
			logger.Fatal().Err(err).Str("mountpoint", mnt).Msg("Failed to mount tree")
		}
		defer func() {
			if err := view.Unmount(); err != nil {
				logger.Error().Err(err).Msg("Failed to unmount tree")
			}
		}()
	}

	// HTTP console
	if cfg.HTTPAddr != "" {
		if cfg.HTTPTokenHash == "" {
			logger.Warn().Str("addr", cfg.HTTPAddr).Msg("HTTP console has no token configured, anyone who can reach it can type")
		}
		console := adapters.NewHTTPConsole(sh, cfg.HTTPTokenHash)
		go func() {
			if err := console.Start(cfg.HTTPAddr); err != nil {
				logger.Error().Err(err).Str("addr", cfg.HTTPAddr).Msg("HTTP console stopped")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := console.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("Failed to shut down HTTP console")
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := runTerminal(ctx, sh); err != nil {
		logger.Error().Err(err).Msg("Shell stopped")
		return
	}
	logger.Info().Msg("Shell session ended")
}

// runTerminal drives sh from stdin until end of input, Ctrl-C or a signal
func runTerminal(ctx context.Context, sh *shell.Shell) error {
	term, err := adapters.NewTerminal(os.Stdin)
	if err != nil {
		return err
	}
	defer term.Close() // nolint:errcheck

	err = sh.Run(ctx, term)
	if errors.Is(err, adapters.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
