package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"calibcat/internal/config"
	"calibcat/internal/logging"
)

type globalFlags struct {
	logLevel  string
	logFormat string
	logFile   string
	basedir   string
}

type commandContext struct {
	flags *globalFlags

	loggerOnce sync.Once
	log        *slog.Logger
	logErr     error
	runID      string
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// logger builds the process logger on first use. Console output goes to
// stderr so tables on stdout stay clean; --log-file adds a JSON copy.
func (c *commandContext) logger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		c.runID = logging.NewRunID()
		base, err := logging.New(logging.Options{
			Level:       c.flags.logLevel,
			Format:      c.flags.logFormat,
			OutputPaths: []string{"stderr"},
			RunID:       c.runID,
		})
		if err != nil {
			c.logErr = err
			return
		}
		if path := strings.TrimSpace(c.flags.logFile); path != "" {
			fileLogger, err := logging.New(logging.Options{
				Level:       c.flags.logLevel,
				Format:      "json",
				OutputPaths: []string{path},
				RunID:       c.runID,
			})
			if err != nil {
				c.logErr = err
				return
			}
			base = logging.WithCopy(base, fileLogger.Handler())
		}
		c.log = base
	})
	return c.log, c.logErr
}

func (c *commandContext) basedir() string {
	if dir := strings.TrimSpace(c.flags.basedir); dir != "" {
		return dir
	}
	return "."
}

// loadConfig loads the configuration named by the first argument.
func (c *commandContext) loadConfig(args []string) (*config.Config, string, error) {
	path := strings.TrimSpace(args[0])
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func stdout(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
