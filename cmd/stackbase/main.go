package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"emperror.dev/errors"
	"github.com/aviator-co/stackbase/internal/config"
	"github.com/aviator-co/stackbase/internal/git"
	"github.com/fatih/color"
	"github.com/kr/text"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	Debug     bool
	Trace     bool
	Directory string
}

var rootCmd = &cobra.Command{
	Use:   "stackbase",
	Short: "classify branches relative to a stack",

	// Don't automatically print errors or usage information (we handle that ourselves).
	// Cobra still prints usage if you return cmd.Usage() from RunE.
	SilenceErrors: true,
	SilenceUsage:  true,

	// Don't show "completion" command in help menu
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},

	// Run setup before invoking any child commands.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			color.NoColor = true
		}
		setLogLevel()

		var configDirs []string
		repo, err := getRepo()
		// If we weren't able to load the Git repo, that probably just means the
		// command isn't being run from inside a repo. That's fine, we just
		// don't need to bother reading repo-local config.
		if err != nil {
			logrus.WithError(err).Debug("unable to load Git repo (probably not inside a repo)")
		} else {
			gitDir, err := repo.GitDir(cmd.Context())
			if err != nil {
				logrus.WithError(err).Warning("failed to determine git directory")
			} else {
				configDirs = append(configDirs, gitDir)
			}
			logrus.WithField("git_dir", gitDir).Debug("loaded Git repo")
		}

		// Note: this only returns an error if config exists and it can't be
		// read/parsed. It doesn't return an error if no config file exists.
		didLoadConfig, err := config.Load(configDirs)
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		if didLoadConfig {
			logrus.Debug("loaded configuration")
		} else {
			logrus.Debug("no configuration found")
		}

		level, ok, err := config.LogLevel()
		if err != nil {
			return err
		}
		if ok && !rootFlags.Debug && !rootFlags.Trace {
			logrus.SetLevel(level)
		}
		return nil
	},
}

func setLogLevel() {
	switch {
	case rootFlags.Trace:
		logrus.SetLevel(logrus.TraceLevel)
	case rootFlags.Debug:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		return
	}
	logrus.WithField("stackbase_version", config.Version).Debug("enabled debug logging")
}

func init() {
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Debug, "debug", false,
		"enable verbose debug logging",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Trace, "trace", false,
		"enable trace logging (includes per-branch classification decisions)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&rootFlags.Directory, "repo", "C", "",
		"directory to use for git repository",
	)
	rootCmd.AddCommand(
		branchesCmd,
		dependentsCmd,
		onPathCmd,
		protectedBaseCmd,
		stackCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// In debug mode, show more detailed information about the error
		// (including the stack trace).
		if rootFlags.Debug || rootFlags.Trace {
			stackTrace := fmt.Sprintf("%+v", err)
			_, _ = fmt.Fprintf(os.Stderr, "error: %s\n%s\n", err, text.Indent(stackTrace, "\t"))
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}

		os.Exit(1)
	}
}

var cachedRepo *git.Repo

func getRepo() (*git.Repo, error) {
	if cachedRepo == nil {
		cmd := exec.Command("git", "rev-parse", "--show-toplevel")
		if rootFlags.Directory != "" {
			cmd.Dir = rootFlags.Directory
		}
		toplevel, err := cmd.Output()
		if err != nil {
			return nil, errors.Wrap(err, "failed to determine repo toplevel")
		}
		cachedRepo, err = git.OpenRepo(strings.TrimSpace(string(toplevel)))
		if err != nil {
			return nil, errors.Wrap(err, "failed to open git repo")
		}
	}
	return cachedRepo, nil
}
