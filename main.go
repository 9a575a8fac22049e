// Command zcode is a terminal code editor.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/zcode/completion"
	"github.com/odvcencio/zcode/settings"
	"github.com/odvcencio/zcode/workbench"
)

// version is set with -ldflags at build time.
var version = "dev"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks bad invocations so they exit with exitUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// options carries the streams the command runs against.
type options struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// start runs the editor; tests replace it.
	start func(workbench.Options) error
}

func newRootCmd(o options, showVersion *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "zcode [path]",
		Short:         "A terminal code editor",
		Long:          "zcode edits the files under path, or the current directory, in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageError{fmt.Errorf("accepts at most 1 path, received %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if *showVersion {
				fmt.Fprintf(o.stdout, "zcode %s\n", version)
				return nil
			}
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			wo, err := workbenchOptions(path, o)
			if err != nil {
				return err
			}
			if c, ok := wo.LogFile.(io.Closer); ok {
				defer c.Close()
			}
			return o.start(wo)
		},
	}
	cmd.Flags().BoolVarP(showVersion, "version", "V", false, "print the version and exit")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })
	cmd.SetIn(o.stdin)
	cmd.SetOut(o.stdout)
	cmd.SetErr(o.stderr)
	return cmd
}

// fileRoot picks the workspace for a file argument: the current directory
// when it contains the file, otherwise the file's parent.
func fileRoot(file string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, file); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel) {
			return cwd
		}
	}
	return filepath.Dir(file)
}

// workbenchOptions resolves the workspace and file to open from path and
// loads settings unless disabled by the environment.
func workbenchOptions(path string, o options) (workbench.Options, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return workbench.Options{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return workbench.Options{}, fmt.Errorf("cannot open %s: %w", path, err)
	}
	wo := workbench.Options{
		Root:       abs,
		DisableLSP: settings.EnvEnabled(settings.EnvDisableLSP),
	}
	if o.stdin != os.Stdin {
		wo.Input = o.stdin
	}
	if o.stdout != os.Stdout {
		wo.Output = o.stdout
	}
	if !info.IsDir() {
		wo.Root = fileRoot(abs)
		wo.Open = []string{abs}
	}

	if logPath := os.Getenv(settings.EnvLogFile); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return workbench.Options{}, fmt.Errorf("opening log file: %w", err)
		}
		wo.LogFile = f
		wo.LogLevel = slog.LevelDebug
	}

	if settings.EnvEnabled(settings.EnvDisableSettings) {
		return wo, nil
	}
	if p, err := settings.Path(); err == nil {
		f, err := settings.Load(p)
		if err != nil {
			fmt.Fprintf(o.stderr, "zcode: %v\n", err)
		}
		wo.Settings = f
		wo.SettingsPath = p
	}
	if dir, err := settings.DataDir(); err == nil {
		wo.DataDir = dir
	}
	if p, err := completion.DefaultPath(); err == nil {
		wo.RankerPath = p
	}
	return wo, nil
}

// startWorkbench runs the editor until it quits. A panic shuts the
// adapters down before it propagates, so language servers and plugins do
// not outlive the editor.
func startWorkbench(opts workbench.Options) (err error) {
	w, err := workbench.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = w.Shutdown()
			fmt.Fprintf(os.Stderr, "zcode: panic: %v\n%s", r, debug.Stack())
			panic(r)
		}
	}()
	return w.Run()
}

func run(args []string, o options) int {
	var showVersion bool
	cmd := newRootCmd(o, &showVersion)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(o.stderr, "zcode: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(o.stderr, "Run 'zcode --help' for usage.")
		return exitUsage
	}
	return exitError
}

func main() {
	os.Exit(run(os.Args[1:], options{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		start:  startWorkbench,
	}))
}
