package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/gridedit/internal/app"
	"github.com/dshills/gridedit/internal/renderer/backend"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	dataPath   string
	configPath string
	logLevel   string
	logFile    string
	watch      bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "gridedit",
		Short: "Edit tabular data in the terminal",
		Long: `gridedit shows a dataset as a grid with a sticky header. Editable
cells are changed in place, values are validated on commit, and the
Columns menu hides and shows columns.

Without --data the embedded sample of users is shown.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, o)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.dataPath, "data", "d", "", "dataset file (.yaml, .yml or .toml)")
	flags.StringVarP(&o.configPath, "config", "c", "", "settings file (.yaml, .yml or .toml)")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&o.logFile, "log-file", "", "write logs to this file")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "reload the settings and dataset files when they change")

	cmd.AddCommand(newPrintCmd(o), newVersionCmd())
	return cmd
}

func (o *rootOptions) appOptions() app.Options {
	return app.Options{
		ConfigPath: o.configPath,
		DataPath:   o.dataPath,
		LogLevel:   o.logLevel,
		LogFile:    o.logFile,
		Watch:      o.watch,
	}
}

// runTUI runs the interactive grid until quit or a termination signal.
func runTUI(cmd *cobra.Command, o *rootOptions) error {
	term, err := backend.NewTerminal()
	if err != nil {
		return err
	}
	application, err := app.New(term, o.appOptions())
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = application.Shutdown()
	}()

	return application.Run()
}
