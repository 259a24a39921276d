package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/gridedit/internal/config"
	"github.com/dshills/gridedit/internal/config/loader"
	"github.com/dshills/gridedit/internal/renderer"
	"github.com/dshills/gridedit/internal/sheet"
	"github.com/dshills/gridedit/internal/tableprint"
)

type printOptions struct {
	hide     []string
	maxWidth int
}

func newPrintCmd(root *rootOptions) *cobra.Command {
	o := &printOptions{}
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the dataset as a table and exit",
		Example: `  gridedit print
  gridedit print --data team.yaml --hide email,joinedDate
  gridedit print --max-width 12 | less -R`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-width") {
				o.maxWidth = -1
			}
			return runPrint(cmd, root, o)
		},
	}
	cmd.Flags().StringSliceVar(&o.hide, "hide", nil, "columns to leave out, by key")
	cmd.Flags().IntVar(&o.maxWidth, "max-width", 0, "truncate cells wider than this; 0 means no limit (default from settings)")
	return cmd
}

// buildSheet loads the dataset named by the root flags into a sheet.
func buildSheet(root *rootOptions) (*sheet.Sheet, error) {
	var (
		ds  *config.Dataset
		err error
	)
	if root.dataPath == "" {
		ds, err = config.DefaultDataset()
	} else {
		ds, err = config.LoadDataset(nil, root.dataPath)
	}
	if err != nil {
		return nil, err
	}
	defs, err := ds.Definitions(nil)
	if err != nil {
		return nil, err
	}
	records, err := ds.BuildRecords()
	if err != nil {
		return nil, err
	}
	return sheet.New(records, defs)
}

func runPrint(cmd *cobra.Command, root *rootOptions, o *printOptions) error {
	settings, err := config.Load(config.Options{Path: root.configPath, Env: loader.NewEnvLoader()})
	if err != nil {
		return err
	}
	theme := renderer.DefaultTheme()
	if err := theme.Apply(settings.Theme); err != nil {
		return err
	}

	s, err := buildSheet(root)
	if err != nil {
		return err
	}
	for _, key := range o.hide {
		if _, ok := s.Registry().Lookup(key); !ok {
			return fmt.Errorf("unknown column %q", key)
		}
		if s.IsVisible(key) {
			s.ToggleColumn(key)
		}
	}

	width := o.maxWidth
	if width < 0 {
		width = settings.Grid.MaxColumnWidth
	}
	return tableprint.Fprint(cmd.OutOrStdout(), s, tableprint.Options{Theme: theme, MaxColumnWidth: width})
}
