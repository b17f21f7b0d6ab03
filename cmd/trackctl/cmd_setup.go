package main

import (
	"github.com/spf13/cobra"

	"trackctl/internal/scaffold"
)

var (
	setupInputFolder    string
	setupParamsTemplate string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Scaffold the project layout for a measurement input folder",
	Long: `Derive the naming convention from the input folder name and create the
matching output and model folders, seed the model with its lattice file, and
write the per-run parameters file. Each step is independently invocable;
"setup all" runs output, model, and params in sequence.`,
}

func newScaffolder() *scaffold.Scaffolder {
	tmpl := cfg.Scaffold.ParamsTemplate
	if setupParamsTemplate != "" {
		tmpl = setupParamsTemplate
	}
	return &scaffold.Scaffolder{
		InputDir:       setupInputFolder,
		RunDir:         ".",
		ParamsTemplate: tmpl,
		Log:            logger,
	}
}

var setupDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Show the naming tokens derived from the input folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newScaffolder()
		conv, err := s.Derive()
		if err != nil {
			return err
		}
		statusf("mode %s, date %s", conv.Mode, conv.Date)
		notef("output folder: %s", s.OutputDir())
		notef("model folder:  %s", s.ModelDir())
		return nil
	},
}

var setupOutputCmd = &cobra.Command{
	Use:   "output",
	Short: "Create the derived output folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newScaffolder().CreateOutput()
		if err != nil {
			return err
		}
		statusf("output folder ready: %s", out)
		return nil
	},
}

var setupModelCmd = &cobra.Command{
	Use:   "model",
	Short: "Create the model folder and seed it with the lattice file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lattice, err := newScaffolder().SeedModel()
		if err != nil {
			return err
		}
		statusf("model seeded with %s", lattice)
		return nil
	},
}

var setupParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "Write the per-run parameters file with derived paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := newScaffolder().WriteParams()
		if err != nil {
			return err
		}
		statusf("parameters written: %s", path)
		return nil
	},
}

var setupAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run output, model, and params in sequence",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newScaffolder()
		out, err := s.CreateOutput()
		if err != nil {
			return err
		}
		statusf("output folder ready: %s", out)

		lattice, err := s.SeedModel()
		if err != nil {
			return err
		}
		statusf("model seeded with %s", lattice)

		path, err := s.WriteParams()
		if err != nil {
			return err
		}
		statusf("parameters written: %s", path)
		return nil
	},
}

func init() {
	setupCmd.PersistentFlags().StringVarP(&setupInputFolder, "input-folder", "i", "", "measurement input folder (required)")
	setupCmd.PersistentFlags().StringVar(&setupParamsTemplate, "params-template", "", "base parameters template (default from config)")
	_ = setupCmd.MarkPersistentFlagRequired("input-folder")

	setupCmd.AddCommand(setupDeriveCmd)
	setupCmd.AddCommand(setupOutputCmd)
	setupCmd.AddCommand(setupModelCmd)
	setupCmd.AddCommand(setupParamsCmd)
	setupCmd.AddCommand(setupAllCmd)
}
