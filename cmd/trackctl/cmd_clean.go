package main

import (
	"github.com/spf13/cobra"

	"trackctl/internal/scaffold"
)

var cleanInputFolder string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the derived output and model folders",
	Long: `Removes the output folder tree and the model folder derived from the
input folder name. Per-run parameters and file-dictionary files are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &scaffold.Scaffolder{
			InputDir: cleanInputFolder,
			RunDir:   ".",
			Log:      logger,
		}
		if err := s.Clean(); err != nil {
			return err
		}
		statusf("removed %s and %s", s.OutputDir(), s.ModelDir())
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanInputFolder, "input-folder", "i", "", "measurement input folder (required)")
	_ = cleanCmd.MarkFlagRequired("input-folder")
}
