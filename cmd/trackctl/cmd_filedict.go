package main

import (
	"github.com/spf13/cobra"

	"trackctl/internal/filedict"
)

var filedictInputFolder string

var filedictCmd = &cobra.Command{
	Use:   "filedict",
	Short: "Generate the file dictionary mapping .data files to SDDS names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := filedict.Generate(filedictInputFolder, ".")
		if err != nil {
			return err
		}
		statusf("file dictionary written: %s", out)
		return nil
	},
}

func init() {
	filedictCmd.Flags().StringVarP(&filedictInputFolder, "input-folder", "i", "", "measurement input folder (required)")
	_ = filedictCmd.MarkFlagRequired("input-folder")
}
