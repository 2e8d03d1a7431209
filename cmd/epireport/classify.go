package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"epireport/domain/disease"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <name...>",
	Short: "Print the statutory tier for disease names",
	Long: `Maps each disease name to its statutory notifiable-disease tier
(Class A, Class B, Class C, or Unclassified) using the same catalogue
the report generator uses.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, disease.Classify(name).DisplayName())
		}
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
