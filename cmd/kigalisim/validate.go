package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd checks configuration and demo scenario bounds without
// running a simulation.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and demo scenario year bounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return validationError(err)
		}
		if endYear < startYear {
			return validationError(fmt.Errorf("end year %d precedes start year %d", endYear, startYear))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
		return nil
	},
}

func init() {
	validateCmd.Flags().IntVar(&startYear, "start-year", 2025, "first simulation year")
	validateCmd.Flags().IntVar(&endYear, "end-year", 2030, "last simulation year (inclusive)")
}
