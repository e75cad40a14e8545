package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var choicesCmd = &cobra.Command{
	Use:   "choices",
	Short: "Menampilkan daftar komoditi, tingkatan, dan provinsi dari sheet choice",
	RunE: func(cmd *cobra.Command, args []string) error {
		dash, st, err := openDashboard(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ref, err := dash.ReferenceSet()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Komoditi (%d): %s\n", len(ref.Commodities), strings.Join(ref.Commodities, ", "))
		fmt.Fprintf(out, "Tingkatan (%d): %s\n", len(ref.Tiers), strings.Join(ref.Tiers, ", "))
		fmt.Fprintf(out, "Provinsi (%d): %s\n", len(ref.Provinces), strings.Join(ref.Provinces, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(choicesCmd)
}
