package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var repair bool
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Audit every secondary index against primary records",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, eng, _, _, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			reports, err := s.VerifyAll(cmd.Context(), repair)
			if err != nil {
				return err
			}
			dirty := 0
			for _, r := range reports {
				status := "clean"
				if !r.Clean() {
					status = fmt.Sprintf("dangling=%d missing=%d repaired=%d",
						len(r.Dangling), len(r.Missing), r.Repaired)
					dirty++
				}
				fmt.Fprintf(os.Stdout, "%s/%s\tscanned=%d\t%s\n", r.Collection, r.Index, r.Scanned, status)
			}
			if dirty > 0 && !repair {
				return fmt.Errorf("%d indexes need repair (re-run with --repair)", dirty)
			}
			return nil
		},
	}
	verifyCmd.Flags().BoolVar(&repair, "repair", false, "Repair violations instead of just reporting them")
	rootCmd.AddCommand(verifyCmd)
}
