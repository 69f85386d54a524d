package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-collection record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, eng, _, _, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			// The audit already walks every index; reuse its scan counts.
			reports, err := s.VerifyAll(cmd.Context(), false)
			if err != nil {
				return err
			}
			counts := map[string]int{}
			for _, r := range reports {
				// Unique single-key indexes count each record exactly once;
				// take the max across indexes to tolerate sparse ones.
				if r.Scanned > counts[r.Collection] {
					counts[r.Collection] = r.Scanned
				}
			}
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(os.Stdout, "%s\t%d\n", name, counts[name])
			}
			return nil
		},
	}
	rootCmd.AddCommand(statsCmd)
}
