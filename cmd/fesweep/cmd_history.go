package main

import (
	"fmt"

	"fesweep/internal/store"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sweeps",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.HistoryDB == "" {
			return fmt.Errorf("sweep history is disabled (history_db is empty)")
		}
		st, err := store.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer st.Close()

		sweeps, err := st.ListSweeps(historyLimit)
		if err != nil {
			return err
		}
		if len(sweeps) == 0 {
			fmt.Println("no sweeps recorded yet")
			return nil
		}
		for _, s := range sweeps {
			fmt.Printf("%s  %s  %-14s %s %g..%g x%d  ok=%d failed=%d\n",
				s.CreatedAt.Format("2006-01-02 15:04"), s.ID[:8], s.Kind,
				s.Parameter, s.ParamMin, s.ParamMax, s.Steps,
				s.Successful, s.Failed)
			if s.Workbook != "" {
				fmt.Printf("    %s\n", s.Workbook)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum sweeps to list")
}
