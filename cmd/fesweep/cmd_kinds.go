package main

import (
	"fmt"
	"sort"

	"fesweep/internal/analysis"

	"github.com/spf13/cobra"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the registered analysis kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := analysis.DefaultRegistry(analysis.DefaultPlacement())
		for _, kind := range registry.Kinds() {
			adapter, err := registry.Lookup(kind)
			if err != nil {
				return err
			}
			desc := adapter.Descriptor()
			fmt.Printf("%s: %s\n", desc.Kind, desc.Title)
			fmt.Printf("  parameter: %s (%s), default %g..%g in %d steps\n",
				desc.ParameterName, desc.ParameterUnit,
				desc.DefaultRange.Min, desc.DefaultRange.Max, desc.DefaultRange.Steps)
			fmt.Println("  material schema:")
			keys := make([]string, 0, len(desc.MaterialSchema))
			for k := range desc.MaterialSchema {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				ps := desc.MaterialSchema[k]
				fmt.Printf("    %-22s %s (%s), default %g\n", k, ps.Name, ps.Unit, ps.Default)
			}
			fmt.Println()
		}
		return nil
	},
}
