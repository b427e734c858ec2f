package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"nonigma/internal/machine"
	"nonigma/internal/wheel"

	"github.com/spf13/cobra"
)

func newWheelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wheels",
		Short: "List the available wheels and the slots they fit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes := machine.Sizes()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCOLOUR\tLENGTH\tSLOTS")
			for _, w := range wheel.All() {
				var fits []string
				for slot, size := range sizes {
					if size == w.Len() {
						fits = append(fits, strconv.Itoa(slot))
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", w.Name, w.Colour, w.Len(), strings.Join(fits, ","))
			}
			return tw.Flush()
		},
	}
}
