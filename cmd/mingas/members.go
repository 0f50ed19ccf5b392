package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mingas-api/internal/community"
)

func (a *app) membersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List unique community members across all events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := community.CollectMembers(cmd.Context(), a.client())
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, plural(len(members), "member", "members"))
			for _, m := range members {
				fmt.Fprintf(a.out, "\n%s <%s>, %s\n", m.Name, m.Email, plural(len(m.Registrations), "event", "events"))
				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				for _, r := range m.Registrations {
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", formatDate(r.EventDate), r.EventTitle, r.Location)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
