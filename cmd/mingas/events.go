package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mingas-api/internal/client"
	"mingas-api/internal/community"
	"mingas-api/internal/models"
)

func (a *app) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List and manage events",
	}
	cmd.AddCommand(
		a.eventsListCmd(),
		a.eventsShowCmd(),
		a.eventsCreateCmd(),
		a.eventsUpdateCmd(),
		a.eventsDeleteCmd(),
	)
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func (a *app) eventsListCmd() *cobra.Command {
	var (
		filters client.Filters
		search  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events ordered by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := a.client().ListEvents(cmd.Context(), filters)
			if err != nil {
				return a.fail(err)
			}
			events = community.FilterByText(events, search)
			if len(events) == 0 {
				fmt.Fprintln(a.out, "No events found.")
				return nil
			}

			now := a.now()
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tTITLE\tLOCATION\tPARTICIPANTS")
			for _, e := range events {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
					e.ID, formatDate(e.Date), models.StatusAt(e.Date, now), e.Title, e.Location, e.ParticipantsCount)
			}
			return tw.Flush()
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&filters.Upcoming, "upcoming", false, "Only events from now on")
	flags.StringVar(&filters.FromDate, "from", "", "Only events on or after this date")
	flags.StringVar(&filters.ToDate, "to", "", "Only events on or before this date")
	flags.StringVar(&search, "search", "", "Text to match in title, description or location")
	return cmd
}

func (a *app) eventsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an event and its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := a.client().GetEvent(cmd.Context(), id)
			if err != nil {
				return a.fail(err)
			}

			fmt.Fprintf(a.out, "%s\n", e.Title)
			fmt.Fprintf(a.out, "Date:      %s (%s)\n", formatDate(e.Date), models.StatusAt(e.Date, a.now()))
			fmt.Fprintf(a.out, "Location:  %s\n", e.Location)
			fmt.Fprintf(a.out, "\n%s\n\n", e.Description)
			fmt.Fprintf(a.out, "%s\n", plural(e.ParticipantsCount, "participant", "participants"))

			if len(e.Participants) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tREGISTERED")
			for _, p := range e.Participants {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, formatDate(p.CreatedAt))
			}
			return tw.Flush()
		},
	}
}

// eventFlags binds the writable event fields.
type eventFlags struct {
	title, description, date, location string
}

func (f *eventFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.title, "title", "", "Event title")
	flags.StringVar(&f.description, "description", "", "Event description")
	flags.StringVar(&f.date, "date", "", "Event date and time, e.g. 2025-06-01T09:00:00Z")
	flags.StringVar(&f.location, "location", "", "Event location")
}

// patch holds the flags that were given. With all set, every field is
// sent, so a create with missing flags reports each blank field.
func (f *eventFlags) patch(cmd *cobra.Command, all bool) models.EventPatch {
	var p models.EventPatch
	flags := cmd.Flags()
	for _, field := range []struct {
		name  string
		value string
		dst   *models.OptionalString
	}{
		{"title", f.title, &p.Title},
		{"description", f.description, &p.Description},
		{"date", f.date, &p.Date},
		{"location", f.location, &p.Location},
	} {
		if all || flags.Changed(field.name) {
			*field.dst = models.Set(field.value)
		}
	}
	return p
}

func (a *app) printEvent(verb string, e models.EventSummary) {
	fmt.Fprintf(a.out, "%s event %d: %s (%s, %s)\n", verb, e.ID, e.Title, formatDate(e.Date), e.Location)
}

func (a *app) eventsCreateCmd() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.client().CreateEvent(cmd.Context(), f.patch(cmd, true))
			if err != nil {
				return a.fail(err)
			}
			a.printEvent("Created", e)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) eventsUpdateCmd() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the given fields of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := a.client().UpdateEvent(cmd.Context(), id, f.patch(cmd, false))
			if err != nil {
				return a.fail(err)
			}
			a.printEvent("Updated", e)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) eventsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an event and all its registrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := a.client()
			if !yes {
				e, err := c.GetEvent(cmd.Context(), id)
				if err != nil {
					return a.fail(err)
				}
				question := fmt.Sprintf("Delete %q and its %s?", e.Title, plural(e.ParticipantsCount, "registration", "registrations"))
				if !a.confirm(question) {
					fmt.Fprintln(a.out, "Cancelled.")
					return nil
				}
			}
			if err := c.DeleteEvent(cmd.Context(), id); err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.out, "Deleted event %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
