package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mingas-api/internal/models"
	"mingas-api/internal/validation"
)

func (a *app) participantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "participants",
		Short: "Manage event registrations",
	}
	cmd.AddCommand(
		a.participantsListCmd(),
		a.participantsRegisterCmd(),
		a.participantsCancelCmd(),
	)
	return cmd
}

func (a *app) participantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list EVENT_ID",
		Short: "List the participants of an event in registration order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseID(args[0])
			if err != nil {
				return err
			}
			stats, err := a.client().ParticipantStats(cmd.Context(), eventID)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, plural(stats.Total, "participant", "participants"))
			if stats.Total == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tREGISTERED")
			for _, p := range stats.Participants {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, formatDate(p.CreatedAt))
			}
			return tw.Flush()
		},
	}
}

func (a *app) participantsRegisterCmd() *cobra.Command {
	var in models.ParticipantInput
	cmd := &cobra.Command{
		Use:   "register EVENT_ID",
		Short: "Register a person for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := a.client()
			taken, err := c.IsEmailRegistered(cmd.Context(), eventID, in.Email)
			if err != nil {
				return a.fail(err)
			}
			if taken {
				fmt.Fprintln(a.errOut, validation.MsgEmailTaken)
				return errReported
			}
			p, err := c.RegisterParticipant(cmd.Context(), eventID, in)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.out, "Registered %s <%s> as participant %d of event %d\n", p.Name, p.Email, p.ID, p.EventID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	return cmd
}

func (a *app) participantsCancelCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := a.client()
			if !yes {
				p, err := c.GetParticipant(cmd.Context(), id)
				if err != nil {
					return a.fail(err)
				}
				if !a.confirm(fmt.Sprintf("Cancel the registration of %s for %q?", p.Name, p.Event.Title)) {
					fmt.Fprintln(a.out, "Cancelled.")
					return nil
				}
			}
			if err := c.CancelParticipation(cmd.Context(), id); err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.out, "Cancelled registration %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
