package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cyp0633/libgcal/gcal"
	"github.com/spf13/cobra"
)

func newCalendarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List, add and delete calendars",
	}
	cmd.AddCommand(newCalendarsListCmd(), newCalendarsAddCmd(), newCalendarsDeleteCmd())
	return cmd
}

func newCalendarsListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List owned calendars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession()
			if err != nil {
				return err
			}
			calendars, err := session.GetCalendarList(cmd.Context(), gcal.ListOptions{AllCalendars: all})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TITLE\tTIMEZONE\tFEED\tEDIT PATH")
			for _, c := range calendars {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Title, c.TimeZone, c.Path, c.EditPath)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include subscribed calendars")
	return cmd
}

func newCalendarsAddCmd() *cobra.Command {
	cal := &gcal.Calendar{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a calendar",
		Example: `  gcal calendars add --title "Little League" --timezone America/Los_Angeles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession()
			if err != nil {
				return err
			}
			path, err := session.AddCalendar(cmd.Context(), cal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&cal.Title, "title", "", "calendar title")
	cmd.Flags().StringVar(&cal.Summary, "summary", "", "calendar description")
	cmd.Flags().StringVar(&cal.TimeZone, "timezone", "UTC", "IANA time zone")
	cmd.Flags().StringVar(&cal.Color, "color", gcal.DefaultColor, "calendar color")
	cmd.MarkFlagRequired("title")
	return cmd
}

func newCalendarsDeleteCmd() *cobra.Command {
	var editPath string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a calendar by its edit path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession()
			if err != nil {
				return err
			}
			return session.DeleteCalendar(cmd.Context(), &gcal.Calendar{EditPath: editPath})
		},
	}
	cmd.Flags().StringVar(&editPath, "edit-path", "", "edit path as shown by 'calendars list'")
	cmd.MarkFlagRequired("edit-path")
	return cmd
}
