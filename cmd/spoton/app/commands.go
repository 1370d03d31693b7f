package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/tickets"
)

// NewListCommand creates the list command.
func (a *App) NewListCommand() *cobra.Command {
	var name, location string

	cmd := &cobra.Command{
		Use:     "list",
		GroupID: "catalog",
		Short:   "List events in the catalog",
		Long: `List shows the merged event view: the built-in seed catalog with your
local edits and deletions applied, plus live events from the shared store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			list, err := client.Search(ctx, name, location)
			if err != nil {
				return err
			}

			if a.config.Output == "json" {
				return printJSON(cmd, list)
			}
			return a.printEvents(cmd, list)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name substring")
	cmd.Flags().StringVar(&location, "location", "", "filter by location substring")

	return cmd
}

// NewShowCommand creates the show command.
func (a *App) NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "show <event-id>",
		GroupID: "catalog",
		Short:   "Show one event in detail",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			event, err := client.Event(ctx, args[0])
			if err != nil {
				return err
			}

			if a.config.Output == "json" {
				return printJSON(cmd, event)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", event.Name)
			fmt.Fprintf(out, "  ID:        %s\n", event.ID)
			fmt.Fprintf(out, "  Date:      %s\n", event.Date)
			fmt.Fprintf(out, "  Location:  %s\n", event.Location)
			fmt.Fprintf(out, "  Price:     %s\n", formatPrice(event.Price))
			if event.Organizer != "" {
				fmt.Fprintf(out, "  Organizer: %s\n", event.Organizer)
			}
			if event.Duration != "" {
				fmt.Fprintf(out, "  Duration:  %s\n", event.Duration)
			}
			if event.Status != "" {
				fmt.Fprintf(out, "  Status:    %s\n", event.Status)
			}
			fmt.Fprintf(out, "  Tickets:   %s\n", formatRemaining(event.Remaining()))
			if event.Description != "" {
				fmt.Fprintf(out, "\n%s\n", event.Description)
			}

			summary, err := client.Reviews().Recompute(ctx, event.ID)
			if err == nil && summary.Count > 0 {
				fmt.Fprintf(out, "\nRating: %.1f (%d reviews)\n", summary.Average, summary.Count)
			}
			if client.Favorites().IsFavorite(ctx, event.ID) {
				fmt.Fprintln(out, "\nSaved to favorites.")
			}
			return nil
		},
	}
}

// NewAddCommand creates the add command.
func (a *App) NewAddCommand() *cobra.Command {
	var event events.Event
	var quantity int

	cmd := &cobra.Command{
		Use:     "add",
		GroupID: "catalog",
		Short:   "Publish a new event to the shared store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("quantity") {
				event.Quantity = &quantity
			}

			id, err := client.CreateEvent(ctx, event)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created event %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&event.Name, "name", "", "event name (required)")
	cmd.Flags().StringVar(&event.Date, "date", "", `event date, e.g. "Nov 17, 2025" (required)`)
	cmd.Flags().StringVar(&event.Location, "location", "", "venue (required)")
	cmd.Flags().Float64Var(&event.Price, "price", 0, "standard ticket price")
	cmd.Flags().StringVar(&event.Description, "description", "", "event description")
	cmd.Flags().StringVar(&event.Organizer, "organizer", "", "organizer name")
	cmd.Flags().StringVar(&event.Duration, "duration", "", `duration, e.g. "3h"`)
	cmd.Flags().StringVar(&event.Image, "image", "", "image URL")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "ticket inventory (omit for unlimited)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

// NewEditCommand creates the edit command.
func (a *App) NewEditCommand() *cobra.Command {
	var name, date, location, description, organizer, duration, status, image string
	var price float64

	cmd := &cobra.Command{
		Use:     "edit <event-id>",
		GroupID: "catalog",
		Short:   "Edit an event",
		Long: `Edit changes the given fields of an event. Edits to seed events stay on
this device; edits to shared events require ownership and are visible to
everyone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			var patch events.Patch
			if cmd.Flags().Changed("name") {
				patch.Name = events.String(name)
			}
			if cmd.Flags().Changed("date") {
				patch.Date = events.String(date)
			}
			if cmd.Flags().Changed("location") {
				patch.Location = events.String(location)
			}
			if cmd.Flags().Changed("price") {
				patch.Price = events.Float(price)
			}
			if cmd.Flags().Changed("description") {
				patch.Description = events.String(description)
			}
			if cmd.Flags().Changed("organizer") {
				patch.Organizer = events.String(organizer)
			}
			if cmd.Flags().Changed("duration") {
				patch.Duration = events.String(duration)
			}
			if cmd.Flags().Changed("status") {
				patch.Status = events.String(status)
			}
			if cmd.Flags().Changed("image") {
				patch.Image = events.String(image)
			}

			if err := client.UpdateEvent(ctx, args[0], patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated event %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "event name")
	cmd.Flags().StringVar(&date, "date", "", "event date")
	cmd.Flags().StringVar(&location, "location", "", "venue")
	cmd.Flags().Float64Var(&price, "price", 0, "standard ticket price")
	cmd.Flags().StringVar(&description, "description", "", "event description")
	cmd.Flags().StringVar(&organizer, "organizer", "", "organizer name")
	cmd.Flags().StringVar(&duration, "duration", "", "duration")
	cmd.Flags().StringVar(&status, "status", "", "event status")
	cmd.Flags().StringVar(&image, "image", "", "image URL")

	return cmd
}

// NewDeleteCommand creates the delete command.
func (a *App) NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <event-id>",
		GroupID: "catalog",
		Short:   "Delete an event",
		Long: `Delete removes an event. Seed events are hidden on this device only;
shared events require ownership and disappear for everyone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			if err := client.DeleteEvent(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", args[0])
			return nil
		},
	}
}

// NewSeedCommand creates the seed command with its import subcommand.
func (a *App) NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "seed",
		GroupID: "catalog",
		Short:   "Manage the built-in seed catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import",
		Short: "Copy seed events into the shared store",
		Long: `Import copies the built-in seed events into the shared store so other
devices see them. Events already present by name and date are skipped,
so re-running the import is safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			created, skipped, err := client.ImportSeed(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d events, skipped %d already present\n", created, skipped)
			return nil
		},
	})

	return cmd
}

// NewWatchCommand creates the watch command.
func (a *App) NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		GroupID: "catalog",
		Short:   "Watch the catalog for live changes",
		Long:    `Watch prints catalog changes as they happen, until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			client.OnEventAdded(func(e events.Event) {
				fmt.Fprintf(out, "added    %s  %s (%s)\n", e.ID, e.Name, e.Date)
			})
			client.OnEventUpdated(func(_, e events.Event) {
				fmt.Fprintf(out, "updated  %s  %s (%s)\n", e.ID, e.Name, e.Date)
			})
			client.OnEventRemoved(func(e events.Event) {
				fmt.Fprintf(out, "removed  %s  %s\n", e.ID, e.Name)
			})

			if err := client.WatchOn(ctx); err != nil {
				return err
			}
			defer client.WatchOff()

			// Establish the baseline view so the hooks fire on changes.
			if _, err := client.Catalog(ctx); err != nil {
				return err
			}

			fmt.Fprintln(out, "Watching for changes. Ctrl-C to stop.")
			<-ctx.Done()
			return nil
		},
	}
}

// NewSaveCommand creates the save command.
func (a *App) NewSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "save [event-id]",
		GroupID: "activity",
		Short:   "Toggle an event in your favorites, or list them",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				list := client.Favorites().List(ctx)
				if a.config.Output == "json" {
					return printJSON(cmd, list)
				}
				return a.printEvents(cmd, list)
			}

			event, err := client.Event(ctx, args[0])
			if err != nil {
				return err
			}

			saved, err := client.Favorites().Toggle(ctx, event)
			if err != nil {
				return err
			}
			if saved {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %q to favorites\n", event.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from favorites\n", event.Name)
			}
			return nil
		},
	}
}

// NewBuyCommand creates the buy command.
func (a *App) NewBuyCommand() *cobra.Command {
	var quantity int
	var ticketType string

	cmd := &cobra.Command{
		Use:     "buy <event-id>",
		GroupID: "activity",
		Short:   "Buy tickets for an event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			// The purchase itself never rejects an oversell, so the
			// screen-side check on remaining inventory lives here.
			event, err := client.Event(ctx, args[0])
			if err != nil {
				return err
			}
			if remaining := event.Remaining(); remaining != -1 && remaining < quantity {
				return fmt.Errorf("only %d tickets left for %q", remaining, event.Name)
			}

			principal, err := client.Principal(ctx)
			if err != nil {
				return err
			}

			receipt, err := client.Tickets().Purchase(ctx, tickets.Request{
				EventID:    args[0],
				UserID:     principal.ID,
				Quantity:   quantity,
				TicketType: ticketType,
			})
			if err != nil {
				return err
			}

			if a.config.Output == "json" {
				return printJSON(cmd, receipt)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Purchased %d %s ticket(s) for %s\n", receipt.Quantity, receipt.TicketType, receipt.EventName)
			fmt.Fprintf(out, "  Total:     %s\n", formatPrice(receipt.Total))
			fmt.Fprintf(out, "  Remaining: %s\n", formatRemaining(receipt.Remaining))
			fmt.Fprintf(out, "  Purchase:  %s\n", receipt.PurchaseID)
			return nil
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of tickets")
	cmd.Flags().StringVar(&ticketType, "type", tickets.TypeStandard, "ticket type: standard, vip")

	return cmd
}

// NewTicketsCommand creates the tickets command.
func (a *App) NewTicketsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tickets",
		GroupID: "activity",
		Short:   "List your purchased tickets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			principal, err := client.Principal(ctx)
			if err != nil {
				return err
			}

			list, err := client.Tickets().TicketsFor(ctx, principal.ID)
			if err != nil {
				return err
			}

			if a.config.Output == "json" {
				return printJSON(cmd, list)
			}

			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tickets yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EVENT\tDATE\tLOCATION\tQTY\tTYPE")
			for _, t := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					t.EventName, t.EventDate, t.Location, t.Quantity, t.TicketType)
			}
			return w.Flush()
		},
	}
}

// NewReviewCommand creates the review command.
func (a *App) NewReviewCommand() *cobra.Command {
	var rating int
	var comment string

	cmd := &cobra.Command{
		Use:     "review <event-id>",
		GroupID: "activity",
		Short:   "Review a past event, or list its reviews",
		Long: `Review submits a rating for an event you attended. Events can only be
reviewed after their date has passed, once per user. Without --rating it
lists the event's reviews instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("rating") {
				return a.printReviews(cmd, args[0])
			}

			principal, err := client.Principal(ctx)
			if err != nil {
				return err
			}

			err = client.Reviews().Submit(ctx, events.Review{
				EventID: args[0],
				UserID:  principal.ID,
				Rating:  rating,
				Comment: comment,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Review submitted.")
			return nil
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "review comment")

	return cmd
}

// printReviews lists an event's reviews with the aggregate on top.
func (a *App) printReviews(cmd *cobra.Command, eventID string) error {
	ctx := cmd.Context()
	client, err := a.Client(ctx)
	if err != nil {
		return err
	}

	list, err := client.Reviews().For(ctx, eventID)
	if err != nil {
		return err
	}

	if a.config.Output == "json" {
		return printJSON(cmd, list)
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No reviews yet.")
		return nil
	}

	summary, err := client.Reviews().Recompute(ctx, eventID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Rating: %.1f (%d reviews)\n\n", summary.Average, summary.Count)

	for _, r := range list {
		fmt.Fprintf(out, "  %d/5", r.Rating)
		if r.Comment != "" {
			fmt.Fprintf(out, "  %s", r.Comment)
		}
		fmt.Fprintln(out)
	}
	return nil
}

// NewWeatherCommand creates the weather command.
func (a *App) NewWeatherCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "weather <event-id>",
		GroupID: "activity",
		Short:   "Show the forecast for an event's day",
		Long: `Weather looks up the OpenWeather forecast for the event's venue on its
date. Events further out than the five-day forecast window have no
forecast yet. Requires OPENWEATHER_API_KEY.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			w, err := a.Weather()
			if err != nil {
				return err
			}

			event, err := client.Event(ctx, args[0])
			if err != nil {
				return err
			}

			forecast, err := w.EventDay(ctx, event)
			if err != nil {
				return err
			}

			if a.config.Output == "json" {
				return printJSON(cmd, forecast)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s on %s in %s\n", event.Name, event.Date, forecast.City)
			fmt.Fprintf(out, "  %s, %.0f°C (%.0f to %.0f°C)\n",
				forecast.Description, forecast.Temp, forecast.TempMin, forecast.TempMax)
			return nil
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "spoton version %s\n", a.version)
			fmt.Fprintf(out, "commit: %s\n", a.commit)
			fmt.Fprintf(out, "built: %s\n", a.date)
			fmt.Fprintf(out, "built by: %s\n", a.builtBy)
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func (a *App) NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current guest identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.Client(ctx)
			if err != nil {
				return err
			}

			principal, err := client.Principal(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), principal.ID)
			return nil
		},
	}
}

// printEvents renders events as an aligned table.
func (a *App) printEvents(cmd *cobra.Command, list []events.Event) error {
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events.")
		return nil
	}

	ctx := cmd.Context()
	client, err := a.Client(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDATE\tLOCATION\tPRICE\tTICKETS\t")
	for _, e := range list {
		marker := ""
		if client.Favorites().IsFavorite(ctx, e.ID) {
			marker = "saved"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Name, e.Date, e.Location,
			formatPrice(e.Price), formatRemaining(e.Remaining()), marker)
	}
	return w.Flush()
}

// printJSON renders any value as indented JSON on stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatPrice(price float64) string {
	if price == 0 {
		return "free"
	}
	return "€" + strconv.FormatFloat(price, 'f', 2, 64)
}

func formatRemaining(remaining int) string {
	switch {
	case remaining == -1:
		return "unlimited"
	case remaining == 0:
		return "sold out"
	default:
		return strconv.Itoa(remaining)
	}
}
