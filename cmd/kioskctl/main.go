package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/flexfit/gym-api/internal/client"
	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/eventstore"
	"github.com/flexfit/gym-api/internal/schedule"
)

const usage = `kioskctl manages a gym's class calendar against the FlexFit API.

Usage:
  kioskctl [global flags] <command> [command flags]

Commands:
  login          authenticate and print an access token
  list           show the occurrence window for the kiosk's gym
  create         create a one-off or recurring class and reload the window
  delete         delete a single class and reload the window
  delete-series  delete a whole recurring series and reload the window

Global flags:
  -api    base URL of the API (default http://localhost:8080, env FLEXFIT_API)
  -token  bearer token (env FLEXFIT_TOKEN)
  -gym    gym id (env FLEXFIT_GYM_ID)
  -days   window length in days (default 14)
`

func main() {
	var (
		apiURL = flag.String("api", envOr("FLEXFIT_API", "http://localhost:8080"), "API base URL")
		token  = flag.String("token", os.Getenv("FLEXFIT_TOKEN"), "bearer token")
		gymID  = flag.String("gym", os.Getenv("FLEXFIT_GYM_ID"), "gym id")
		days   = flag.Int("days", schedule.DefaultHorizonDays, "window length in days")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api := client.New(*apiURL, *token, nil)
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if cmd == "login" {
		if err := runLogin(ctx, api, args); err != nil {
			fatal(err)
		}
		return
	}

	if *gymID == "" {
		fatal(fmt.Errorf("gym id is required (use -gym or FLEXFIT_GYM_ID)"))
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	store := eventstore.New(api, *gymID, logger)
	window := windowFromToday(*days)

	var err error
	switch cmd {
	case "list":
		err = runList(ctx, store, window)
	case "create":
		err = runCreate(ctx, store, window, *gymID, args)
	case "delete":
		err = runDelete(ctx, store, window, args)
	case "delete-series":
		err = runDeleteSeries(ctx, store, window, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func runLogin(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args) //nolint:errcheck

	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}
	resp, err := api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("gym: %s\nrole: %s\nexpires in: %ds\n\nexport FLEXFIT_TOKEN=%s\nexport FLEXFIT_GYM_ID=%s\n",
		resp.User.GymID, resp.User.Role, resp.ExpiresIn, resp.AccessToken, resp.User.GymID)
	return nil
}

func runList(ctx context.Context, store *eventstore.Store, window eventstore.Window) error {
	if err := store.Reload(ctx, window); err != nil {
		return err
	}
	printEvents(store, window)
	return nil
}

func runCreate(ctx context.Context, store *eventstore.Store, window eventstore.Window, gymID string, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	var (
		title      = fs.String("title", "", "class title")
		date       = fs.String("date", "", "first occurrence date (YYYY-MM-DD)")
		start      = fs.String("start", "", "start time (HH:MM)")
		end        = fs.String("end", "", "end time (HH:MM)")
		instructor = fs.String("instructor", "", "instructor name")
		level      = fs.String("level", "", "difficulty level")
		capacity   = fs.Int("capacity", 0, "capacity (0 = default)")
		daily      = fs.Bool("daily", false, "repeat every day")
		on         = fs.String("on", "", "comma-separated weekdays, e.g. mon,wed,fri")
		until      = fs.String("until", "", "inclusive recurrence end date (YYYY-MM-DD)")
	)
	fs.Parse(args) //nolint:errcheck

	req := dto.CreateClassRequest{
		GymID:             gymID,
		Title:             *title,
		Date:              *date,
		StartTime:         *start,
		EndTime:           *end,
		Instructor:        *instructor,
		Level:             *level,
		Capacity:          *capacity,
		RecurrenceEndDate: *until,
	}
	if *daily {
		req.IsRecurring = true
		req.RecurrsSunday = true
		req.RecurrsMonday = true
		req.RecurrsTuesday = true
		req.RecurrsWednesday = true
		req.RecurrsThursday = true
		req.RecurrsFriday = true
		req.RecurrsSaturday = true
	} else if *on != "" {
		req.IsRecurring = true
		if err := applyWeekdays(&req, *on); err != nil {
			return err
		}
	}

	if err := store.SubmitAndRefresh(ctx, req, window); err != nil {
		return err
	}
	printEvents(store, window)
	return nil
}

func runDelete(ctx context.Context, store *eventstore.Store, window eventstore.Window, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete requires exactly one class id")
	}
	if err := store.DeleteAndRefresh(ctx, args[0], window); err != nil {
		return err
	}
	printEvents(store, window)
	return nil
}

func runDeleteSeries(ctx context.Context, store *eventstore.Store, window eventstore.Window, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete-series requires exactly one parent recurrence id")
	}
	if err := store.DeleteSeries(ctx, args[0], window); err != nil {
		return err
	}
	printEvents(store, window)
	return nil
}

func applyWeekdays(req *dto.CreateClassRequest, spec string) error {
	for _, day := range strings.Split(spec, ",") {
		switch strings.ToLower(strings.TrimSpace(day)) {
		case "sun", "sunday":
			req.RecurrsSunday = true
		case "mon", "monday":
			req.RecurrsMonday = true
		case "tue", "tuesday":
			req.RecurrsTuesday = true
		case "wed", "wednesday":
			req.RecurrsWednesday = true
		case "thu", "thursday":
			req.RecurrsThursday = true
		case "fri", "friday":
			req.RecurrsFriday = true
		case "sat", "saturday":
			req.RecurrsSaturday = true
		default:
			return fmt.Errorf("unknown weekday %q", day)
		}
	}
	return nil
}

func printEvents(store *eventstore.Store, window eventstore.Window) {
	events := store.Events()
	fmt.Printf("%s — %s (%d occurrences, state %s)\n",
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"), len(events), store.State())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "START\tEND\tTITLE\tLEVEL\tINSTRUCTOR\tID")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.Start.Format("Mon 02 Jan 15:04"),
			ev.End.Format("15:04"),
			ev.Title, ev.Extended.Level, ev.Extended.Instructor, ev.ID)
	}
	w.Flush() //nolint:errcheck
}

func windowFromToday(days int) eventstore.Window {
	if days <= 0 {
		days = schedule.DefaultHorizonDays
	}
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return eventstore.Window{Start: start, End: start.AddDate(0, 0, days)}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "kioskctl:", err)
	os.Exit(1)
}
