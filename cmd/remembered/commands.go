package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cgallello/remembered/internal/calendar"
	"github.com/cgallello/remembered/plugin/notify"
	"github.com/cgallello/remembered/plugin/parse"
	"github.com/cgallello/remembered/server/service/reminder"
)

// REMEMBERED_NOTIFICATION_HOUR maps to the notification-hour key.
var envKeyReplacer = strings.NewReplacer("-", "_")

type parseOutput struct {
	parse.Result
	Countdown string `json:"countdown,omitempty"`
}

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text...>",
		Short: "Parse a reminder phrase and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := calendar.ParseLocation(viper.GetString("timezone"))
			if err != nil {
				return errors.Wrap(err, "invalid timezone")
			}
			return runParse(cmd.OutOrStdout(), strings.Join(args, " "), loc, time.Now)
		},
	}
}

func runParse(out io.Writer, text string, loc *time.Location, now func() time.Time) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to parse")
	}
	p := parse.NewParser(parse.WithLocation(loc), parse.WithClock(now))
	result := p.Parse(text)

	output := parseOutput{Result: result}
	if days, ok := reminder.DaysUntil(result.Date, now().In(loc)); ok {
		output.Countdown = reminder.Countdown(days)
	}
	return writeJSON(out, output)
}

type triggersOptions struct {
	date       string
	recurrence string
	intervals  []string
	at         string
}

type triggerOutput struct {
	ID        string    `json:"id"`
	Interval  string    `json:"interval"`
	Friendly  string    `json:"friendly"`
	At        time.Time `json:"at"`
	Repeating bool      `json:"repeating"`
}

func newTriggersCommand() *cobra.Command {
	opts := &triggersOptions{}
	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "Print the alerts a reminder date would register",
		Example: `  remembered triggers --date 2026-12-25 --recurrence annual --intervals oneWeek,dayOf
  remembered triggers --date 2027-03-01 --at 18:30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := calendar.ParseLocation(viper.GetString("timezone"))
			if err != nil {
				return errors.Wrap(err, "invalid timezone")
			}
			if opts.at == "" {
				opts.at = notify.AlertTime{
					Hour:   viper.GetInt("notification-hour"),
					Minute: viper.GetInt("notification-minute"),
				}.String()
			}
			return runTriggers(cmd.OutOrStdout(), opts, loc, time.Now)
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "reminder date as YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.recurrence, "recurrence", string(notify.RecurrenceNone), `"none" or "annual"`)
	cmd.Flags().StringSliceVar(&opts.intervals, "intervals", notify.Strings(notify.DefaultIntervals()), "lead times to alert at")
	cmd.Flags().StringVar(&opts.at, "at", "", "alert time as HH:MM, defaults to the notification hour and minute")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func runTriggers(out io.Writer, opts *triggersOptions, loc *time.Location, now func() time.Time) error {
	day, err := time.ParseInLocation("2006-01-02", opts.date, loc)
	if err != nil {
		return errors.Wrapf(err, "invalid date %q", opts.date)
	}
	date := calendar.AtClock(day, 12, 0)

	recurrence, err := notify.ParseRecurrence(opts.recurrence)
	if err != nil {
		return err
	}
	intervals, err := notify.ParseIntervals(opts.intervals)
	if err != nil {
		return err
	}
	at, err := parseAlertTime(opts.at)
	if err != nil {
		return err
	}

	triggers := notify.Schedule(notify.Input{
		Date:       &date,
		Recurrence: recurrence,
		Intervals:  intervals,
		Enabled:    true,
		At:         at,
	}, now().In(loc))

	output := make([]triggerOutput, 0, len(triggers))
	for _, trigger := range triggers {
		output = append(output, triggerOutput{
			ID:        notify.TriggerID("preview", trigger.Interval),
			Interval:  string(trigger.Interval),
			Friendly:  trigger.Interval.Friendly(),
			At:        trigger.At,
			Repeating: trigger.Repeating,
		})
	}
	return writeJSON(out, map[string]any{"triggers": output})
}

func parseAlertTime(s string) (notify.AlertTime, error) {
	var at notify.AlertTime
	if _, err := fmt.Sscanf(s, "%d:%d", &at.Hour, &at.Minute); err != nil {
		return at, errors.Errorf("invalid alert time %q, want HH:MM", s)
	}
	if err := at.Validate(); err != nil {
		return at, err
	}
	return at, nil
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
