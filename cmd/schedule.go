package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/container"
	"github.com/agorabot/agora/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage scheduled debates",
}

func init() {
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
	scheduleCmd.AddCommand(scheduleEnableCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
}

func scheduleStorePath() string {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return (&config.Config{}).ScheduleStorePath()
	}
	return cfg.ScheduleStorePath()
}

// ---- list ------------------------------------------------------------------

var scheduleListAll bool

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled debates",
	RunE: func(_ *cobra.Command, _ []string) error {
		svc := schedule.NewService(scheduleStorePath())
		jobs := svc.ListJobs(scheduleListAll)
		if len(jobs) == 0 {
			fmt.Println("No scheduled debates.")
			return nil
		}
		fmt.Printf("%-10s %-18s %-22s %-10s %-17s %s\n", "ID", "Name", "Schedule", "Status", "Next Run", "Proposition")
		fmt.Println(strings.Repeat("-", 100))
		for _, j := range jobs {
			status := "enabled"
			if !j.Enabled {
				status = "disabled"
			}
			nextRun := ""
			if j.State.NextRunAtMs != nil {
				nextRun = time.UnixMilli(*j.State.NextRunAtMs).Format("2006-01-02 15:04")
			}
			fmt.Printf("%-10s %-18s %-22s %-10s %-17s %s\n",
				j.ID, truncStr(j.Name, 17), truncStr(formatSpec(j.Schedule), 21),
				status, nextRun, truncStr(j.Payload.Proposition, 40))
		}
		return nil
	},
}

func init() {
	scheduleListCmd.Flags().BoolVarP(&scheduleListAll, "all", "a", false, "Include disabled jobs")
}

// ---- add -------------------------------------------------------------------

var (
	scheduleAddName        string
	scheduleAddProposition string
	scheduleAddRoster      string
	scheduleAddProvider    string
	scheduleAddRounds      int
	scheduleAddMaxAgents   int
	scheduleAddEvery       int
	scheduleAddCron        string
	scheduleAddTZ          string
	scheduleAddAt          string
	scheduleAddDeliver     bool
	scheduleAddChannel     string
	scheduleAddTo          string
)

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a scheduled debate",
	RunE: func(_ *cobra.Command, _ []string) error {
		if scheduleAddTZ != "" && scheduleAddCron == "" {
			return fmt.Errorf("--tz can only be used with --cron")
		}

		var spec schedule.Spec
		switch {
		case scheduleAddEvery > 0:
			everyMs := int64(scheduleAddEvery) * 1000
			spec = schedule.Spec{Kind: "every", EveryMs: &everyMs}
		case scheduleAddCron != "":
			spec = schedule.Spec{Kind: "cron", Expr: &scheduleAddCron}
			if scheduleAddTZ != "" {
				spec.TZ = &scheduleAddTZ
			}
		case scheduleAddAt != "":
			dt, err := time.ParseInLocation("2006-01-02T15:04:05", scheduleAddAt, time.Local)
			if err != nil {
				dt, err = time.Parse(time.RFC3339, scheduleAddAt)
				if err != nil {
					return fmt.Errorf("invalid --at value %q: %w", scheduleAddAt, err)
				}
			}
			atMs := dt.UnixMilli()
			spec = schedule.Spec{Kind: "at", AtMs: &atMs}
		default:
			return fmt.Errorf("must specify --every, --cron, or --at")
		}

		payload := schedule.Payload{
			Roster:      scheduleAddRoster,
			Provider:    scheduleAddProvider,
			Proposition: scheduleAddProposition,
			Rounds:      scheduleAddRounds,
			MaxAgents:   scheduleAddMaxAgents,
			Deliver:     scheduleAddDeliver,
		}
		if scheduleAddChannel != "" {
			payload.Channel = &scheduleAddChannel
		}
		if scheduleAddTo != "" {
			payload.To = &scheduleAddTo
		}

		svc := schedule.NewService(scheduleStorePath())
		job, err := svc.AddJob(scheduleAddName, spec, payload, spec.Kind == "at")
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added debate '%s' (%s)\n", job.Name, job.ID)
		return nil
	},
}

func init() {
	scheduleAddCmd.Flags().StringVarP(&scheduleAddName, "name", "n", "", "Job name (required)")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddProposition, "proposition", "P", "", "Proposition to debate (required)")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddRoster, "roster", "r", "", "Roster key from config")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddProvider, "provider", "p", "", "Provider key from config")
	scheduleAddCmd.Flags().IntVar(&scheduleAddRounds, "rounds", 1, "Rounds per run")
	scheduleAddCmd.Flags().IntVar(&scheduleAddMaxAgents, "max-agents", 0, "Response budget per round")
	scheduleAddCmd.Flags().IntVarP(&scheduleAddEvery, "every", "e", 0, "Run every N seconds")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddCron, "cron", "c", "", "Cron expression (e.g. '0 9 * * *')")
	scheduleAddCmd.Flags().StringVar(&scheduleAddTZ, "tz", "", "IANA timezone for --cron")
	scheduleAddCmd.Flags().StringVar(&scheduleAddAt, "at", "", "Run once at ISO datetime")
	scheduleAddCmd.Flags().BoolVarP(&scheduleAddDeliver, "deliver", "d", false, "Deliver the transcript to a channel")
	scheduleAddCmd.Flags().StringVar(&scheduleAddChannel, "channel", "", "Channel for delivery (slack, telegram)")
	scheduleAddCmd.Flags().StringVar(&scheduleAddTo, "to", "", "Destination override for delivery")

	_ = scheduleAddCmd.MarkFlagRequired("name")
	_ = scheduleAddCmd.MarkFlagRequired("proposition")
}

// ---- remove / enable / run -------------------------------------------------

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <job-id>",
	Short: "Remove a scheduled debate",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc := schedule.NewService(scheduleStorePath())
		if svc.RemoveJob(args[0]) {
			fmt.Printf("✓ Removed job %s\n", args[0])
		} else {
			fmt.Printf("Job %s not found\n", args[0])
		}
		return nil
	},
}

var scheduleEnableDisable bool

var scheduleEnableCmd = &cobra.Command{
	Use:   "enable <job-id>",
	Short: "Enable (or disable) a scheduled debate",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc := schedule.NewService(scheduleStorePath())
		job, ok := svc.EnableJob(args[0], !scheduleEnableDisable)
		if !ok {
			fmt.Printf("Job %s not found\n", args[0])
			return nil
		}
		action := "enabled"
		if scheduleEnableDisable {
			action = "disabled"
		}
		fmt.Printf("✓ Job '%s' %s\n", job.Name, action)
		return nil
	},
}

func init() {
	scheduleEnableCmd.Flags().BoolVar(&scheduleEnableDisable, "disable", false, "Disable instead of enable")
}

var scheduleRunForce bool

var scheduleRunCmd = &cobra.Command{
	Use:   "run <job-id>",
	Short: "Manually run a scheduled debate",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load(config.ConfigPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		c, err := container.New(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if c.Schedule().RunJob(ctx, args[0], scheduleRunForce) {
			fmt.Println("✓ Debate executed")
		} else {
			fmt.Printf("Failed to run job %s (not found or disabled; use --force)\n", args[0])
		}
		return nil
	},
}

func init() {
	scheduleRunCmd.Flags().BoolVarP(&scheduleRunForce, "force", "f", false, "Run even if disabled")
}

// ---- helpers ---------------------------------------------------------------

func formatSpec(s schedule.Spec) string {
	switch s.Kind {
	case "every":
		if s.EveryMs != nil {
			return fmt.Sprintf("every %ds", *s.EveryMs/1000)
		}
	case "cron":
		if s.Expr != nil {
			if s.TZ != nil {
				return *s.Expr + " (" + *s.TZ + ")"
			}
			return *s.Expr
		}
	case "at":
		return "one-time"
	}
	return s.Kind
}

func truncStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
