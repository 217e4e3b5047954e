package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"addition-drill/internal/app"
	"addition-drill/internal/config"
	"addition-drill/internal/domain"
	"addition-drill/internal/generator"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs a drill in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var flags domain.SessionConfig

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run an addition drill in the terminal",
		Long: "Type an answer and press Enter to check it. An empty line or \"n\" moves to the\n" +
			"next problem, \"q\" stops the drill. The session summary is added to history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(*configPath)
			if err != nil {
				return err
			}
			drill := cfg.Drill.SessionConfig
			f := cmd.Flags()
			if f.Changed("min") {
				drill.Min = flags.Min
			}
			if f.Changed("max") {
				drill.Max = flags.Max
			}
			if f.Changed("count") {
				drill.Count = flags.Count
			}
			if f.Changed("time") {
				drill.TimePerProblem = flags.TimePerProblem
			}
			if f.Changed("auto-next") {
				drill.AutoNext = flags.AutoNext
			}
			if f.Changed("shuffle") {
				drill.Shuffle = flags.Shuffle
			}
			if drill.Min > drill.Max {
				return fmt.Errorf("min (%d) must not exceed max (%d)", drill.Min, drill.Max)
			}

			ctx := cmd.Context()
			history, closeHistory, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeHistory()

			ctrl := app.NewController(generator.New(), history, controllerOptions(cfg)...)
			runPlay(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), ctrl, drill)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.Min, "min", 0, "smallest operand")
	f.IntVar(&flags.Max, "max", 20, "largest operand")
	f.IntVar(&flags.Count, "count", 10, "number of problems")
	f.IntVar(&flags.TimePerProblem, "time", 0, "seconds per problem, 0 disables the timer")
	f.BoolVar(&flags.AutoNext, "auto-next", true, "move on automatically after each answer")
	f.BoolVar(&flags.Shuffle, "shuffle", false, "shuffle problem order")
	return cmd
}

// runPlay relays input lines to ctrl until the run ends and returns its record.
func runPlay(ctx context.Context, in io.Reader, out io.Writer, ctrl *app.Controller, cfg domain.SessionConfig) domain.SessionRecord {
	updates, cancel := ctrl.Subscribe()
	defer cancel()

	done := make(chan domain.SessionRecord, 1)
	go renderDrill(out, updates, done)

	quit := make(chan struct{})
	defer close(quit)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-quit:
				return
			}
		}
	}()

	ctrl.Start(ctx, cfg)
	for {
		select {
		case rec := <-done:
			return rec
		case line, ok := <-lines:
			if !ok {
				// stdin closed mid-run
				lines = nil
				ctrl.Stop(ctx, domain.ReasonUser)
				continue
			}
			switch text := strings.TrimSpace(line); text {
			case "q", "quit":
				ctrl.Stop(ctx, domain.ReasonUser)
			case "", "n":
				ctrl.Advance(ctx)
			default:
				ctrl.SubmitAnswer(ctx, text)
			}
		}
	}
}

func renderDrill(out io.Writer, updates <-chan app.Snapshot, done chan<- domain.SessionRecord) {
	shownProblem := ""
	shownFeedback := false
	for snap := range updates {
		if snap.State == app.StateIdle {
			if snap.LastRecord != nil {
				rec := *snap.LastRecord
				fmt.Fprintf(out, "\nSolved %d of %d in %ds (%s)\n", rec.Solved, rec.Total, rec.DurationSec, rec.Reason)
				done <- rec
				return
			}
			continue
		}
		if snap.Problem != nil && snap.Problem.ID != shownProblem {
			shownProblem = snap.Problem.ID
			shownFeedback = false
			p := snap.Problem
			if snap.Remaining > 0 {
				fmt.Fprintf(out, "[%d/%d] (%ds) %d %s %d = ", snap.Index+1, snap.Total, snap.Remaining, p.A, p.Op, p.B)
			} else {
				fmt.Fprintf(out, "[%d/%d] %d %s %d = ", snap.Index+1, snap.Total, p.A, p.Op, p.B)
			}
		}
		if snap.Feedback != nil && !shownFeedback {
			shownFeedback = true
			switch {
			case snap.Feedback.OK:
				fmt.Fprintf(out, "correct! score %d\n", snap.Score)
			case snap.Feedback.Expired:
				fmt.Fprintf(out, "\ntime's up, the answer was %d\n", snap.Feedback.Correct)
			default:
				fmt.Fprintf(out, "wrong, the answer was %d\n", snap.Feedback.Correct)
			}
		}
	}
}
