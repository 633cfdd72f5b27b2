package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"studyplan/internal/clock"
	"studyplan/internal/planner"
	"studyplan/internal/query"
	"studyplan/internal/reminder"
	"studyplan/internal/task"
	"studyplan/internal/timeline"
)

// withPlanner opens a planner without reminders for one-shot commands.
func (a *app) withPlanner(cmd *cobra.Command, fn func(ctx context.Context, p *planner.Planner) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := a.open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(ctx, p)
}

func (a *app) listCmd() *cobra.Command {
	var c query.Criteria
	var status, sortKey string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print tasks matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Status = query.ParseStatus(status)
			c.Sort = query.ParseSortKey(sortKey)
			return a.withPlanner(cmd, func(_ context.Context, p *planner.Planner) error {
				printTasks(cmd.OutOrStdout(), p.Visible(c), p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, pending, completed or overdue")
	cmd.Flags().StringVar(&sortKey, "sort", string(query.DefaultSort), "dueAsc, dueDesc, priorityDesc, priorityAsc, titleAsc or titleDesc")
	cmd.Flags().StringVarP(&c.Text, "text", "q", "", "match title or notes")
	cmd.Flags().StringVarP(&c.Subject, "subject", "s", "", "match subject")
	return cmd
}

func printTasks(w io.Writer, tasks []task.Task, p *planner.Planner) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	now := p.Now()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		flag := ""
		if t.Overdue(now) {
			flag = "overdue"
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s %s\t%s\t%s\n",
			t.ID, box, t.Title, t.SubjectLabel(), t.Priority,
			task.FormatDate(t.Due), task.FormatTime(t.Due),
			humanize.RelTime(t.Due, now, "ago", "from now"), flag)
	}
	tw.Flush()
	prog := p.Progress()
	fmt.Fprintf(w, "%d of %d completed (%d%%)\n", prog.Done, prog.Total, prog.Percent)
}

func (a *app) weekCmd() *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the tasks of a week, Monday first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPlanner(cmd, func(_ context.Context, p *planner.Planner) error {
				start := clock.AddWeeks(clock.WeekStart(p.Now()), offset)
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Week of %s\n", start.Format("Jan 2, 2006"))
				for _, d := range p.Week(start) {
					fmt.Fprintf(w, "%s\n", timeline.DayLabel(d.Date))
					for _, t := range d.Tasks {
						fmt.Fprintf(w, "  %s\n", timeline.ChipLabel(t))
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks relative to the current one")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var f task.Form
	var remind bool
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Title = strings.Join(args, " ")
			if remind {
				f.Reminder = "y"
			}
			return a.withPlanner(cmd, func(ctx context.Context, p *planner.Planner) error {
				if f.DueDate == "" {
					f.DueDate = p.Now().Format("2006-01-02")
				}
				d, err := task.ParseForm(f, p.Now().Location())
				if err != nil {
					return fmt.Errorf("invalid task: %w", err)
				}
				t, err := p.Save(ctx, d)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", t.Title, t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&f.Subject, "subject", "s", "", "subject")
	cmd.Flags().StringVar(&f.DueDate, "due", "", "due date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.DueTime, "at", "", "due time HH:MM (default "+task.DefaultDueTimeOfDay+")")
	cmd.Flags().StringVar(&f.Duration, "hours", "", "estimated duration in hours")
	cmd.Flags().StringVarP(&f.Priority, "priority", "p", "", "1-3 or low/medium/high")
	cmd.Flags().StringVar(&f.Notes, "notes", "", "notes")
	cmd.Flags().BoolVar(&remind, "remind", false, "remind before the task is due")
	return cmd
}

func (a *app) doneCmd() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPlanner(cmd, func(ctx context.Context, p *planner.Planner) error {
				id, err := resolveID(p, args[0])
				if err != nil {
					return err
				}
				t, err := p.SetCompleted(ctx, id, !undo)
				if err != nil {
					return err
				}
				state := "done"
				if !t.Completed {
					state = "pending"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %q %s\n", t.Title, state)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark pending again")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPlanner(cmd, func(ctx context.Context, p *planner.Planner) error {
				id, err := resolveID(p, args[0])
				if err != nil {
					return err
				}
				if err := p.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
				return nil
			})
		},
	}
}

// resolveID accepts a full id or an unambiguous prefix.
func resolveID(p *planner.Planner, ref string) (string, error) {
	if _, ok := p.Get(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, t := range p.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d tasks", ref, len(matches))
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all tasks as JSON (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPlanner(cmd, func(_ context.Context, p *planner.Planner) error {
				if len(args) == 0 {
					return p.Export(cmd.OutOrStdout())
				}
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", args[0], err)
				}
				if err := p.Export(f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all tasks with the contents of a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()
			return a.withPlanner(cmd, func(ctx context.Context, p *planner.Planner) error {
				n, err := p.Import(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", n)
				return nil
			})
		},
	}
}

func (a *app) remindCmd() *cobra.Command {
	var bell bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Stay in the foreground and print reminders as they come due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Reminders.Enabled {
				return errors.New("reminders are disabled in config")
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			p, err := a.open(ctx, cfg, reminder.NewWriter(out, bell))
			if err != nil {
				return err
			}
			defer p.Close()

			fmt.Fprintf(out, "Watching %d reminders, ctrl+c to stop\n", len(p.Reminders().Pending()))
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&bell, "bell", true, "ring the terminal bell with each reminder")
	return cmd
}
