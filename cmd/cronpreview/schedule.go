package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	robfig "github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/djlord-it/cronpreview/internal/config"
	"github.com/djlord-it/cronpreview/internal/cron"
	"github.com/djlord-it/cronpreview/internal/preview"
)

// scheduleFlags are shared by the commands that compute executions.
type scheduleFlags struct {
	timezone string
	count    string
	after    string
	output   string
	horizon  int
}

func (f *scheduleFlags) register(cmd *cobra.Command, withCount bool) {
	cmd.Flags().StringVarP(&f.timezone, "timezone", "z", "UTC", "IANA timezone the schedule is evaluated in")
	cmd.Flags().StringVar(&f.after, "after", "", "RFC 3339 reference instant (default: now)")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.Flags().IntVar(&f.horizon, "horizon", cron.DefaultHorizonYears, "Years to search for a matching instant")
	if withCount {
		cmd.Flags().StringVarP(&f.count, "count", "n", fmt.Sprint(preview.DefaultCount), "Number of executions, 1-10")
	}
}

// service builds a preview service and the per-call options from the flags.
func (f *scheduleFlags) service() (*preview.Service, []preview.Option, error) {
	if err := validateOutput(f.output); err != nil {
		return nil, nil, err
	}
	if f.horizon < config.MinSearchHorizonYears || f.horizon > config.MaxSearchHorizonYears {
		return nil, nil, withExitCode(exitInvalidInput, fmt.Errorf("--horizon must be between %d and %d",
			config.MinSearchHorizonYears, config.MaxSearchHorizonYears))
	}

	var opts []preview.Option
	if f.after != "" {
		after, err := cron.ParseInstant(f.after)
		if err != nil {
			return nil, nil, inputError(err)
		}
		opts = append(opts, preview.At(after))
	}
	return preview.New(preview.Config{HorizonYears: f.horizon}), opts, nil
}

func (f *scheduleFlags) parseCount() (int, error) {
	n, err := preview.ParseCount(f.count)
	if err != nil {
		return 0, inputError(err)
	}
	return n, nil
}

// inputError marks engine errors as caller mistakes.
func inputError(err error) error {
	if cron.KindOf(err) != "" {
		return withExitCode(exitInvalidInput, err)
	}
	return err
}

func newPreviewCmd() *cobra.Command {
	var f scheduleFlags

	cmd := &cobra.Command{
		Use:   "preview EXPRESSION",
		Short: "Describe a schedule and list its next executions",
		Example: `  cronpreview preview "0 9 * * 1-5" --timezone America/New_York
  cronpreview preview "*/15 * * * *" -n 3 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, opts, err := f.service()
			if err != nil {
				return err
			}
			count, err := f.parseCount()
			if err != nil {
				return err
			}

			p, err := svc.Preview(cmdContext(cmd), args[0], f.timezone, count, opts...)
			if err != nil {
				return inputError(err)
			}
			return writeOutput(cmd.OutOrStdout(), f.output, p, func(sb *strings.Builder) {
				fmt.Fprintf(sb, "Expression:  %s\n", p.Expression)
				fmt.Fprintf(sb, "Timezone:    %s\n", p.Timezone)
				fmt.Fprintf(sb, "Description: %s\n\n", p.Description)
				for i, s := range p.Formatted {
					fmt.Fprintf(sb, "%3d. %s\n", i+1, s)
				}
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newNextCmd() *cobra.Command {
	var f scheduleFlags

	cmd := &cobra.Command{
		Use:   "next EXPRESSION",
		Short: "List the next execution instants as RFC 3339 timestamps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, opts, err := f.service()
			if err != nil {
				return err
			}
			count, err := f.parseCount()
			if err != nil {
				return err
			}

			executions, err := svc.NextExecutions(cmdContext(cmd), args[0], f.timezone, count, opts...)
			if err != nil {
				return inputError(err)
			}
			rendered := make([]string, len(executions))
			for i, t := range executions {
				rendered[i] = t.Format(time.RFC3339)
			}
			return writeOutput(cmd.OutOrStdout(), f.output, rendered, func(sb *strings.Builder) {
				for _, s := range rendered {
					sb.WriteString(s)
					sb.WriteByte('\n')
				}
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

type describeResult struct {
	Expression  string `json:"expression" yaml:"expression"`
	Timezone    string `json:"timezone" yaml:"timezone"`
	Description string `json:"description" yaml:"description"`
}

func newDescribeCmd() *cobra.Command {
	var f scheduleFlags

	cmd := &cobra.Command{
		Use:   "describe EXPRESSION",
		Short: "Describe a schedule in English",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, opts, err := f.service()
			if err != nil {
				return err
			}

			desc, err := svc.DescribeSchedule(cmdContext(cmd), args[0], f.timezone, opts...)
			if err != nil {
				return inputError(err)
			}
			res := describeResult{Expression: args[0], Timezone: f.timezone, Description: desc}
			return writeOutput(cmd.OutOrStdout(), f.output, res, func(sb *strings.Builder) {
				sb.WriteString(desc)
				sb.WriteByte('\n')
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

func newFormatCmd() *cobra.Command {
	var timezone string

	cmd := &cobra.Command{
		Use:   "format INSTANT",
		Short: "Format an RFC 3339 instant the way executions are rendered",
		Example: `  cronpreview format 2024-01-15T14:00:00Z --timezone America/New_York`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instant, err := cron.ParseInstant(args[0])
			if err != nil {
				return inputError(err)
			}
			out, err := preview.New(preview.Config{}).FormatExecution(instant, timezone)
			if err != nil {
				return inputError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&timezone, "timezone", "z", "UTC", "IANA timezone to render the instant in")
	return cmd
}

// robfigParser is the parser used by schedulers built on robfig/cron.
var robfigParser = robfig.NewParser(robfig.Minute | robfig.Hour | robfig.Dom | robfig.Month | robfig.Dow)

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate EXPRESSION",
		Short: "Check that a cron expression parses",
		Long: `Check that a cron expression parses and print its normalised form.

With --strict the expression must also be accepted by robfig/cron, the parser
used by most Go schedulers. Day-of-week 7 is an example of syntax accepted
here but rejected there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := cron.Parse(args[0])
			if err != nil {
				return inputError(err)
			}
			if strict {
				if _, err := robfigParser.Parse(args[0]); err != nil {
					return withExitCode(exitInvalidInput, fmt.Errorf("not portable to robfig/cron: %w", err))
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", expr)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Also require the expression to parse with robfig/cron")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
