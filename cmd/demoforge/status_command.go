package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"demoforge/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show host readiness and external dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSectionHeader(out, "Environment", colorize)
			for _, check := range preflight.RunAll(cmd.Context(), cfg, nil) {
				printCheckLine(out, check.Name, check.Passed, check.Detail, colorize)
			}

			printSectionHeader(out, "Dependencies", colorize)
			for _, dep := range preflight.CheckSystemDeps(cfg) {
				detail := dep.Detail
				if dep.Available {
					detail = dep.Command
				}
				printCheckLine(out, dep.Name, dep.Available, detail, colorize)
			}

			return nil
		},
	}
}

func printSectionHeader(out io.Writer, title string, colorize bool) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		line = ansiBlue + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

func printCheckLine(out io.Writer, name string, ok bool, detail string, colorize bool) {
	mark := "ok"
	color := ansiGreen
	if !ok {
		mark = "FAIL"
		color = ansiYellow
	}
	if colorize {
		mark = color + mark + ansiReset
	}
	fmt.Fprintf(out, "  [%s] %-22s %s\n", mark, name, detail)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
