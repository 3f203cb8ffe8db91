package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	stdout  io.Writer = colorable.NewColorableStdout()
	printer           = message.NewPrinter(language.English)

	rootCmd = &cobra.Command{
		Use:           "mcxclk",
		Short:         "Plan and apply MCX clock trees",
		Long:          "mcxclk validates clock profiles for MCX microcontrollers and sequences oscillators, PLLs, run modes and peripheral clocks on real or simulated hardware.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

const (
	colorReset = "\x1b[0m"
	colorGreen = "\x1b[32m"
	colorRed   = "\x1b[31m"
	colorBold  = "\x1b[1m"
)

func status(ok bool, format string, args ...interface{}) {
	color, tag := colorGreen, "ok"
	if !ok {
		color, tag = colorRed, "FAIL"
	}
	fmt.Fprintf(stdout, "%s%-4s%s %s\n", color, tag, colorReset, fmt.Sprintf(format, args...))
}

func heading(s string) {
	fmt.Fprintf(stdout, "%s%s%s\n", colorBold, s, colorReset)
}

// hz renders a frequency with digit grouping.
func hz(v uint32) string {
	if v == 0 {
		return "off"
	}
	return printer.Sprintf("%d Hz", v)
}

func init() {
	rootCmd.AddCommand(targetsCmd, planCmd, applyCmd, pllCmd, gateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		status(false, "%v", err)
		os.Exit(1)
	}
}
