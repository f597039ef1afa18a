package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

const VERSION = "0.2.0"

func main() {
	if err := newMilancCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		glog.Flush()
		os.Exit(1)
	}
}

// newMilancCmd creates the root command. Run without a subcommand it
// compiles a Milan program.
func newMilancCmd() *cobra.Command {
	var logToStderr bool
	var verbose int
	var flags compileFlags

	cmd := &cobra.Command{
		Use:   "milanc [file]",
		Short: "Compile Milan programs for the Milan stack VM",
		Long: "Compile a Milan program into Milan VM code.\n" +
			"\n" +
			"The program is read from [file], or from standard input when [file] is\n" +
			"omitted or \"-\". Code is written only if the program has no errors.\n" +
			"Settings are read from milan.yaml next to the source file, and flags\n" +
			"override them.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(logToStderr, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, pathFromArgs(args), &flags)
		},
	}

	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(
		&verbose, "verbose", "v", 0, "Enable verbose logging (e.g., v=3); anything >3 is very verbose")
	flags.register(cmd)

	cmd.AddCommand(newTokensCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// pathFromArgs returns the source path argument, or "" for standard input.
func pathFromArgs(args []string) string {
	if len(args) > 0 && args[0] != "-" {
		return args[0]
	}
	return ""
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print milanc's version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "milanc version %v\n", VERSION)
		},
	}
}
