package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"milan/internal/codegen"
	"milan/internal/config"
	"milan/internal/lexer"
	"milan/internal/parser"
	"milan/internal/semantic"
)

// compileFlags are the root command's flags. Each one overrides the matching
// milan.yaml setting, but only when it is given.
type compileFlags struct {
	configPath   string
	format       string
	output       string
	scratchShift int
	noWarnings   bool
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "",
		"Read settings from this file instead of "+config.FileName+" next to the source")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format: listing or yaml")
	cmd.Flags().StringVarP(&f.output, "output", "o", "",
		"Write the program to this file (\"-\" for standard output)")
	cmd.Flags().IntVar(&f.scratchShift, "scratch-shift", 0, "Gap between the variables and the scratch region")
	cmd.Flags().BoolVar(&f.noWarnings, "no-warnings", false, "Do not print warnings")
}

// settings resolves the configuration for compiling path: the settings file
// first, then any flag that was set.
func (f *compileFlags) settings(cmd *cobra.Command, path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		dir := "."
		if path != "" {
			dir = filepath.Dir(path)
		}
		cfg, _, err = config.Discover(dir)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = f.format
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("scratch-shift") {
		cfg.ScratchShift = f.scratchShift
	}
	if flags.Changed("no-warnings") {
		cfg.Warnings = !f.noWarnings
	}
	return cfg, cfg.Validate()
}

// runCompile compiles one program. Diagnostics go to stderr; code goes to
// the output file (or stdout) only when there are no errors.
func runCompile(cmd *cobra.Command, path string, flags *compileFlags) error {
	start := time.Now()

	cfg, err := flags.settings(cmd, path)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	src, err := readSource(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	glog.V(1).Infof("compiling %s (%d bytes)", sourceName(path), len(src))

	var code bytes.Buffer
	_, diags, err := parser.Compile(src, &code, opts)
	if err != nil {
		return err
	}
	reportDiagnostics(cmd.ErrOrStderr(), sourceName(path), diags, cfg.Warnings)
	if diags.Failed() {
		glog.V(3).Info(diags.Err())
		return errors.Errorf("%s: compilation failed with %d error(s)", sourceName(path), diags.Errors())
	}

	dest := outputPath(path, cfg.Output, opts.Format, flags.configPath)
	if dest == "" {
		_, err = cmd.OutOrStdout().Write(code.Bytes())
		return errors.Wrap(err, "writing program")
	}
	if err := codegen.WriteOutput(dest, code.Bytes()); err != nil {
		return err
	}
	glog.V(1).Infof("wrote %s; compile time %s", dest, time.Since(start))
	return nil
}

// reportDiagnostics prints one line per diagnostic, in source order.
func reportDiagnostics(w io.Writer, name string, diags *semantic.Diagnostics, warnings bool) {
	for _, d := range diags.All() {
		if d.Severity == semantic.Warning && !warnings {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", name, d.Error())
	}
}

// outputPath picks where the program goes. "" means standard output. A
// derived name never lands on a settings file: "milan.mil" compiled to yaml
// is written to "milan.mil.yaml", not over milan.yaml.
func outputPath(path, output string, format codegen.Format, configPath string) string {
	switch {
	case output == "-":
		return ""
	case output != "":
		return output
	case path == "":
		return ""
	}
	dest := codegen.OutputPath(path, format)
	if filepath.Base(dest) == config.FileName ||
		(configPath != "" && filepath.Clean(dest) == filepath.Clean(configPath)) {
		dest = path + format.Extension()
	}
	return dest
}

/**
* Reads the program source from path, or from stdin when path is empty.
* @param stdin The reader used for standard input.
* @param path The source file path.
* @return The source text, or an error if it cannot be read.
 */
func readSource(stdin io.Reader, path string) (string, error) {
	if path == "" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "cannot read standard input")
		}
		return string(content), nil
	}
	if !fileExists(path) {
		return "", errors.Errorf("file %s does not exist", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read %s", path)
	}
	return string(content), nil
}

/**
* Checks if a file exists at the given path.
* @param filePath The path to the file to check.
* @return true if the file exists, false otherwise.
 */
func fileExists(filePath string) bool {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return false
	}
	return true
}

func sourceName(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}

// newTokensCmd prints the token stream of a program, one token per line.
func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of a Milan program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathFromArgs(args)
			src, err := readSource(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			tokens, lexErrs := lexer.Lex(src)
			printTokens(cmd.OutOrStdout(), tokens)
			for _, e := range lexErrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", sourceName(path), e.Error())
			}
			if len(lexErrs) > 0 {
				return errors.Errorf("%s: %d lexical error(s)", sourceName(path), len(lexErrs))
			}
			return nil
		},
	}
}

func printTokens(w io.Writer, tokens []lexer.Token) {
	for _, token := range tokens {
		fmt.Fprintf(w, "%d:%d\t%s\t%s\n", token.Line, token.Column, token.Type, token.Value)
	}
}
