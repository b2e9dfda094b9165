// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

// Command hbcht is the combined interpreter/compiler front end. It loads
// an hbcht source or bytecode file, then either runs it and prints the
// resulting tape or compiles it to bytecode/Python/C, following the
// load → run-or-emit → report flow of the reference emulator's main
// (errors reported cleanly with a nonzero exit, never a Go panic).
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nqpz/hbcht"
)

var (
	bruteRun       bool
	directionArgs  []string
	language       string
	compileMode    bool
	functionOnly   bool
	inputAsText    bool
	notInputAsText bool
	outputAsText   bool
	notOutputAsText bool
	overwrite      bool
)

func main() {
	root := &cobra.Command{
		Use:   "hbcht [OPTION]... INFILE [INPUT...|OUTFILE]",
		Short: "interpreter and compiler for Half-Broken Car in Heavy Traffic",
		Long: `A combined interpreter and compiler for the Half-Broken Car in Heavy
Traffic programming language.

If no compile option is given, INFILE is interpreted, input is taken from
any arguments after INFILE, and the resulting tape is printed to standard
out. When compiling, INFILE is lowered into bytecode, Python, or C and
written to OUTFILE.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         runRoot,
	}

	flags := root.Flags()
	flags.BoolVarP(&bruteRun, "brute-run", "b", false, "run all four paths of the program")
	flags.StringArrayVarP(&directionArgs, "direction", "d", nil, "run only this path (repeatable): l[eft]|r[ight]|d[own]|u[p]")
	flags.StringVarP(&language, "language", "l", "", "target language when compiling: hbc, python, c")
	flags.BoolVarP(&compileMode, "compile", "c", false, "compile the program instead of running it")
	flags.BoolVarP(&functionOnly, "function-only", "f", false, "when compiling, emit only the core function")
	flags.BoolVarP(&inputAsText, "input-as-text", "t", false, "see all input as text instead of numbers")
	flags.BoolVarP(&notInputAsText, "not-input-as-text", "T", false, "force input to be read as numbers, overriding @intext")
	flags.BoolVarP(&outputAsText, "output-as-text", "s", false, "show output as a text string instead of a list of numbers")
	flags.BoolVarP(&notOutputAsText, "not-output-as-text", "S", false, "force numeric output, overriding @outtext")
	flags.BoolVarP(&overwrite, "overwrite-file", "y", false, "when compiling, overwrite the output file if it exists")

	if err := root.Execute(); err != nil {
		glog.Errorf("hbcht: error: %v", err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	opts := hbcht.Options{}
	if inputAsText {
		opts.InputAsText = lo.ToPtr(true)
	} else if notInputAsText {
		opts.InputAsText = lo.ToPtr(false)
	}
	if outputAsText {
		opts.OutputAsText = lo.ToPtr(true)
	} else if notOutputAsText {
		opts.OutputAsText = lo.ToPtr(false)
	}

	if compileMode {
		if len(args) < 2 {
			return fmt.Errorf("compile mode requires INFILE and OUTFILE")
		}
		return runCompile(args[0], args[1], opts)
	}
	return runInterpret(args[0], args[1:], opts)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func runCompile(infile, outfile string, opts hbcht.Options) error {
	data, err := readInput(infile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", infile, err)
	}

	p, err := hbcht.Load(data, opts)
	if err != nil {
		return err
	}

	target, ok := resolveTarget(outfile)
	if !ok {
		return fmt.Errorf("cannot determine target language: pass -l or use a recognized OUTFILE suffix")
	}

	if outfile != "-" && !overwrite {
		if _, err := os.Stat(outfile); err == nil {
			return fmt.Errorf("%s already exists (use -y to overwrite)", outfile)
		}
	}

	out, err := p.Emit(target, functionOnly)
	if err != nil {
		return err
	}

	if outfile == "-" {
		_, err := os.Stdout.Write(out)
		return err
	}
	glog.V(1).Infof("writing %d bytes to %s as %s", len(out), outfile, target)
	return os.WriteFile(outfile, out, 0644)
}

func resolveTarget(outfile string) (hbcht.Target, bool) {
	if language != "" {
		return hbcht.ParseLanguage(language)
	}
	return hbcht.GuessLanguageFromSuffix(outfile)
}

func runInterpret(infile string, rest []string, opts hbcht.Options) error {
	data, err := readInput(infile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", infile, err)
	}

	p, err := hbcht.Load(data, opts)
	if err != nil {
		return err
	}

	dirs, err := resolveDirections()
	if err != nil {
		return err
	}

	inputs, err := convertInputs(rest, p.InputAsText)
	if err != nil {
		return err
	}

	// With no -b/-d given, a single unnamed path is picked at random by
	// Program.Run itself (dir == nil); it is never labeled in the
	// output, matching original_source/hbcht.py's single-path case.
	if dirs == nil {
		cells, err := p.Run(inputs, nil, nil)
		if err != nil {
			return err
		}
		fmt.Print(formatRun(nil, map[hbcht.Direction][]hbcht.Cell{0: cells}, p.OutputAsText))
		return nil
	}

	results := make(map[hbcht.Direction][]hbcht.Cell, len(dirs))
	for _, d := range dirs {
		d := d
		cells, err := p.Run(inputs, &d, nil)
		if err != nil {
			return err
		}
		results[d] = cells
	}

	fmt.Print(formatRun(dirs, results, p.OutputAsText))
	return nil
}

// resolveDirections implements spec.md §6's direction-selection rule:
// -b wins over any -d. With neither given, it returns nil, a sentinel
// meaning "let Program.Run pick a single path at random".
func resolveDirections() ([]hbcht.Direction, error) {
	if bruteRun {
		return []hbcht.Direction{hbcht.DirUp, hbcht.DirRight, hbcht.DirDown, hbcht.DirLeft}, nil
	}
	if len(directionArgs) == 0 {
		return nil, nil
	}
	dirs := make([]hbcht.Direction, 0, len(directionArgs))
	for _, s := range directionArgs {
		d, ok := hbcht.ParseDirection(s)
		if !ok {
			return nil, fmt.Errorf("%q is not a valid direction", s)
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

// convertInputs turns the CLI's trailing positional arguments into the
// tape's initial values. When asText, every argument is joined and
// flattened to code points; otherwise each argument is parsed as an
// integer where possible and flattened to code points where not,
// matching original_source/hbcht.py's run().
func convertInputs(args []string, asText bool) ([]int64, error) {
	if asText {
		joined := strings.Join(args, "")
		out := make([]int64, 0, len(joined))
		for _, r := range joined {
			out = append(out, int64(r))
		}
		return out, nil
	}
	var out []int64
	for _, a := range args {
		if n, err := strconv.ParseInt(a, 10, 64); err == nil {
			out = append(out, n)
			continue
		}
		for _, r := range a {
			out = append(out, int64(r))
		}
	}
	return out, nil
}

// formatRun renders one or more direction runs the way the CLI's
// format_output=True path does: a single direction prints its cells
// (or "(empty)") directly; more than one is prefixed with the
// direction's name per path, per original_source/hbcht.py's run().
func formatRun(dirs []hbcht.Direction, results map[hbcht.Direction][]hbcht.Cell, outputAsText bool) string {
	width := 1
	for _, cells := range results {
		for _, c := range cells {
			if n := len(strconv.FormatInt(int64(c.Index), 10)); n > width {
				width = n
			}
		}
	}

	render := func(cells []hbcht.Cell) string {
		if outputAsText {
			var sb strings.Builder
			for _, c := range cells {
				sb.WriteRune(rune(c.Value))
			}
			return sb.String()
		}
		if len(cells) == 0 {
			return "(empty)"
		}
		lines := make([]string, len(cells))
		for i, c := range cells {
			lines[i] = fmt.Sprintf("%*d: %d", width, c.Index, c.Value)
		}
		return strings.Join(lines, "\n")
	}

	// dirs == nil means a single path was picked at random by
	// Program.Run and is never labeled (spec.md §6's plain single-path
	// output); take the lone map entry regardless of its key.
	if dirs == nil {
		var out string
		for _, cells := range results {
			out = render(cells)
		}
		if outputAsText {
			return out
		}
		return out + "\n"
	}

	if len(dirs) == 1 {
		out := render(results[dirs[0]])
		if outputAsText {
			return out
		}
		return out + "\n"
	}

	parts := make([]string, len(dirs))
	for i, d := range dirs {
		body := render(results[d])
		if !outputAsText {
			body += "\n"
		}
		parts[i] = fmt.Sprintf("%s:\n%s", d, body)
	}
	return strings.Join(parts, "\n")
}
