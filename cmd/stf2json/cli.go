package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/stf2json/internal/config"
	"github.com/hpungsan/stf2json/internal/errors"
	"github.com/hpungsan/stf2json/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "stf2json",
		Usage:   "Lotus Agenda STF to JSON converter",
		Version: Version,
		Commands: []*cli.Command{
			convertCmd(cfg),
			renderCmd(),
			archiveCmd(db),
			retrieveCmd(db, cfg),
			listCmd(db),
			dateCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// convertCmd creates the convert command.
func convertCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert STF input to JSON (reads a file argument or stdin)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "compact", Usage: "Emit compact JSON (no indentation)"},
			&cli.BoolFlag{Name: "counts", Usage: "Include file/category/item counts in output"},
		},
		Action: func(c *cli.Context) error {
			src, cleanup, err := openInput(c)
			if err != nil {
				return outputError(err)
			}
			defer cleanup()

			output, err := ops.Convert(ops.ConvertInput{Source: src, Diag: os.Stderr})
			if err != nil {
				return outputError(err)
			}

			compact := c.Bool("compact") || (cfg != nil && cfg.CompactJSON)
			if c.Bool("counts") {
				return outputJSON(output, compact)
			}
			// The bare files array is the classic converter output.
			return outputJSON(output.Files, compact)
		},
	}
}

// renderCmd creates the render command.
func renderCmd() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render STF input as a markdown or HTML outline",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "Output format: markdown|html"},
		},
		Action: func(c *cli.Context) error {
			src, cleanup, err := openInput(c)
			if err != nil {
				return outputError(err)
			}
			defer cleanup()

			output, err := ops.Render(ops.RenderInput{
				Source: src,
				Diag:   os.Stderr,
				Format: ops.RenderFormat(c.String("format")),
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Println(output.Content)
			return nil
		},
	}
}

// archiveCmd creates the archive command.
func archiveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Convert STF input and store the result as a new import",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "Human-readable label for the import"},
		},
		Action: func(c *cli.Context) error {
			src, cleanup, err := openInput(c)
			if err != nil {
				return outputError(err)
			}
			defer cleanup()

			input := ops.ArchiveInput{Source: src, Diag: os.Stderr}
			if label := c.String("label"); label != "" {
				input.Label = &label
			}

			output, err := ops.Archive(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output, false)
		},
	}
}

// retrieveCmd creates the retrieve command.
func retrieveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "retrieve",
		Usage:     "Print an archived import's converted files",
		ArgsUsage: "<import-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "compact", Usage: "Emit compact JSON (no indentation)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Retrieve(db, ops.RetrieveInput{
				ImportID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			compact := c.Bool("compact") || (cfg != nil && cfg.CompactJSON)
			return outputJSON(output, compact)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List archived imports, most recent first",
		Action: func(c *cli.Context) error {
			output, err := ops.ListArchive(db, ops.ListArchiveInput{})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output, false)
		},
	}
}

// dateCmd creates the date command.
func dateCmd() *cli.Command {
	return &cli.Command{
		Name:      "date",
		Usage:     "Normalize a legacy Agenda date string to ISO-8601",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "format", Aliases: []string{"f"}, Value: 1, Usage: "Legacy format number 1-12"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("a date string argument is required"))
			}

			output, err := ops.NormalizeDate(ops.NormalizeDateInput{
				Format: c.Int("format"),
				Text:   strings.Join(c.Args().Slice(), " "),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output, false)
		},
	}
}

// Helper functions

// openInput opens the positional file argument, or falls back to piped stdin.
// The returned cleanup closes the file when one was opened.
func openInput(c *cli.Context) (io.Reader, func(), error) {
	if c.NArg() > 0 {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("cannot open input file: %v", err))
		}
		return f, func() { f.Close() }, nil
	}
	if !stdinHasData() {
		return nil, nil, errors.NewInvalidRequest("STF input must be a file argument or piped via stdin")
	}
	return os.Stdin, func() {}, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any, compact bool) error {
	enc := json.NewEncoder(os.Stdout)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if stfErr, ok := err.(*errors.STFError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", stfErr.Code, stfErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
