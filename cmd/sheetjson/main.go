// Command sheetjson converts spreadsheets into JSON rows or configuration
// documents, and can serve the same conversions over HTTP.
//
// Usage:
//
//	sheetjson convert [-mode rows|config|config_schema] [-schema file] [-o out] [-flat | -get path] [-strict] [-debug] file
//	sheetjson check-schema file
//	sheetjson serve [-addr :8080] [-stats-dsn file] [-max-upload-mb 10]
//	sheetjson stats -stats-dsn file
//
// Every command also accepts -log-level. Settings can come from a .env file
// and SHEETJSON_* variables; see internal/config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"

	"sheetjson/internal/config"
	"sheetjson/internal/convert"
	"sheetjson/internal/diagnostic"
	"sheetjson/internal/keypath"
	"sheetjson/internal/schema"
	"sheetjson/internal/server"
	"sheetjson/internal/sheet"
	"sheetjson/internal/stats"
)

// errFailed marks a conversion that ran but produced no usable output.
var errFailed = errors.New("conversion failed")

const usage = `usage:
  sheetjson convert [-mode rows|config|config_schema] [-schema file] [-o out] [-flat | -get path] [-strict] [-debug] file
  sheetjson check-schema file
  sheetjson serve [-addr :8080] [-stats-dsn file] [-max-upload-mb 10]
  sheetjson stats -stats-dsn file
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error

	switch args[0] {
	case "convert":
		err = runConvert(args[1:], stdout, stderr)
	case "check-schema":
		err = runCheckSchema(args[1:], stdout, stderr)
	case "serve":
		err = runServe(ctx, args[1:], stderr)
	case "stats":
		err = runStats(ctx, args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(stderr, "sheetjson %s: %v\n", args[0], err)
		}

		return 1
	}

	return 0
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	return fs
}

func runConvert(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("convert", stderr)

	var (
		modeName   = fs.String("mode", string(convert.ModeConfig), "conversion mode: rows, config or config_schema")
		schemaPath = fs.String("schema", "", "schema file (JSON or YAML); implies -mode config_schema when -mode is not given")
		outPath    = fs.String("o", "", "write the JSON document to this file instead of stdout")
		pretty     = fs.Bool("pretty", true, "indent the JSON output")
		flat       = fs.Bool("flat", false, "emit data as a flat object keyed by dot-path")
		getPath    = fs.String("get", "", "print only the value at this dot-path")
		strict     = fs.Bool("strict", false, "fail when any row reported an error, even if output was produced")
		debug      = fs.Bool("debug", false, "dump the full conversion result to stderr")
	)

	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d", fs.NArg())
	}

	log := newLogger(stderr, cfg.LogLevel)
	input := fs.Arg(0)

	modeSet := false
	fs.Visit(func(f *flag.Flag) { modeSet = modeSet || f.Name == "mode" })

	if *schemaPath != "" && !modeSet {
		*modeName = string(convert.ModeConfigSchema)
	}

	var schemaText []byte

	if *schemaPath != "" {
		schemaText, err = os.ReadFile(*schemaPath)
		if err != nil {
			return fmt.Errorf("read schema: %w", err)
		}
	}

	sheets, err := readSheets(input)
	if err != nil {
		return err
	}

	log.Debug("read workbook", "file", input, "sheets", len(sheets))

	res, err := convert.ConvertText(sheets, *modeName, schemaText)
	if err != nil {
		return err
	}

	if *debug {
		spew.Fdump(stderr, res)
	}

	for _, msg := range res.Messages() {
		fmt.Fprintln(stderr, msg)
	}

	if !res.OK {
		return errFailed
	}

	if *strict && res.Diagnostics.HasErrors() {
		return fmt.Errorf("strict: %w", res.Diagnostics.Error())
	}

	doc, err := shape(res, *flat, *getPath)
	if err != nil {
		return err
	}

	out, err := encode(doc, *pretty)
	if err != nil {
		return err
	}

	if *outPath == "" {
		_, err = stdout.Write(out)
		return err
	}

	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	log.Debug("wrote output", "file", *outPath, "bytes", len(out))

	return nil
}

// shape picks what convert prints: the full document, its data flattened to
// dot-paths, or a single value.
func shape(res *convert.Result, flat bool, path string) (any, error) {
	if path != "" {
		v, ok := keypath.Get(res.Data, path)
		if !ok {
			return nil, fmt.Errorf("no value at %q", path)
		}

		return v, nil
	}

	out := res.Output()
	if flat && res.Mode != convert.ModeRows {
		out.Data = keypath.Flatten(res.Data)
	}

	return out, nil
}

func readSheets(path string) ([]sheet.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return sheet.Read(path, f)
}

func encode(v any, pretty bool) ([]byte, error) {
	var (
		b   []byte
		err error
	)

	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}

	if err != nil {
		return nil, err
	}

	return append(b, '\n'), nil
}

func runCheckSchema(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("check-schema", stderr)

	if _, err := config.Load(fs, args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one schema file, got %d", fs.NArg())
	}

	sch, err := schema.LoadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	for _, msg := range sch.Warnings.Messages(false) {
		fmt.Fprintln(stderr, msg)
	}

	fmt.Fprintf(stdout, "%s: %d columns, %d keys (%d required), extra keys %s\n",
		fs.Arg(0), len(sch.Columns), len(sch.Keys), len(sch.RequiredKeys()), allowed(sch.AllowExtraKeys))

	if n := sch.Warnings.Len(); n > 0 {
		fmt.Fprintf(stdout, "%d warnings: %d alias collisions, %d unknown fields, %d invalid defaults\n", n,
			sch.Warnings.Count(diagnostic.CodeAliasCollision),
			sch.Warnings.Count(diagnostic.CodeUnknownSchemaField),
			sch.Warnings.Count(diagnostic.CodeInvalidDefault))
	}

	return nil
}

func allowed(b bool) string {
	if b {
		return "allowed"
	}

	return "rejected"
}

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newFlagSet("serve", stderr)

	cfg, err := config.LoadServe(fs, args)
	if err != nil {
		return err
	}

	log := newLogger(stderr, cfg.LogLevel)

	sink, err := stats.Open(ctx, cfg.StatsDSN)
	if err != nil {
		return err
	}
	defer sink.Close()

	srv := server.New(server.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Stats:          sink,
		Logger:         log,
	})

	return srv.ListenAndServe(ctx, cfg.Addr)
}

// runStats prints the usage counters a server recorded, one category per line.
func runStats(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("stats", stderr)

	cfg, err := config.LoadStats(fs, args)
	if err != nil {
		return err
	}

	if cfg.StatsDSN == "" {
		return errors.New("-stats-dsn (or " + config.EnvStatsDSN + ") is required")
	}

	sink, err := stats.OpenSQLite(ctx, cfg.StatsDSN)
	if err != nil {
		return err
	}
	defer sink.Close()

	counts, err := sink.Counts(ctx)
	if err != nil {
		return err
	}

	for _, c := range stats.Categories(counts) {
		fmt.Fprintf(stdout, "%s\t%d\n", c, counts[c])
	}

	return nil
}
