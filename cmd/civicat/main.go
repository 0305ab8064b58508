// Command civicat is the batch CLI for the catalog: it converts register
// batches into data records, validates the stored documents, regenerates
// schema fragments, migrates legacy source layouts and exports the static
// site.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"civicat/internal/catalog/schema"
	"civicat/internal/catalog/store"
	"civicat/internal/convert"
	"civicat/internal/export"
	"civicat/internal/migrate"
	"civicat/internal/platform/config"
	"civicat/internal/platform/logger"
	"civicat/internal/platform/metrics"
	"civicat/internal/viewer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "civicat:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: civicat <command> [flags]

commands:
  convert          convert register batches into data records
  validate         validate stored registers and data records
  fragment         regenerate schema name fragments
  migrate-sources  rewrite meeting sources into the categorized layout
  export           render the viewer to a static file tree`)
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("command required")
	}

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	switch args[0] {
	case "convert":
		return runConvert(cfg, log, args[1:])
	case "validate":
		return runValidate(cfg, log, args[1:])
	case "fragment":
		return runFragment(cfg, log, args[1:])
	case "migrate-sources":
		return runMigrateSources(cfg, log, args[1:])
	case "export":
		return runExport(cfg, log, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runConvert(cfg config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "report planned changes without writing")
	lenient := fs.Bool("lenient", false, "skip meetings with unresolved names instead of failing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}
	st := store.NewFileStore(cfg.DataDir, cfg.RegisterDir)
	conv, err := convert.New(st, validator,
		convert.WithLogger(log),
		convert.WithRecorder(metrics.New()),
	)
	if err != nil {
		return err
	}

	summary, err := conv.Run(convert.RunOptions{DryRun: *dryRun, Lenient: *lenient})
	if summary != nil {
		printResult("group", summary.Group)
		printResult("person", summary.Person)
		printResult("meeting", summary.Meeting)
	}
	return err
}

func printResult(kind string, r *convert.Result) {
	if r == nil {
		return
	}
	fmt.Printf("%s: created=%d updated=%d skipped=%d planned=%d\n",
		kind, r.Created, r.Updated, r.Skipped, len(r.Planned))
	for _, msg := range r.Errors {
		fmt.Printf("%s: error: %s\n", kind, msg)
	}
}

func runValidate(cfg config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}
	st := store.NewFileStore(cfg.DataDir, cfg.RegisterDir)

	result, err := schema.Sweep(st, validator)
	if err != nil {
		return err
	}
	for _, checked := range result.Checked {
		log.Debug("document checked", "doc", checked)
	}
	for _, failure := range result.Failures {
		fmt.Println(failure)
	}
	if !result.Ok() {
		return fmt.Errorf("%d of %d documents failed validation",
			len(result.Failures), len(result.Checked))
	}
	log.Info("all documents valid", "checked", len(result.Checked))
	return nil
}

func runFragment(cfg config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("fragment", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := store.NewFileStore(cfg.DataDir, cfg.RegisterDir)
	groups, err := st.ListGroups()
	if err != nil {
		return err
	}
	persons, err := st.ListPersons()
	if err != nil {
		return err
	}

	groupNames := make([]string, 0, len(groups))
	for _, g := range groups {
		groupNames = append(groupNames, g.Name)
	}
	personNames := make([]string, 0, len(persons))
	for _, p := range persons {
		personNames = append(personNames, p.Name)
	}

	if err := schema.WriteNameFragments(cfg.FragmentDir, groupNames, personNames); err != nil {
		return err
	}
	log.Info("fragments written", "dir", cfg.FragmentDir,
		"groups", len(groupNames), "persons", len(personNames))
	return nil
}

func runMigrateSources(cfg config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("migrate-sources", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := store.NewFileStore(cfg.DataDir, cfg.RegisterDir)
	changed, err := migrate.Sources(st, log)
	if err != nil {
		return err
	}
	for _, path := range changed {
		fmt.Println(path)
	}
	log.Info("migration finished", "changed", len(changed))
	return nil
}

func runExport(cfg config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "_site", "output directory")
	workers := fs.Int("workers", 8, "pages rendered concurrently")
	level := fs.Int("level", 0, "deepest tree level page to export, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := store.NewFileStore(cfg.DataDir, cfg.RegisterDir)
	handler, err := viewer.New(st, viewer.Config{
		BasePath:   cfg.BasePath,
		SiteTitle:  cfg.SiteTitle,
		Disclaimer: cfg.Disclaimer,
	}, log)
	if err != nil {
		return err
	}
	r := chi.NewRouter()
	handler.Register(r)

	exp := export.New(st, r, export.WithLogger(log), export.WithWorkers(*workers),
		export.WithTreeLevels(*level))
	paths, err := exp.Run(context.Background(), *out)
	if err != nil {
		return err
	}
	log.Info("site exported", "pages", len(paths), "out", *out)
	return nil
}
