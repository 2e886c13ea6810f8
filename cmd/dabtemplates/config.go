package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/luatab/internal/updater"
)

type config struct {
	opts        updater.Options
	records     string
	pages       string
	verbose     bool
	silent      bool
	showVersion bool
}

// parseConfig builds the configuration from the built-in defaults, an
// optional YAML file named by --config, and the remaining flags, in that
// order of precedence.
func parseConfig(fs afero.Fs, args []string) (config, error) {
	cfg := config{
		opts:    updater.DefaultOptions(),
		records: "records.yaml",
		pages:   "pages",
	}
	if path := configPath(args); path != "" {
		if err := loadConfigFile(fs, path, &cfg.opts); err != nil {
			return cfg, err
		}
	}

	set := flag.NewFlagSet("dabtemplates", flag.ContinueOnError)
	set.SortFlags = false
	set.String("config", "", "YAML file with option defaults; flags override it")
	set.StringVar(&cfg.opts.Category, "cat", cfg.opts.Category, "Category holding the disambiguation message boxes")
	set.StringVar(&cfg.opts.DataPage, "data-page", cfg.opts.DataPage, "Protected data module to keep in sync")
	set.StringVar(&cfg.opts.DataPageSandbox, "data-page-sandbox", cfg.opts.DataPageSandbox, "Sandbox of the data module, saved by the bot")
	set.StringVar(&cfg.opts.SandboxSummary, "data-page-sandbox-summary", cfg.opts.SandboxSummary, "Edit summary for the sandbox")
	set.StringSliceVar(&cfg.opts.Exclude, "exclude", cfg.opts.Exclude, "Comma-separated templates to leave out")
	set.StringVar(&cfg.opts.TalkPage, "data-talk-page", cfg.opts.TalkPage, "Talk page that receives edit requests")
	set.StringVar(&cfg.opts.EditRequestTemplate, "edit-request-template", cfg.opts.EditRequestTemplate, "File with the edit request text (built-in text when empty)")
	set.StringVar(&cfg.opts.EditRequestSummary, "edit-request-summary", cfg.opts.EditRequestSummary, "Edit summary for the edit request")
	set.BoolVar(&cfg.opts.DryRun, "dry-run", cfg.opts.DryRun, "Log what would be saved without saving")
	set.StringVarP(&cfg.records, "records", "r", cfg.records, "YAML file listing templates and their redirects")
	set.StringVarP(&cfg.pages, "pages", "p", cfg.pages, "Directory holding the wiki pages")
	set.BoolVar(&cfg.verbose, "verbose", false, "Logs additional information; incompatible with \"silent\"")
	set.BoolVar(&cfg.silent, "silent", false, "Produce no output except errors that stop the task; incompatible with \"verbose\"")
	set.BoolVarP(&cfg.showVersion, "version", "v", false, "Print version information and quit")
	set.Usage = func() {
		fmt.Fprintf(os.Stderr, "\nUsage of dabtemplates %s\n", versionString())
		set.PrintDefaults()
	}
	if err := set.Parse(args); err != nil {
		return cfg, err
	}
	if set.NArg() > 0 {
		return cfg, errors.Errorf("unexpected arguments: %s", strings.Join(set.Args(), " "))
	}
	if cfg.verbose && cfg.silent {
		return cfg, errors.New(`"verbose" and "silent" are mutually exclusive`)
	}
	return cfg, nil
}

// configPath finds the --config value before the flag set exists, so the
// file can supply the defaults the flags are declared with.
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			return ""
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func loadConfigFile(fs afero.Fs, path string, opts *updater.Options) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config %q", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "failed to parse config %q", path)
	}
	return nil
}
