// Package updater rebuilds the disambiguation template data module and, when
// the result differs from the live module, files an edit request for it.
package updater

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bjaus/luatab"
	"github.com/bjaus/luatab/internal/catalog"
	"github.com/bjaus/luatab/internal/editrequest"
	"github.com/bjaus/luatab/internal/page"
)

// Options name the pages involved and the edit summaries to use.
type Options struct {
	Category            string   `yaml:"cat"`
	DataPage            string   `yaml:"data-page"`
	DataPageSandbox     string   `yaml:"data-page-sandbox"`
	SandboxSummary      string   `yaml:"data-page-sandbox-summary"`
	Exclude             []string `yaml:"exclude"`
	TalkPage            string   `yaml:"data-talk-page"`
	EditRequestTemplate string   `yaml:"edit-request-template"` // file path; see Deps.Template
	EditRequestSummary  string   `yaml:"edit-request-summary"`
	DryRun              bool     `yaml:"dry-run"`
}

// DefaultOptions returns the settings used on English Wikipedia.
// EditRequestTemplate is empty, meaning [editrequest.Default].
func DefaultOptions() Options {
	return Options{
		Category:           "Category:Disambiguation message boxes",
		DataPage:           "Module:Disambiguation/templates",
		DataPageSandbox:    "Module:Disambiguation/templates/sandbox",
		SandboxSummary:     "Bot: update disambiguation template list",
		Exclude:            []string{"Dmbox"},
		TalkPage:           "Module talk:Disambiguation",
		EditRequestSummary: "Bot: create edit request to update disambiguation template list",
	}
}

// Deps are the collaborators Run works with.
type Deps struct {
	Records catalog.Source
	Pages   page.Store
	// Template is the edit request text; empty means editrequest.Default.
	Template string
	Logger   *zap.Logger
	Now      func() time.Time
}

// Result reports what Run did.
type Result struct {
	Content       string
	SandboxSaved  bool
	EditRequested bool
}

// FormatDataPage renders records as a Lua module returning a set of titles,
// preceded by topComment when it is not empty.
func FormatDataPage(records []catalog.Record, topComment string) (string, error) {
	table, err := luatab.Marshal(catalog.BuildTable(records),
		luatab.WithKeyFormat(luatab.KeyFull),
		luatab.WithBefore(catalog.SeparateGroups(records)),
	)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if topComment != "" {
		b.WriteString(topComment)
		b.WriteString("\n\n")
	}
	b.WriteString("return ")
	b.WriteString(table)
	b.WriteString("\n")
	return b.String(), nil
}

// Run regenerates the data module. It saves the sandbox only when its
// content would change, and posts an edit request only when the saved
// sandbox differs from the live module.
func Run(ctx context.Context, opts Options, deps Deps) (Result, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	var res Result

	log.Info("Fetching templates and their redirects", zap.String("category", opts.Category))
	records, err := deps.Records.Records(ctx)
	if err != nil {
		return res, errors.Wrap(err, "failed to fetch template records")
	}
	records = catalog.Filter(records, opts.Exclude)
	for _, r := range records {
		log.Debug("Template", zap.String("name", r.Name), zap.Strings("aliases", r.Aliases))
	}

	live, err := deps.Pages.Read(ctx, opts.DataPage)
	if err != nil {
		return res, err
	}
	res.Content, err = FormatDataPage(records, page.TopComment(live))
	if err != nil {
		return res, errors.Wrap(err, "failed to format data page")
	}
	log.Debug("Data page content", zap.String("content", res.Content))

	sandbox, err := deps.Pages.Read(ctx, opts.DataPageSandbox)
	if err != nil {
		return res, err
	}
	if page.Equal(sandbox, res.Content) {
		log.Info("Sandbox content would not change; skip saving page", zap.String("page", opts.DataPageSandbox))
		return res, nil
	}
	if err := save(ctx, log, deps.Pages, opts.DryRun, opts.DataPageSandbox, res.Content, opts.SandboxSummary); err != nil {
		return res, err
	}
	res.SandboxSaved = true

	if page.Equal(live, res.Content) {
		log.Info("Live content is identical to new sandbox content; skip adding edit request",
			zap.String("page", opts.DataPage))
		return res, nil
	}

	tmpl := deps.Template
	if tmpl == "" {
		tmpl = editrequest.Default
	}
	request, err := editrequest.Render(tmpl, editrequest.Fields{
		CurrentDate:      editrequest.FormatDate(now()),
		DataPage:         opts.DataPage,
		DataPageSandbox:  opts.DataPageSandbox,
		TemplateCategory: opts.Category,
	})
	if err != nil {
		return res, errors.Wrap(err, "failed to render edit request")
	}
	log.Debug("Edit request text", zap.String("text", request))

	talk, err := deps.Pages.Read(ctx, opts.TalkPage)
	if err != nil {
		return res, err
	}
	talk = strings.TrimRightFunc(talk, unicode.IsSpace) + "\n\n" + request + "\n"
	if strings.TrimSpace(talk) == request {
		talk = request + "\n"
	}
	log.Info("Posting edit request", zap.String("page", opts.TalkPage))
	if err := save(ctx, log, deps.Pages, opts.DryRun, opts.TalkPage, talk, opts.EditRequestSummary); err != nil {
		return res, err
	}
	res.EditRequested = true
	return res, nil
}

func save(ctx context.Context, log *zap.Logger, pages page.Store, dryRun bool, title, text, summary string) error {
	if dryRun {
		log.Info("Dry run; not saving page", zap.String("page", title), zap.String("summary", summary))
		return nil
	}
	log.Info("Saving page", zap.String("page", title), zap.String("summary", summary))
	if err := pages.Write(ctx, title, text, summary); err != nil {
		return errors.Wrapf(err, "failed to save %q", title)
	}
	return nil
}

