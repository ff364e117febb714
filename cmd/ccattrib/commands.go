package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/ccattrib/pkg/attribution"
	"github.com/coolbeans/ccattrib/pkg/config"
	"github.com/coolbeans/ccattrib/pkg/fetch"
	"github.com/coolbeans/ccattrib/pkg/license"
	"github.com/coolbeans/ccattrib/pkg/rdf"
	"github.com/coolbeans/ccattrib/pkg/snapshot"
	"github.com/coolbeans/ccattrib/pkg/watch"
)

func analyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze FILE|GLOB...",
		Short: "Analyze the statements of a page",
		Long: `Read N-Triples statement files for one page, apply the configured site
rules, and store the result in the snapshot. Files are only re-parsed when
their modification time or size changed since the last analysis.

Example:
  ccattrib analyze page.nt --url https://example.org/gallery
  ccattrib analyze 'crawl/gallery/**/*.nt' --url https://example.org/gallery`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			documentURL, _ := cmd.Flags().GetString("url")
			if documentURL == "" {
				return fmt.Errorf("--url flag is required")
			}

			files, err := expandInputs(args)
			if err != nil {
				return err
			}

			subjects, err := a.analyzeFiles(cmd.Context(), documentURL, files)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %s from %d file(s)\n", documentURL, len(files))
			fmt.Fprintln(cmd.OutOrStdout(), a.inspector.Localizer().Plural(attribution.MessageLicensedObjects, len(subjects)))
			return nil
		},
	}

	cmd.Flags().String("url", "", "URL of the page the statements were extracted from (required)")
	return cmd
}

// analyzeFiles analyzes files as the document documentURL and persists the
// resulting cache entry.
func (a *app) analyzeFiles(ctx context.Context, documentURL string, files []string) ([]rdf.Resource, error) {
	token, err := freshnessToken(files)
	if err != nil {
		return nil, err
	}

	parsed := false
	subjects, err := a.inspector.Inspect(documentURL, token, func(string) ([]rdf.Statement, error) {
		parsed = true
		return readStatementFiles(ctx, files)
	})
	if err != nil {
		return nil, err
	}

	if parsed {
		if err := a.snapshots.Persist(ctx, a.inspector.Cache(), documentURL); err != nil {
			return nil, err
		}
	} else {
		a.logger.Debug("snapshot is fresh", zap.String("document", documentURL))
	}

	return subjects, nil
}

func subjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects URL",
		Short: "List the licensed works on an analyzed page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			documentURL := args[0]
			if err := a.ensureCached(cmd.Context(), documentURL); err != nil {
				return err
			}

			subjects, err := a.inspector.FindLicensedSubjects(documentURL)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, subject := range subjects {
				title, err := a.inspector.DisplayTitle(documentURL, subject)
				if err != nil {
					return err
				}
				facts, err := a.inspector.Facts(documentURL, subject)
				if err != nil {
					return err
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\n", title, subject.URI, licenseSummary(facts.License))
			}
			if err := writer.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, a.inspector.Localizer().Plural(attribution.MessageLicensedObjects, len(subjects)))
			return nil
		},
	}
}

func licenseSummary(facts *license.Facts) string {
	if facts == nil {
		return "-"
	}
	return fmt.Sprintf("%s [%s]", facts.Label(), facts.Category)
}

func attributionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attribution URL [SUBJECT]",
		Short: "Render attribution for licensed works",
		Long: `Render attribution for one licensed work, or for every licensed work on the
page when SUBJECT is omitted.

Formats: html (RDFa-annotated), text, markdown`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			documentURL := args[0]
			format, _ := cmd.Flags().GetString("format")

			render, err := a.renderer(format)
			if err != nil {
				return err
			}
			if err := a.ensureCached(cmd.Context(), documentURL); err != nil {
				return err
			}

			var subjects []rdf.Resource
			if len(args) == 2 {
				subjects = []rdf.Resource{rdf.NewResource(args[1])}
			} else if subjects, err = a.inspector.FindLicensedSubjects(documentURL); err != nil {
				return err
			}

			for _, subject := range subjects {
				rendered, err := render(documentURL, subject)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "html", "output format: html, text, markdown")
	return cmd
}

func (a *app) renderer(format string) (func(string, rdf.Resource) (string, error), error) {
	switch strings.ToLower(format) {
	case "html":
		return a.inspector.AttributionHTML, nil
	case "text", "txt":
		return a.inspector.AttributionText, nil
	case "markdown", "md":
		return a.inspector.AttributionMarkdown, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use html, text or markdown)", format)
	}
}

func licenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license URI",
		Short: "Describe a license URI",
		Long: `Canonicalize a license URI, classify it and look up its name.

Names come from the built-in catalog of Creative Commons licenses. With
--fetch the license document itself is downloaded from creativecommons.org
and its title used instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetchDocument, _ := cmd.Flags().GetBool("fetch")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			facts, err := license.Resolve(args[0])
			if err != nil {
				a.logger.Warn("license uri is not well formed", zap.Error(err))
			}

			catalog := license.NewCatalog()
			var lookup license.Lookup = catalog
			if fetchDocument {
				fetcher, err := a.newFetcher()
				if err != nil {
					return err
				}
				lookup = a.documentLookup(catalog, license.NewDocumentLookup(fetcher.Fetch))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			type outcome struct {
				facts license.Facts
				err   error
			}
			done := make(chan outcome, 1)
			license.Enrich(ctx, facts, lookup, func(enriched license.Facts, err error) {
				done <- outcome{enriched, err}
			})

			var result outcome
			select {
			case result = <-done:
			case <-ctx.Done():
				return fmt.Errorf("license lookup timed out: %w", ctx.Err())
			}
			if result.err != nil {
				a.logger.Debug("no license details", zap.String("license", facts.URI), zap.Error(result.err))
			}

			printLicense(cmd.OutOrStdout(), result.facts)
			return nil
		},
	}

	cmd.Flags().Bool("fetch", false, "download the license document to read its title")
	cmd.Flags().Duration("timeout", 30*time.Second, "overall lookup timeout")
	return cmd
}

// documentLookup prefers the title of the license document and falls back to
// the catalog when the document cannot be fetched. Catalog identifiers are
// kept either way.
func (a *app) documentLookup(catalog, document license.Lookup) license.Lookup {
	return license.LookupFunc(func(ctx context.Context, uri string) (license.Details, error) {
		known, catalogErr := catalog.Lookup(ctx, uri)

		fetched, err := document.Lookup(ctx, uri)
		if err != nil {
			if catalogErr != nil {
				return license.Details{}, err
			}
			a.logger.Warn("failed to read license document", zap.String("license", uri), zap.Error(err))
			return known, nil
		}

		if fetched.Identifier == "" {
			fetched.Identifier = known.Identifier
		}
		return fetched, nil
	})
}

// newFetcher caches license documents next to the snapshot database.
func (a *app) newFetcher() (*fetch.Fetcher, error) {
	fetchConfig := fetch.DefaultFetchConfig()
	dbPath := a.dbPath
	if dbPath == "" {
		dbPath, _ = a.config.SnapshotPath()
	}
	if dbPath != "" {
		fetchConfig.CacheDir = filepath.Join(filepath.Dir(dbPath), "licenses")
	}
	return fetch.NewFetcher(fetchConfig, nil, a.logger.Named("fetch"))
}

func printLicense(w io.Writer, facts license.Facts) {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "URI:\t%s\n", facts.URI)
	fmt.Fprintf(writer, "Name:\t%s\n", facts.Name)
	if facts.Identifier != "" {
		fmt.Fprintf(writer, "Identifier:\t%s\n", facts.Identifier)
	}
	if facts.Code != "" {
		fmt.Fprintf(writer, "Code:\t%s\n", facts.Code)
	}
	if facts.Version != "" {
		fmt.Fprintf(writer, "Version:\t%s\n", facts.Version)
	}
	if facts.Jurisdiction != "" {
		fmt.Fprintf(writer, "Jurisdiction:\t%s\n", facts.Jurisdiction)
	}
	category := facts.Category.String()
	if color := facts.Category.Color(); color != "" {
		category += " (" + color + ")"
	}
	fmt.Fprintf(writer, "Category:\t%s\n", category)
	writer.Flush()
}

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export URL",
		Short: "Export the analyzed statements of a page",
		Long: `Export the statements stored for a page after site rules were applied.

Formats: turtle, ntriples`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if err := a.ensureCached(cmd.Context(), args[0]); err != nil {
				return err
			}

			statements, err := a.inspector.Querier().Statements(args[0])
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "turtle", "ttl":
				_, err = io.WriteString(cmd.OutOrStdout(), rdf.NewTurtleSerializer().Serialize(statements))
				return err
			case "ntriples", "nt":
				return rdf.WriteNTriples(cmd.OutOrStdout(), statements)
			default:
				return fmt.Errorf("unsupported format: %s (use turtle or ntriples)", format)
			}
		},
	}

	cmd.Flags().StringP("format", "f", "turtle", "output format: turtle, ntriples")
	return cmd
}

func forgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget URL...",
		Short: "Remove analyzed pages from the snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, documentURL := range args {
				a.inspector.Cache().Invalidate(documentURL)
				if err := a.snapshots.Delete(cmd.Context(), documentURL); err != nil {
					if errors.Is(err, snapshot.ErrNotFound) {
						fmt.Fprintf(cmd.OutOrStdout(), "Not analyzed: %s\n", documentURL)
						continue
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", documentURL)
			}
			return nil
		},
	}
}

func watchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE...",
		Short: "Re-analyze statement files whenever they change",
		Long: `Watch statement files for one page. Each time they change the page is
re-analyzed and its attributions printed as text. Stop with Ctrl-C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			documentURL, _ := cmd.Flags().GetString("url")
			debounce, _ := cmd.Flags().GetDuration("debounce")
			if documentURL == "" {
				return fmt.Errorf("--url flag is required")
			}

			files, err := expandInputs(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := func(ctx context.Context) error {
				subjects, err := a.analyzeFiles(ctx, documentURL, files)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "== %s (%s)\n", documentURL, a.inspector.Localizer().Plural(attribution.MessageLicensedObjects, len(subjects)))
				for _, subject := range subjects {
					text, err := a.inspector.AttributionText(documentURL, subject)
					if err != nil {
						fmt.Fprintf(out, "   %s: %v\n", subject.URI, err)
						continue
					}
					fmt.Fprintf(out, "   %s\n", text)
				}
				return nil
			}

			if err := report(cmd.Context()); err != nil {
				return err
			}

			watcher, err := watch.New(func(ctx context.Context, _ string) error {
				return report(ctx)
			}, watch.WithDebounce(debounce), watch.WithLogger(a.logger.Named("watch")))
			if err != nil {
				return err
			}
			for _, file := range files {
				if err := watcher.Add(file); err != nil {
					_ = watcher.Stop()
					return err
				}
			}

			if err := watcher.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			return watcher.Stop()
		},
	}

	cmd.Flags().String("url", "", "URL of the page the statements were extracted from (required)")
	cmd.Flags().Duration("debounce", 200*time.Millisecond, "quiet period before re-analyzing")
	return cmd
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(a.config); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return encoder.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(a.logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", path)
			return nil
		},
	})

	return cmd
}
