/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command writedown manages writing projects using the Writedown markup
// language. It is a thin view over the parsing and reporting engine: every
// subcommand parses the project, runs one query, and formats the rows.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"writedown/internal/ast"
	"writedown/internal/config"
	"writedown/internal/crash"
	"writedown/internal/export"
	applog "writedown/internal/log"
	"writedown/internal/project"
	"writedown/internal/report"
	"writedown/internal/search"
	"writedown/internal/version"
)

var (
	flagPath  string
	flagDiags bool
	cfg       config.AppConfig
)

func main() {
	defer crash.Recover()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cfg = config.Defaults()
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		File:      cfg.Logging.File,
		AddSource: applog.FromEnv().AddSource,
	})

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "writedown",
		Short:         "Manage writing projects using Writedown",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
	}
	root.PersistentFlags().StringVarP(&flagPath, "path", "C", ".", "project path")
	root.PersistentFlags().BoolVar(&flagDiags, "diagnostics", false, "print parser diagnostics to stderr")

	root.AddCommand(
		infoCmd(), wordcountCmd(), charactersCmd(), locationsCmd(),
		statusCmd(), tagsCmd(), targetsCmd(), todoCmd(), sessionsCmd(),
		searchCmd(), exportCmd(), initCmd(), versionCmd(),
	)
	return root
}

// metrics resolves the metric constants: manifest-pinned values win over the
// user config.
func metrics() report.Metrics {
	def := report.Metrics{
		WordsPerPage:   cfg.Metrics.WordsPerPage,
		WordsPerMinute: cfg.Metrics.WordsPerMinute,
	}
	m, err := project.Metrics(flagPath, def)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return def
	}
	return m
}

// load parses the project, reporting per-file input errors without aborting
// unless nothing could be parsed at all.
func load() (*ast.Document, error) {
	doc, diags, errs := project.Load(flagPath)
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err)
	}
	if len(errs) > 0 && len(doc.Root.Children) == 0 && len(doc.Root.Prose) == 0 {
		return nil, fmt.Errorf("nothing parseable under %s", flagPath)
	}
	if flagDiags {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d)
		}
	}
	return doc, nil
}

func indent(level int) string {
	if level == 0 {
		return ""
	}
	return strings.Repeat("--", level) + " "
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
}

func orNone(has bool, v int) string {
	if !has {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show top-level information about the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			info := report.Summarize(doc)
			if info.Title != "" {
				fmt.Println(info.Title)
			}
			if info.Author != "" {
				fmt.Printf("by %s\n", info.Author)
			}
			for _, k := range []ast.Kind{ast.Act, ast.Part, ast.Chapter, ast.Scene, ast.Section, ast.Unlabeled} {
				if c := info.Structure[k]; c > 0 {
					fmt.Printf("%d %s%s\n", c, k, plural(c))
				}
			}
			if info.Characters > 0 {
				fmt.Printf("%d character%s\n", info.Characters, plural(info.Characters))
			}
			if info.Places > 0 {
				fmt.Printf("%d place%s\n", info.Places, plural(info.Places))
			}
			for _, k := range []ast.InfoKind{ast.InfoLocation, ast.InfoTag, ast.InfoTodo, ast.InfoComment, ast.InfoNote} {
				if c := info.Notes[k]; c > 0 {
					fmt.Printf("%d %s%s\n", c, k, plural(c))
				}
			}
			if info.Sessions > 0 {
				fmt.Printf("%d session%s\n", info.Sessions, plural(info.Sessions))
			}
			return nil
		},
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func wordcountCmd() *cobra.Command {
	var nodePath string
	cmd := &cobra.Command{
		Use:     "wordcount",
		Aliases: []string{"wc"},
		Short:   "Show word, page and reading-time counts per node",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			w := newTable()
			fmt.Fprintln(w, "NODE\tREADING\tPAGES\tWORDS\tCHARS")
			if nodePath != "" {
				row, err := report.WordcountAt(doc, nodePath, metrics())
				if err != nil {
					return err
				}
				printWordcount(w, row, 0)
				return w.Flush()
			}
			for _, row := range report.Wordcount(doc, metrics()) {
				printWordcount(w, row, row.Level)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&nodePath, "node", "", "restrict to the node at this path, e.g. 'Part 1/Chapter 2'")
	return cmd
}

func printWordcount(w *tabwriter.Writer, row report.WordcountRow, level int) {
	fmt.Fprintf(w, "%s%s\t%s\t%d\t%d\t%d\n",
		indent(level), row.Node.Heading(), report.FormatReading(row.Reading), row.Pages, row.Words, row.Chars)
}

func charactersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "characters",
		Short: "Show character usage in the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			return printMentions(report.Characters(doc))
		},
	}
}

func locationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "Show place usage in the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			return printMentions(report.Locations(doc))
		},
	}
}

func printMentions(rows []report.MentionRow) error {
	w := newTable()
	fmt.Fprintln(w, "NODE\tMENTIONS")
	for _, row := range rows {
		var parts []string
		for _, m := range row.Mentions {
			parts = append(parts, fmt.Sprintf("%s (%d)", m.Def.Name, m.Count))
		}
		fmt.Fprintf(w, "%s%s\t%s\n", indent(row.Level), row.Node.Heading(), strings.Join(parts, ", "))
	}
	return w.Flush()
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of each node",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			w := newTable()
			fmt.Fprintln(w, "NODE\tSTATUS")
			for _, row := range report.Status(doc) {
				fmt.Fprintf(w, "%s%s\t%s\n", indent(row.Level), row.Node.Heading(), row.Status)
			}
			return w.Flush()
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Show the tags of each node",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			w := newTable()
			fmt.Fprintln(w, "NODE\tTAGS")
			for _, row := range report.Tags(doc) {
				fmt.Fprintf(w, "%s%s\t%s\n", indent(row.Level), row.Node.Heading(), strings.Join(row.Tags, ", "))
			}
			return w.Flush()
		},
	}
}

func targetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "Show target, actual and delta wordcounts per node",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			w := newTable()
			fmt.Fprintln(w, "NODE\tTARGET\tACTUAL\tDELTA")
			for _, row := range report.Targets(doc) {
				fmt.Fprintf(w, "%s%s\t%s\t%d\t%s\n",
					indent(row.Level), row.Node.Heading(),
					orNone(row.HasTarget, row.Target), row.Actual, deltaString(row.HasTarget, row.Delta))
			}
			return w.Flush()
		},
	}
}

func deltaString(has bool, delta int) string {
	if !has {
		return "-"
	}
	return fmt.Sprintf("%+d", delta)
}

func todoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "todo",
		Short: "Show open todos, pruned to nodes that have them",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			for _, row := range report.Todos(doc) {
				if row.Node.Kind != ast.DocumentKind {
					fmt.Printf("%s%s\n", indent(row.Level), row.Node.Heading())
				}
				for _, todo := range row.Todos {
					fmt.Printf("%sTODO: %s (%s)\n", indent(row.Level+1), todo.Text, todo.Pos)
				}
			}
			return nil
		},
	}
}

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "Show writing sessions with target and actual wordcounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			w := newTable()
			fmt.Fprintln(w, "SESSION\tNODE\tTARGET\tACTUAL\tDELTA")
			for _, row := range report.Sessions(doc) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					row.Session, row.Session.Node.Heading(),
					orNone(row.HasTarget, row.Target), row.Actual, deltaString(row.HasTarget, row.Delta))
			}
			return w.Flush()
		},
	}
}

func searchCmd() *cobra.Command {
	var nodePath string
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the manuscript prose",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			ix, err := search.Build(context.Background(), doc)
			if err != nil {
				return err
			}
			defer ix.Close()
			results, err := ix.Search(context.Background(), search.Query{
				Text: args[0], Path: nodePath, Limit: limit,
			})
			if err != nil {
				return err
			}
			w := newTable()
			fmt.Fprintln(w, "LOCATION\tNODE\tMATCH")
			for _, r := range results {
				fmt.Fprintf(w, "%s:%d\t%s\t%s\n", r.Source, r.Line, r.Path, r.Snippet)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&nodePath, "node", "", "restrict to nodes under this structural path")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of results")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current project",
	}
	stream := func(name string, fn func(doc *ast.Document) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: "Export " + name + " to stdout",
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := load()
				if err != nil {
					return err
				}
				return fn(doc)
			},
		}
	}
	cmd.AddCommand(
		stream("markup", func(doc *ast.Document) error { return export.Markup(os.Stdout, doc) }),
		stream("text", func(doc *ast.Document) error { return export.Text(os.Stdout, doc) }),
		stream("strip", func(doc *ast.Document) error { return export.Strip(os.Stdout, doc) }),
		stream("dump", func(doc *ast.Document) error { return export.Dump(os.Stdout, doc) }),
		pdfCmd("pdf", export.PDF),
		pdfCmd("draft", func(doc *ast.Document, out string, opt export.PDFOptions) error {
			return export.Draft(doc, out, opt)
		}),
	)
	return cmd
}

func pdfCmd(name string, fn func(*ast.Document, string, export.PDFOptions) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [file]",
		Short: "Export a " + name + " PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load()
			if err != nil {
				return err
			}
			out := ""
			if len(args) > 0 {
				out = args[0]
			}
			if out == "" {
				title := doc.Title
				if title == "" {
					title = "document"
				}
				out = strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".pdf"
			}
			return fn(doc, out, export.PDFOptions{})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the writedown version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("writedown %s\n", version.String())
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize a new novel project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagPath
			if len(args) > 0 {
				path = args[0]
			}
			return project.Init(path)
		},
	}
}
