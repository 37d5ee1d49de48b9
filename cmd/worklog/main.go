// Command worklog serves the work-log API and offers offline helpers for
// logging tasks, checking similarity, and exporting data.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"worklog/internal/analytics"
	"worklog/internal/config"
	"worklog/internal/core"
	"worklog/internal/export"
	"worklog/internal/logger"
	"worklog/internal/taxonomy"
	"worklog/pkg/domain"
)

var version = "0.1.0-dev"

// errNoMatch marks a "similar" run that found nothing; it maps to exit code 1
// without printing an error.
var errNoMatch = errors.New("no similar item")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if errors.Is(err, errNoMatch) {
			return 1
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "worklog",
		Short:         "Personal work log with a similarity-aware taxonomy",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().String("config", "", "YAML config file (defaults to $WORKLOG_CONFIG)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
	serveCmd.Flags().String("trace-file", "", "Write service spans as JSON lines to this file")

	similarCmd := &cobra.Command{
		Use:   "similar <candidate> [existing...]",
		Short: "Print the existing item a candidate most likely duplicates",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSimilar,
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the stored taxonomy as JSON",
		Args:  cobra.NoArgs,
		RunE:  runSchema,
	}
	schemaCmd.Flags().Bool("default", false, "Print the built-in default taxonomy instead")

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Log one task against the stored taxonomy",
		Args:  cobra.NoArgs,
		RunE:  runLog,
	}
	logCmd.Flags().String("project", "", "Project name")
	logCmd.Flags().String("title", "", "Task title")
	logCmd.Flags().String("description", "", "Task description")
	logCmd.Flags().StringSlice("category", nil, "Categories (repeatable or comma-separated)")
	logCmd.Flags().StringArray("tech", nil, "Technology with optional sub-techs, e.g. React:Hooks,Redux (repeatable)")
	logCmd.Flags().String("team", string(domain.TeamSolo), "Team type: solo|team")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard statistics as JSON",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	statsCmd.Flags().String("range", string(analytics.RangeAll), "Date range: all|week|month|30days|90days")
	statsCmd.Flags().String("project", "", "Only count this project")
	statsCmd.Flags().String("category", "", "Only count this category")

	exportCmd := &cobra.Command{
		Use:       "export <entries|schema>",
		Short:     "Export entries as CSV or the taxonomy as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.KindEntries), string(export.KindSchema)},
		RunE:      runExport,
	}
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().Bool("upload", false, "Store the artifact in the configured blob store and print its metadata")

	root.AddCommand(serveCmd, similarCmd, schemaCmd, logCmd, statsCmd, exportCmd)
	return root
}

type session struct {
	cfg   config.Config
	log   *logger.Logger
	store core.PersistentStore
	svc   *core.Service
	saves *saveTracker
}

// saveTracker collects failed background writes so a command can exit
// non-zero when its changes did not reach storage.
type saveTracker struct {
	mu       sync.Mutex
	failures []core.SaveResult
}

func (t *saveTracker) observe(res core.SaveResult) {
	if res.Success {
		return
	}
	t.mu.Lock()
	t.failures = append(t.failures, res)
	t.mu.Unlock()
}

func (t *saveTracker) err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.failures) == 0 {
		return nil
	}
	last := t.failures[len(t.failures)-1]
	return fmt.Errorf("%d background write(s) failed, changes may not be saved: %s: %s", len(t.failures), last.Bucket, last.Error)
}

func openSession(cmd *cobra.Command, opts ...core.Option) (*session, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	store, err := core.OpenPersistentStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	saves := &saveTracker{}
	opts = append([]core.Option{
		core.WithLogger(log),
		core.WithSaveListener(saves.observe),
		core.WithQueueSize(cfg.Persist.QueueSize),
		core.WithSaveTimeout(cfg.Persist.Timeout),
	}, opts...)
	svc, err := core.NewService(ctx, store, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &session{cfg: cfg, log: log, store: store, svc: svc, saves: saves}, nil
}

// close drains pending writes, then closes the store. It reports any
// background write that failed during the session.
func (s *session) close(ctx context.Context) error {
	err := errors.Join(s.svc.Close(ctx), s.saves.err(), s.store.Close())
	s.log.Sync()
	return err
}

func runSimilar(cmd *cobra.Command, args []string) error {
	match, ok := taxonomy.FindSimilar(args[0], args[1:])
	if !ok {
		return errNoMatch
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), match)
	return err
}

func runSchema(cmd *cobra.Command, _ []string) error {
	if def, _ := cmd.Flags().GetBool("default"); def {
		return writeJSON(cmd.OutOrStdout(), domain.DefaultSchema())
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	schema := s.svc.Schema()
	return errors.Join(writeJSON(cmd.OutOrStdout(), schema), s.close(cmd.Context()))
}

func runLog(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	project, _ := flags.GetString("project")
	title, _ := flags.GetString("title")
	description, _ := flags.GetString("description")
	categories, _ := flags.GetStringSlice("category")
	techs, _ := flags.GetStringArray("tech")
	team, _ := flags.GetString("team")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	created, logErr := s.svc.LogTasks(cmd.Context(), core.LogInput{
		Project: project,
		Tasks: []core.TaskInput{{
			Title:        title,
			Description:  description,
			Categories:   categories,
			Technologies: parseTechFlags(techs),
			TeamType:     domain.TeamType(team),
		}},
	})
	closeErr := s.close(cmd.Context())
	if logErr != nil {
		return logErr
	}
	if closeErr != nil {
		return closeErr
	}
	return writeJSON(cmd.OutOrStdout(), created)
}

// parseTechFlags turns "React:Hooks,Redux" values into selections.
func parseTechFlags(values []string) []core.TechSelection {
	out := make([]core.TechSelection, 0, len(values))
	for _, v := range values {
		name, subs, _ := strings.Cut(v, ":")
		sel := core.TechSelection{Tech: strings.TrimSpace(name)}
		if subs != "" {
			sel.SubTechs = strings.Split(subs, ",")
		}
		out = append(out, sel)
	}
	return out
}

func runStats(cmd *cobra.Command, _ []string) error {
	rawRange, _ := cmd.Flags().GetString("range")
	project, _ := cmd.Flags().GetString("project")
	category, _ := cmd.Flags().GetString("category")
	r, err := analytics.ParseRange(rawRange)
	if err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	dash := s.svc.Dashboard(analytics.Filter{Range: r, Project: project, Category: category})
	return errors.Join(writeJSON(cmd.OutOrStdout(), dash.Stats), s.close(cmd.Context()))
}

func runExport(cmd *cobra.Command, args []string) error {
	kind := export.Kind(strings.ToLower(args[0]))
	if kind != export.KindEntries && kind != export.KindSchema {
		return fmt.Errorf("unknown export kind %q", args[0])
	}
	upload, _ := cmd.Flags().GetBool("upload")
	output, _ := cmd.Flags().GetString("output")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.close(cmd.Context()) }()

	if upload {
		return uploadExport(cmd, s, kind)
	}
	var data []byte
	if kind == export.KindEntries {
		data, err = export.EntriesCSV(s.svc.Entries())
	} else {
		data, err = export.SchemaJSON(s.svc.Schema())
	}
	if err != nil {
		return err
	}
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
