package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tierlink/internal/config"
	"tierlink/internal/csvio"
	"tierlink/internal/fileutil"
	"tierlink/internal/fuzzy"
	"tierlink/internal/linkage"
	"tierlink/internal/logging"
	"tierlink/internal/plan"
	"tierlink/internal/recordset"
	"tierlink/internal/store"
	"tierlink/internal/textutil"
)

type linkFlags struct {
	aPath, bPath   string
	aQuery, bQuery string
	aIndex, bIndex string
	nullValues     []string
	inferTypes     bool

	planPath  string
	outPath   string
	saveTable string
	json      bool

	scorer           string
	confidenceColumn string
	unique           bool
	allowSharedB     bool
	keepLeftoverA    bool
	keepLeftoverB    bool
	emptyOnNoMatch   bool
	progress         bool
}

type tierSummary struct {
	Tier       int `json:"tier"`
	Confidence int `json:"confidence"`
	Matched    int `json:"matched"`
	RemainingA int `json:"remaining_a"`
	RemainingB int `json:"remaining_b"`
}

type linkSummary struct {
	RunID     string `json:"run_id"`
	Plan      string `json:"plan"`
	SourceA   string `json:"source_a"`
	SourceB   string `json:"source_b"`
	RowsA     int    `json:"rows_a"`
	RowsB     int    `json:"rows_b"`
	Matched   int    `json:"matched"`
	LeftoverA int    `json:"leftover_a"`
	LeftoverB int    `json:"leftover_b"`
	Output    string `json:"output,omitempty"`
	// OutputSHA256 is the digest of the written CSV file.
	OutputSHA256 string        `json:"output_sha256,omitempty"`
	Table        string        `json:"table,omitempty"`
	Recorded     bool          `json:"recorded"`
	Elapsed      string        `json:"elapsed"`
	Tiers        []tierSummary `json:"tiers"`
}

func newLinkCommand(ctx *commandContext) *cobra.Command {
	f := &linkFlags{}

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Match record set A against record set B with a tiered plan",
		Long: "Loads A and B from CSV files or SQL queries, runs the plan tier by tier and\n" +
			"writes the combined result. Without --out, --save-table or --json the result\n" +
			"is written to stdout as CSV and the summary goes to stderr.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, ctx, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.aPath, "a", "", "CSV file for record set A")
	flags.StringVar(&f.bPath, "b", "", "CSV file for record set B")
	flags.StringVar(&f.aQuery, "a-query", "", "SQL query against the database for record set A")
	flags.StringVar(&f.bQuery, "b-query", "", "SQL query against the database for record set B")
	flags.StringVar(&f.aIndex, "a-index", "", "Column of A holding origin indices")
	flags.StringVar(&f.bIndex, "b-index", "", "Column of B holding origin indices")
	flags.StringSliceVar(&f.nullValues, "null", nil, "CSV cell values read as null, in addition to empty cells")
	flags.BoolVar(&f.inferTypes, "infer-types", false, "Read numeric CSV cells as numbers")
	flags.StringVarP(&f.planPath, "plan", "p", "", "Match plan file (TOML)")
	flags.StringVarP(&f.outPath, "out", "o", "", "Write the result as CSV to this path")
	flags.StringVar(&f.saveTable, "save-table", "", "Write the result to this database table")
	flags.BoolVar(&f.json, "json", false, "Print the run summary as JSON")
	flags.StringVar(&f.scorer, "scorer", "", "Similarity scorer (ratio, jaro_winkler, levenshtein, token_cosine, token_sort)")
	flags.StringVar(&f.confidenceColumn, "confidence-column", "", "Name of the confidence column")
	flags.BoolVar(&f.unique, "unique", true, "Keep one match per A row within a tier")
	flags.BoolVar(&f.allowSharedB, "allow-shared-b", false, "Let several A rows match the same B row")
	flags.BoolVar(&f.keepLeftoverA, "keep-leftover-a", true, "Append unmatched A rows")
	flags.BoolVar(&f.keepLeftoverB, "keep-leftover-b", true, "Append unmatched B rows")
	flags.BoolVar(&f.emptyOnNoMatch, "empty-on-no-match", false, "Return no rows when nothing matched")
	flags.BoolVar(&f.progress, "progress", false, "Print timestamped progress lines to stderr")
	_ = cmd.MarkFlagRequired("plan")
	cmd.MarkFlagsMutuallyExclusive("a", "a-query")
	cmd.MarkFlagsMutuallyExclusive("b", "b-query")

	return cmd
}

func runLink(cmd *cobra.Command, ctx *commandContext, f *linkFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}

	runID := store.NewRunID()
	runCtx := logging.WithRunID(cmd.Context(), runID)
	logger = logging.WithContext(runCtx, logger)

	p, err := plan.Load(f.planPath)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	st, err := ctx.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	if st == nil && (f.aQuery != "" || f.bQuery != "" || f.saveTable != "") {
		return errors.New("--a-query, --b-query and --save-table need a database; set storage.database_path or pass --db")
	}

	a, sourceA, err := loadSource(runCtx, st, "a", f.aPath, f.aQuery, f.aIndex, f)
	if err != nil {
		return err
	}
	b, sourceB, err := loadSource(runCtx, st, "b", f.bPath, f.bQuery, f.bIndex, f)
	if err != nil {
		return err
	}

	opts, scorerName, err := linkOptions(cmd, cfg, f)
	if err != nil {
		return err
	}
	opts.Logger = logger
	opts.Reporter = logging.NewReporter(cmd.ErrOrStderr(), logger)

	run := store.Run{
		ID:           runID,
		StartedAt:    time.Now(),
		PlanPath:     f.planPath,
		SourceA:      sourceA,
		SourceB:      sourceB,
		RowsA:        a.Len(),
		RowsB:        b.Len(),
		Scorer:       scorerName,
		AllowSharedB: opts.AllowSharedBMatches,
	}
	logger.Info("link started",
		logging.String("plan", f.planPath),
		logging.String("source_a", sourceA),
		logging.String("source_b", sourceB),
		logging.String("scorer", scorerName),
	)

	result, linkErr := linkage.New(opts).Link(runCtx, a, b, p)
	summary := linkSummary{
		RunID:   runID,
		Plan:    f.planPath,
		SourceA: sourceA,
		SourceB: sourceB,
		RowsA:   a.Len(),
		RowsB:   b.Len(),
	}
	toStdout := false
	if linkErr == nil {
		summary.fill(result)
		run.Matched = result.Stats.Matched
		run.LeftoverA = result.Stats.LeftoverA
		run.LeftoverB = result.Stats.LeftoverB
		for _, t := range result.Stats.Tiers {
			run.Tiers = append(run.Tiers, store.TierRecord(t))
		}
		toStdout, linkErr = emitResult(runCtx, cmd, cfg, st, f, result, &summary)
		run.Output = textutil.FirstNonEmpty(summary.Output, summary.Table)
	}
	run.FinishedAt = time.Now()
	summary.Elapsed = run.Duration().Round(time.Millisecond).String()
	if linkErr != nil {
		run.ErrorMessage = linkErr.Error()
	}

	if st != nil {
		if _, err := st.RecordRun(context.WithoutCancel(runCtx), run); err != nil {
			logging.WarnWithContext(logger, "run history not recorded", "run_history_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check storage.database_path"),
				logging.String(logging.FieldImpact, "the run is missing from `tierlink runs`"),
			)
		} else {
			summary.Recorded = true
		}
	}

	if linkErr != nil {
		logger.Error("link failed", logging.Error(linkErr), logging.String("kind", linkage.Kind(linkErr)))
		return fmt.Errorf("link: %w", linkErr)
	}
	logger.Info("link finished",
		logging.Int("matched", summary.Matched),
		logging.Int("leftover_a", summary.LeftoverA),
		logging.Int("leftover_b", summary.LeftoverB),
	)

	if f.json {
		return writeJSON(cmd, summary)
	}
	out := cmd.OutOrStdout()
	if toStdout {
		out = cmd.ErrOrStderr()
	}
	renderLinkSummary(out, summary)
	return nil
}

func (s *linkSummary) fill(result *linkage.Result) {
	s.Matched = result.Stats.Matched
	s.LeftoverA = result.Stats.LeftoverA
	s.LeftoverB = result.Stats.LeftoverB
	s.Tiers = make([]tierSummary, len(result.Stats.Tiers))
	for i, t := range result.Stats.Tiers {
		s.Tiers[i] = tierSummary{
			Tier:       i,
			Confidence: t.Confidence,
			Matched:    t.Matched,
			RemainingA: t.RemainingA,
			RemainingB: t.RemainingB,
		}
	}
}

func loadSource(ctx context.Context, st *store.Store, side, path, query, index string, f *linkFlags) (*recordset.Set, string, error) {
	path = strings.TrimSpace(path)
	query = strings.TrimSpace(query)
	switch {
	case query != "":
		set, err := st.LoadQuery(ctx, query, index)
		if err != nil {
			return nil, "", fmt.Errorf("load %s: %w", side, err)
		}
		return set, "query: " + query, nil
	case path != "":
		set, err := csvio.ReadFile(path, csvio.Options{
			IndexColumn: index,
			NullValues:  f.nullValues,
			InferTypes:  f.inferTypes,
		})
		if err != nil {
			return nil, "", fmt.Errorf("load %s: %w", side, err)
		}
		return set, path, nil
	default:
		return nil, "", fmt.Errorf("record set %s is required: pass --%s or --%s-query", strings.ToUpper(side), side, side)
	}
}

// linkOptions starts from the [matching] section and applies the flags the
// user actually set.
func linkOptions(cmd *cobra.Command, cfg *config.Config, f *linkFlags) (linkage.Options, string, error) {
	m := cfg.Matching
	opts := linkage.Options{
		ConfidenceColumn:    m.ConfidenceColumn,
		EnforceUniqueMatch:  m.EnforceUniqueMatch,
		AllowSharedBMatches: m.AllowSharedBMatches,
		KeepLeftoverA:       m.KeepLeftoverA,
		KeepLeftoverB:       m.KeepLeftoverB,
		EmptyOnNoMatch:      m.EmptyOnNoMatch,
		SuffixA:             m.SuffixA,
		SuffixB:             m.SuffixB,
		Progress:            m.Progress,
	}
	flags := cmd.Flags()
	if flags.Changed("confidence-column") {
		opts.ConfidenceColumn = strings.TrimSpace(f.confidenceColumn)
	}
	if flags.Changed("unique") {
		opts.EnforceUniqueMatch = f.unique
	}
	if flags.Changed("allow-shared-b") {
		opts.AllowSharedBMatches = f.allowSharedB
	}
	if flags.Changed("keep-leftover-a") {
		opts.KeepLeftoverA = f.keepLeftoverA
	}
	if flags.Changed("keep-leftover-b") {
		opts.KeepLeftoverB = f.keepLeftoverB
	}
	if flags.Changed("empty-on-no-match") {
		opts.EmptyOnNoMatch = f.emptyOnNoMatch
	}
	if flags.Changed("progress") {
		opts.Progress = f.progress
	}

	name := strings.ToLower(textutil.FirstNonEmpty(f.scorer, m.Scorer))
	scorer, err := fuzzy.ScorerByName(name)
	if err != nil {
		return linkage.Options{}, "", err
	}
	opts.Scorer = scorer
	return opts, name, nil
}

// emitResult writes the result to the requested destinations. It reports
// whether the CSV went to stdout.
func emitResult(ctx context.Context, cmd *cobra.Command, cfg *config.Config, st *store.Store, f *linkFlags, result *linkage.Result, summary *linkSummary) (bool, error) {
	wrote := false
	if out := strings.TrimSpace(f.outPath); out != "" {
		path := cfg.OutputPath(out)
		written, err := writeResultFile(cfg, path, result.Set)
		if err != nil {
			return false, err
		}
		summary.Output = written.Path
		summary.OutputSHA256 = written.SHA256
		wrote = true
	}
	if table := strings.TrimSpace(f.saveTable); table != "" {
		name, err := st.SaveResult(ctx, table, result.Set)
		if err != nil {
			return false, err
		}
		summary.Table = name
		wrote = true
	}
	if wrote || f.json {
		return false, nil
	}
	return true, csvio.Write(cmd.OutOrStdout(), result.Set, csvio.WriteOptions{})
}

// writeResultFile replaces path with the rendered set. A lock under the
// data directory keeps concurrent runs from interleaving on the same file.
func writeResultFile(cfg *config.Config, path string, set *recordset.Set) (fileutil.Written, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileutil.Written{}, fmt.Errorf("resolve output path: %w", err)
	}
	lockPath := filepath.Join(textutil.FirstNonEmpty(cfg.Paths.DataDir, os.TempDir()), "locks", textutil.SanitizeFileName(abs)+".lock")

	var written fileutil.Written
	err = fileutil.WithLock(lockPath, func() error {
		var werr error
		written, werr = fileutil.WriteAtomic(abs, 0o644, func(w io.Writer) error {
			return csvio.Write(w, set, csvio.WriteOptions{})
		})
		return werr
	})
	if errors.Is(err, fileutil.ErrLocked) {
		return fileutil.Written{}, fmt.Errorf("output %s is being written by another tierlink process", abs)
	}
	if err != nil {
		return fileutil.Written{}, fmt.Errorf("write output %s: %w", abs, err)
	}
	return written, nil
}

func renderLinkSummary(w io.Writer, s linkSummary) {
	r := newReport(w)
	r.section("Tiers")
	rows := make([][]string, 0, len(s.Tiers))
	for _, t := range s.Tiers {
		rows = append(rows, []string{
			strconv.Itoa(t.Tier),
			strconv.Itoa(t.Confidence),
			strconv.Itoa(t.Matched),
			strconv.Itoa(t.RemainingA),
			strconv.Itoa(t.RemainingB),
		})
	}
	r.table([]string{"Tier", "Confidence", "Matched", "Remaining A", "Remaining B"}, rows, 0, 1, 2, 3, 4)

	r.section("Run")
	fields := []field{
		plain("Run ID", s.RunID),
		toned("Matched", fmt.Sprintf("%d of %d A rows", s.Matched, s.RowsA), textutil.Ternary(s.Matched == 0, toneWarn, toneGood)),
		plain("Leftover A", strconv.Itoa(s.LeftoverA)),
		plain("Leftover B", strconv.Itoa(s.LeftoverB)),
		plain("Recorded", yesNo(s.Recorded)),
		plain("Elapsed", s.Elapsed),
	}
	if s.Output != "" {
		fields = append(fields, toned("Output", s.Output, toneGood), plain("SHA-256", s.OutputSHA256))
	}
	if s.Table != "" {
		fields = append(fields, toned("Table", s.Table, toneGood))
	}
	r.fields(fields...)
}
