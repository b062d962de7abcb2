// Package pipeline wires the lineup run together: load all sources,
// pre-filter, merge, emit artifacts, and optionally load the audit
// database. One Pipeline value handles one batch run.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ajpearen/lineup-etl/channel"
	"github.com/ajpearen/lineup-etl/config"
	"github.com/ajpearen/lineup-etl/extract"
	"github.com/ajpearen/lineup-etl/load"
	"github.com/ajpearen/lineup-etl/transform"
	"github.com/ajpearen/lineup-etl/utils"
)

type Pipeline struct {
	Config       *config.Config
	Logger       *slog.Logger
	DuckDB       *load.DuckDB
	timeProvider utils.TimeProvider
}

// NewPipeline opens the audit database when one is configured. An
// empty DuckDB path leaves the sink disabled.
func NewPipeline(cfg *config.Config, logger *slog.Logger, timeProvider utils.TimeProvider) (*Pipeline, error) {
	p := &Pipeline{
		Config:       cfg,
		Logger:       logger,
		timeProvider: timeProvider,
	}
	if cfg.DuckDB.Path != "" {
		db, err := load.NewDuckDB(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating audit database: %w", err)
		}
		p.DuckDB = db
	}
	return p, nil
}

func (p *Pipeline) Close() {
	if p.DuckDB != nil {
		p.DuckDB.Close()
	}
}

// Summary reports what one run did.
type Summary struct {
	Loaded     int
	PreDropped int
	Channels   int
	Decisions  int
	Problems   int
}

// Merge runs the whole pass. With dryRun set everything is computed
// and logged but no artifact or audit table is written. A missing
// required source aborts before any output exists.
func (p *Pipeline) Merge(dryRun bool) (Summary, error) {
	var summary Summary

	loader := extract.NewLoader(p.Logger)
	candidates, err := loader.LoadAll(p.Config.Sources)
	if err != nil {
		return summary, fmt.Errorf("error loading sources: %w", err)
	}
	summary.Loaded = len(candidates)
	p.Logger.Info(fmt.Sprintf("Total candidates before dedupe: %d", len(candidates)))

	norm := transform.NewNormalizer(p.Config.Rules.ProviderTags)

	candidates, preDropped := p.preFilter(candidates, norm)
	summary.PreDropped = len(preDropped)

	rules := transform.NewRegionRules(
		p.Config.Rules.UKTokens,
		p.Config.Rules.AUTokens,
		p.Config.Rules.LocalKeepPatterns,
		p.Logger,
	)
	engine := transform.NewEngine(
		transform.NewKeyBuilder(norm, rules),
		transform.NewResolver(p.Config.Priority.Sites, p.Config.Priority.Default),
		p.Config.Output.PreserveOriginalNaming,
		p.Logger,
	)

	result := engine.Merge(candidates)
	result.Problems = append(preDropped, result.Problems...)

	summary.Channels = len(result.Channels)
	summary.Decisions = len(result.Decisions)
	summary.Problems = len(result.Problems)

	if dryRun {
		p.Logger.Info("Dry run requested; skipping artifact emission")
		return summary, nil
	}

	if err := p.emit(result); err != nil {
		return summary, err
	}

	if err := p.audit(result); err != nil {
		// Artifacts are already on disk at this point; the operator
		// keeps the outputs even when the audit load fails.
		return summary, fmt.Errorf("error loading audit database: %w", err)
	}

	return summary, nil
}

// preFilter applies the preferred-channels enrichment and category
// exclusion when the rule files are configured. Both files are
// optional; an unreadable file is logged and skipped.
func (p *Pipeline) preFilter(candidates []channel.Candidate, norm *transform.Normalizer) ([]channel.Candidate, []channel.Problem) {
	rulesPath := p.Config.Rules.PreferredChannels
	if rulesPath == "" {
		return candidates, nil
	}

	preferred, err := readPreferredRules(rulesPath)
	if err != nil {
		p.Logger.Warn(fmt.Sprintf("Skipping preferred-channels pre-filter: %v", err))
		return candidates, nil
	}

	var exclude []string
	if p.Config.Rules.ExcludeCategories != "" {
		exclude, err = readExcludeCategories(p.Config.Rules.ExcludeCategories)
		if err != nil {
			p.Logger.Warn(fmt.Sprintf("No exclude categories loaded: %v", err))
		}
	}

	filter := transform.NewPreFilter(preferred, exclude, norm, p.Logger)
	return filter.Apply(candidates)
}

func (p *Pipeline) emit(result transform.Result) error {
	if err := ensureDir(p.Config.Output.ChannelList); err != nil {
		return err
	}
	if err := load.WriteChannelsXMLFile(p.Config.Output.ChannelList, result.Channels); err != nil {
		return fmt.Errorf("error writing channel list: %w", err)
	}
	p.Logger.Info(fmt.Sprintf("Wrote channel list: %s", p.Config.Output.ChannelList))

	decisionsCSV, err := load.DecisionsCSV(result.Decisions)
	if err != nil {
		return fmt.Errorf("error encoding merge report: %w", err)
	}
	if err := ensureDir(p.Config.Output.MergeReport); err != nil {
		return err
	}
	if err := load.WriteFileAtomic(p.Config.Output.MergeReport, decisionsCSV); err != nil {
		return fmt.Errorf("error writing merge report: %w", err)
	}
	p.Logger.Info(fmt.Sprintf("Wrote merge report: %s", p.Config.Output.MergeReport))

	// The problem artifact only exists when there is something in it.
	if len(result.Problems) > 0 {
		problemsCSV, err := load.ProblemsCSV(result.Problems)
		if err != nil {
			return fmt.Errorf("error encoding problem list: %w", err)
		}
		if err := ensureDir(p.Config.Output.ProblemList); err != nil {
			return err
		}
		if err := load.WriteFileAtomic(p.Config.Output.ProblemList, problemsCSV); err != nil {
			return fmt.Errorf("error writing problem list: %w", err)
		}
		p.Logger.Info(fmt.Sprintf("Wrote problem list: %s", p.Config.Output.ProblemList))
	}

	if p.Config.Output.VersionedDir != "" {
		if err := p.writeVersionedSnapshot(result.Channels); err != nil {
			return err
		}
	}

	return nil
}

// writeVersionedSnapshot keeps a timestamped CSV copy of the final
// list so older lineups stay diffable after the main artifacts are
// overwritten.
func (p *Pipeline) writeVersionedSnapshot(channels []channel.FinalChannel) error {
	if err := os.MkdirAll(p.Config.Output.VersionedDir, 0o755); err != nil {
		return fmt.Errorf("error creating versioned directory: %w", err)
	}

	csvBytes, err := load.ChannelsCSV(channels)
	if err != nil {
		return fmt.Errorf("error encoding versioned snapshot: %w", err)
	}

	ts := p.timeProvider.Now().Format("20060102_150405")
	path := filepath.Join(p.Config.Output.VersionedDir, fmt.Sprintf("custom_channels_%s.csv", ts))
	if err := load.WriteFileAtomic(path, csvBytes); err != nil {
		return fmt.Errorf("error writing versioned snapshot: %w", err)
	}
	p.Logger.Info(fmt.Sprintf("Wrote versioned snapshot: %s", path))
	return nil
}

// audit replaces the audit tables with this run's channels and
// decisions. No-op when the sink is disabled.
func (p *Pipeline) audit(result transform.Result) error {
	if p.DuckDB == nil {
		return nil
	}

	channelsCSV, err := load.ChannelsCSV(result.Channels)
	if err != nil {
		return fmt.Errorf("error encoding channels for audit: %w", err)
	}
	if err := p.DuckDB.RunQuery("DELETE FROM final_channels;"); err != nil {
		return err
	}
	if err := p.DuckDB.LoadCSV(channelsCSV, "final_channels", false); err != nil {
		return fmt.Errorf("error loading final_channels into DB: %w", err)
	}

	if len(result.Decisions) > 0 {
		decisionsCSV, err := load.DecisionsCSV(result.Decisions)
		if err != nil {
			return fmt.Errorf("error encoding decisions for audit: %w", err)
		}
		if err := p.DuckDB.RunQuery("DELETE FROM merge_decisions;"); err != nil {
			return err
		}
		if err := p.DuckDB.LoadCSV(decisionsCSV, "merge_decisions", false); err != nil {
			return fmt.Errorf("error loading merge_decisions into DB: %w", err)
		}
	}

	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory %s: %w", dir, err)
	}
	return nil
}

func readPreferredRules(path string) ([]transform.PreferredRule, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return extract.ReadPreferredRules(f)
}

func readExcludeCategories(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return extract.ReadExcludeCategories(f)
}
