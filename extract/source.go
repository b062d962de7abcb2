// Package extract loads channel candidate records from the configured
// source files. Each source is either a channels XML document or a CSV
// list with loosely named columns; both are mapped onto
// channel.Candidate here so the merge core never sees format drift.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ajpearen/lineup-etl/channel"
	"github.com/ajpearen/lineup-etl/config"
	"github.com/sourcegraph/conc/iter"
)

type Loader struct {
	Logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{Logger: logger}
}

// LoadAll reads every configured source and concatenates the results
// in the configured order. Sources are read concurrently for IO
// latency only; the join preserves configuration order so the merge
// engine's first-seen tie-break stays deterministic.
//
// A missing optional source contributes zero candidates and a warning.
// A missing required source fails the whole load before any merge
// work happens.
func (l *Loader) LoadAll(sources []config.SourceConfig) ([]channel.Candidate, error) {
	mapper := iter.Mapper[config.SourceConfig, []channel.Candidate]{
		MaxGoroutines: 8,
	}

	perSource, err := mapper.MapErr(sources, func(src *config.SourceConfig) ([]channel.Candidate, error) {
		return l.loadOne(*src)
	})
	if err != nil {
		return nil, err
	}

	var all []channel.Candidate
	for i, cands := range perSource {
		l.Logger.Info(fmt.Sprintf("Loaded %d candidates from %s", len(cands), sources[i].Name))
		all = append(all, cands...)
	}
	return all, nil
}

func (l *Loader) loadOne(src config.SourceConfig) ([]channel.Candidate, error) {
	f, err := os.Open(filepath.Clean(src.Path))
	if err != nil {
		if src.Required {
			return nil, fmt.Errorf("required source %s: %w", src.Name, err)
		}
		l.Logger.Warn(fmt.Sprintf("Optional source %s unavailable, treating as empty: %v", src.Name, err))
		return nil, nil
	}
	defer f.Close()

	var cands []channel.Candidate
	switch src.Format {
	case config.FormatChannelsXML:
		cands, err = ReadCandidatesXML(f, src)
	case config.FormatCSV:
		cands, err = ReadCandidatesCSV(f, src)
	default:
		return nil, fmt.Errorf("source %s: unknown format %q", src.Name, src.Format)
	}
	if err != nil {
		if src.Required {
			return nil, fmt.Errorf("required source %s: %w", src.Name, err)
		}
		l.Logger.Warn(fmt.Sprintf("Optional source %s unreadable, treating as empty: %v", src.Name, err))
		return nil, nil
	}
	return cands, nil
}
