package load

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/ajpearen/lineup-etl/channel"
	"github.com/google/renameio/v2"
)

// ChannelsCSV renders the final channel list as CSV bytes. Shared by
// the versioned snapshot writer and the DuckDB audit sink, so the two
// always agree column for column.
func ChannelsCSV(channels []channel.FinalChannel) ([]byte, error) {
	rows := make([][]string, 0, len(channels))
	for _, ch := range channels {
		rows = append(rows, []string{ch.Site, ch.ExternalID, ch.SiteLocalID, ch.Lang, ch.DisplayName})
	}
	return encodeCSV([]string{"site", "xmltv_id", "site_id", "lang", "display_name"}, rows)
}

// DecisionsCSV renders the merge report as CSV bytes: one row per
// losing candidate, both sides identified, plus the rule that fired.
func DecisionsCSV(decisions []channel.MergeDecision) ([]byte, error) {
	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, []string{
			d.Key,
			d.Kept.DisplayName, d.Kept.Site, d.Kept.ExternalID, d.Kept.SourceTag,
			d.Dropped.DisplayName, d.Dropped.Site, d.Dropped.ExternalID, d.Dropped.SourceTag,
			string(d.Rule),
		})
	}
	return encodeCSV([]string{
		"key",
		"kept_name", "kept_site", "kept_xmltv_id", "kept_source",
		"dropped_name", "dropped_site", "dropped_xmltv_id", "dropped_source",
		"decision_rule",
	}, rows)
}

// ProblemsCSV renders the problem list as CSV bytes.
func ProblemsCSV(problems []channel.Problem) ([]byte, error) {
	rows := make([][]string, 0, len(problems))
	for _, p := range problems {
		rows = append(rows, []string{p.Name, p.Site, p.ExternalID, p.SourceTag, p.Reason})
	}
	return encodeCSV([]string{"name", "site", "xmltv_id", "source", "problem"}, rows)
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return buffer.Bytes(), nil
}

// WriteFileAtomic replaces path with data, fsynced before rename.
func WriteFileAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("atomically write %s: %w", path, err)
	}
	return nil
}
