package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ajpearen/lineup-etl/channel"
	"github.com/ajpearen/lineup-etl/config"
)

// Column aliases seen across the hand-maintained CSV lists. First match
// in order wins.
var (
	nameColumns    = []string{"display_name", "name", "channel", "title"}
	siteColumns    = []string{"site", "source_site"}
	idColumns      = []string{"xmltv_id", "id"}
	localIDColumns = []string{"site_id", "channel_id", "local_id"}
	langColumns    = []string{"lang", "language"}
	countryColumns = []string{"country"}
)

// ReadCandidatesCSV parses one CSV channel list into candidates. The
// lists vary in column naming and completeness, so columns are resolved
// through the alias tables above and missing values fall back to the
// source's configured site and country.
func ReadCandidatesCSV(r io.Reader, src config.SourceConfig) ([]channel.Candidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Index header columns case-insensitively; Excel exports carry a
	// UTF-8 BOM on the first cell.
	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var cands []channel.Candidate
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		c := channel.Candidate{
			DisplayName: pick(record, index, nameColumns),
			Site:        pick(record, index, siteColumns),
			ExternalID:  pick(record, index, idColumns),
			SiteLocalID: pick(record, index, localIDColumns),
			Lang:        pick(record, index, langColumns),
			Country:     channel.ParseCountry(pick(record, index, countryColumns)),
			SourceTag:   src.Name,
		}
		if c.Site == "" {
			c.Site = src.Site
		}
		if c.Country == channel.CountryUnknown {
			c.Country = channel.ParseCountry(src.Country)
		}
		cands = append(cands, c)
	}
	return cands, nil
}

// pick returns the first non-empty value among the aliased columns.
func pick(record []string, index map[string]int, aliases []string) string {
	for _, alias := range aliases {
		if i, ok := index[alias]; ok && i < len(record) {
			if v := strings.TrimSpace(record[i]); v != "" {
				return v
			}
		}
	}
	return ""
}
