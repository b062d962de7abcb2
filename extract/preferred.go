package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ajpearen/lineup-etl/transform"
)

// ReadPreferredRules parses the preferred-channels rules CSV. Expected
// columns: id, name, alt_names, network, country, categories and an
// optional preferred flag ("prefered" is accepted too, the original
// list spells it that way). alt_names and categories are
// semicolon-separated. When the flag column is absent entirely, every
// listed channel counts as preferred.
func ReadPreferredRules(r io.Reader) ([]transform.PreferredRule, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferred rules header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("preferred rules CSV is missing the required 'name' column")
	}

	flagCol, hasFlag := index["preferred"]
	if !hasFlag {
		flagCol, hasFlag = index["prefered"]
	}

	var rules []transform.PreferredRule
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read preferred rules record: %w", err)
		}

		rule := transform.PreferredRule{
			ID:         field(record, index, "id"),
			Name:       field(record, index, "name"),
			AltNames:   splitList(field(record, index, "alt_names")),
			Network:    field(record, index, "network"),
			Country:    field(record, index, "country"),
			Categories: splitList(field(record, index, "categories")),
			Preferred:  true,
		}
		if hasFlag && flagCol < len(record) {
			v := strings.TrimSpace(record[flagCol])
			rule.Preferred = strings.HasPrefix(strings.ToUpper(v), "Y")
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ReadExcludeCategories parses the exclude-categories CSV: either a
// file with a "category" column or a single unlabeled column.
func ReadExcludeCategories(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read exclude categories header: %w", err)
	}

	col := 0
	found := false
	for i, name := range header {
		name = strings.TrimPrefix(name, "\uFEFF")
		if strings.EqualFold(strings.TrimSpace(name), "category") {
			col = i
			found = true
			break
		}
	}

	var categories []string
	if !found {
		// No recognizable header; the first row is data.
		if v := strings.TrimSpace(strings.TrimPrefix(header[0], "\uFEFF")); v != "" {
			categories = append(categories, strings.ToLower(v))
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read exclude categories record: %w", err)
		}
		if col < len(record) {
			if v := strings.TrimSpace(record[col]); v != "" {
				categories = append(categories, strings.ToLower(v))
			}
		}
	}
	return categories, nil
}

func field(record []string, index map[string]int, name string) string {
	if i, ok := index[name]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
