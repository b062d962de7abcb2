package pipeline

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ajpearen/lineup-etl/config"
	"github.com/ajpearen/lineup-etl/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// testConfig builds a runnable config over two fixture sources: the
// custom XML list and a draft CSV that duplicates one channel under a
// quality-token variant.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	xmlPath := writeFixture(t, dir, "custom.channels.xml", strings.Join([]string{
		`<channels>`,
		`  <channel site="tvguide.com" lang="en" xmltv_id="bbcone.uk" site_id="bbc-one">BBC One</channel>`,
		`  <channel site="tvguide.com" lang="en" xmltv_id="ctvtoronto.ca" site_id="ctv-toronto">CTV Toronto</channel>`,
		`</channels>`,
	}, "\n"))
	csvPath := writeFixture(t, dir, "draft.csv", strings.Join([]string{
		"name,site,xmltv_id,country",
		"BBC One HD,pluto.tv,bbcone.uk,UK",
		"Sky News,pluto.tv,skynews.uk,UK",
		",pluto.tv,,UK",
	}, "\n"))

	outDir := filepath.Join(dir, "out")
	return &config.Config{
		Sources: []config.SourceConfig{
			{Name: "custom", Path: xmlPath, Format: config.FormatChannelsXML, Country: "UK", Required: true},
			{Name: "draft", Path: csvPath, Format: config.FormatCSV},
		},
		Priority: config.PriorityConfig{
			Default: 99,
			Sites:   map[string]int{"tvguide.com": 1, "pluto.tv": 5},
		},
		Output: config.OutputConfig{
			ChannelList:            filepath.Join(outDir, "custom.channels.xml"),
			MergeReport:            filepath.Join(outDir, "merge_report.csv"),
			ProblemList:            filepath.Join(outDir, "problem_channels.csv"),
			VersionedDir:           filepath.Join(outDir, "versions"),
			PreserveOriginalNaming: true,
		},
	}
}

func testClock() utils.FixedTimeProvider {
	return utils.FixedTimeProvider{T: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestMergeProducesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	p, err := NewPipeline(cfg, testLogger(), testClock())
	require.NoError(t, err)
	defer p.Close()

	summary, err := p.Merge(false)
	require.NoError(t, err)

	// Both BBC One records share one key; the empty-name row is a problem.
	assert.Equal(t, 5, summary.Loaded)
	assert.Equal(t, 3, summary.Channels)
	assert.Equal(t, 1, summary.Decisions)
	assert.Equal(t, 1, summary.Problems)

	channelList, err := os.ReadFile(cfg.Output.ChannelList)
	require.NoError(t, err)
	assert.Contains(t, string(channelList), ">BBC One</channel>")
	assert.Contains(t, string(channelList), ">Sky News</channel>")
	assert.NotContains(t, string(channelList), "BBC One HD")

	report, err := os.ReadFile(cfg.Output.MergeReport)
	require.NoError(t, err)
	assert.Contains(t, string(report), "BBC One HD")
	assert.Contains(t, string(report), "site_priority")

	problems, err := os.ReadFile(cfg.Output.ProblemList)
	require.NoError(t, err)
	assert.Contains(t, string(problems), "missing_name")

	snapshot, err := os.ReadFile(filepath.Join(cfg.Output.VersionedDir, "custom_channels_20240102_030405.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(snapshot), "site,xmltv_id,site_id,lang,display_name")
	assert.Contains(t, string(snapshot), "BBC One")
}

func TestMergeDryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	p, err := NewPipeline(cfg, testLogger(), testClock())
	require.NoError(t, err)
	defer p.Close()

	summary, err := p.Merge(true)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Channels)

	_, err = os.Stat(cfg.Output.ChannelList)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.Output.MergeReport)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.Output.VersionedDir)
	assert.True(t, os.IsNotExist(err))
}

func TestMergeMissingRequiredSourceAborts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources[0].Path = filepath.Join(t.TempDir(), "does-not-exist.xml")

	p, err := NewPipeline(cfg, testLogger(), testClock())
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Merge(false)
	require.Error(t, err)

	_, statErr := os.Stat(cfg.Output.ChannelList)
	assert.True(t, os.IsNotExist(statErr))
}

func TestMergeAppliesPreferredRulesAndExclusions(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()

	// Sky News carries an excluded category; BBC One is excluded too
	// but stays because it is preferred.
	cfg.Rules.PreferredChannels = writeFixture(t, dir, "preferred.csv", strings.Join([]string{
		"id,name,categories,prefered",
		"bbcone.uk,BBC One,News,Y",
		",Sky News,News,N",
	}, "\n"))
	cfg.Rules.ExcludeCategories = writeFixture(t, dir, "exclude.csv", "category\nNews\n")

	p, err := NewPipeline(cfg, testLogger(), testClock())
	require.NoError(t, err)
	defer p.Close()

	summary, err := p.Merge(false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PreDropped)
	assert.Equal(t, 2, summary.Channels)

	channelList, err := os.ReadFile(cfg.Output.ChannelList)
	require.NoError(t, err)
	assert.Contains(t, string(channelList), ">BBC One</channel>")
	assert.NotContains(t, string(channelList), "Sky News")

	problems, err := os.ReadFile(cfg.Output.ProblemList)
	require.NoError(t, err)
	assert.Contains(t, string(problems), "excluded_category")
}

func TestMergeLoadsAuditDatabase(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	initFile := writeFixture(t, dir, "init.sql", strings.Join([]string{
		"CREATE TABLE IF NOT EXISTS final_channels (site VARCHAR, xmltv_id VARCHAR, site_id VARCHAR, lang VARCHAR, display_name VARCHAR);",
		"CREATE TABLE IF NOT EXISTS merge_decisions (key VARCHAR, kept_name VARCHAR, kept_site VARCHAR, kept_xmltv_id VARCHAR, kept_source VARCHAR, dropped_name VARCHAR, dropped_site VARCHAR, dropped_xmltv_id VARCHAR, dropped_source VARCHAR, decision_rule VARCHAR);",
	}, "\n"))
	cfg.DuckDB = config.DuckDBConfig{
		Path:              ":memory:",
		ConnInitFnQueries: []string{initFile},
	}

	p, err := NewPipeline(cfg, testLogger(), testClock())
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Merge(false)
	require.NoError(t, err)

	results, err := p.DuckDB.GetQueryResults("SELECT count(*) AS n FROM final_channels;")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, results["n"])

	results, err = p.DuckDB.GetQueryResults("SELECT decision_rule FROM merge_decisions;")
	require.NoError(t, err)
	assert.Equal(t, []string{"site_priority"}, results["decision_rule"])
}
