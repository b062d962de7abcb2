package config

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		baseYAML string  // Base YAML config
		envYAML  string  // Environment-specific YAML (optional)
		env      string  // Environment variable value
		want     *Config // Expected Config
		wantErr  bool    // Expecting an error?
	}{
		{
			name: "Successful Load with Default Env",
			baseYAML: `
sources:
  - name: custom-channels
    path: "data/custom.channels.xml"
    format: channels-xml
    required: true
  - name: draft-keep
    path: "data/draft.csv"
    format: csv
    site: pluto.tv
    country: CA
priority:
  default: 99
  sites:
    tvguide.com: 1
    pluto.tv: 5
rules:
  uk_tokens:
    - yorkshire
    - scotland
  provider_tags:
    - viaplay
output:
  channel_list: "out/custom.channels.xml"
  merge_report: "out/merge_report.csv"
  preserve_original_naming: true
duckdb:
  path: "audit.db"
`,
			want: &Config{
				Env: "dev",
				Sources: []SourceConfig{
					{
						Name:     "custom-channels",
						Path:     "data/custom.channels.xml",
						Format:   FormatChannelsXML,
						Required: true,
					},
					{
						Name:    "draft-keep",
						Path:    "data/draft.csv",
						Format:  FormatCSV,
						Site:    "pluto.tv",
						Country: "CA",
					},
				},
				Priority: PriorityConfig{
					Default: 99,
					Sites: map[string]int{
						"tvguide.com": 1,
						"pluto.tv":    5,
					},
				},
				Rules: RulesConfig{
					UKTokens:     []string{"yorkshire", "scotland"},
					ProviderTags: []string{"viaplay"},
				},
				Output: OutputConfig{
					ChannelList:            "out/custom.channels.xml",
					MergeReport:            "out/merge_report.csv",
					PreserveOriginalNaming: true,
				},
				DuckDB: DuckDBConfig{
					Path: "audit.db",
				},
			},
			wantErr: false,
		},
		{
			name: "Successful Load with Environment Override",
			baseYAML: `
output:
  channel_list: "out/custom.channels.xml"
duckdb:
  path: ""
  conn_init_fn_queries:
    - "../sql/init__audit.sql"
`,
			envYAML: `
output:
  channel_list: "out/prod.channels.xml"
duckdb:
  path: "prod_audit.db"
`,
			env: "prod",
			want: &Config{
				Env: "prod",
				Output: OutputConfig{
					ChannelList: "out/prod.channels.xml", // Overridden path
				},
				DuckDB: DuckDBConfig{
					Path:              "prod_audit.db", // Overridden path
					ConnInitFnQueries: []string{"../sql/init__audit.sql"},
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset Viper for each test
			viper.Reset()

			// Create a reader for the base YAML
			baseConfigReader := strings.NewReader(tt.baseYAML)
			var envConfigReader io.Reader
			if tt.envYAML != "" {
				envConfigReader = strings.NewReader(tt.envYAML)
			}

			// Call NewConfig with the base config reader
			got, err := NewConfig(baseConfigReader, envConfigReader, tt.env)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got, "Config structs don't match")
		})
	}
}
