package config

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/viper"
)

// Source formats understood by the extract package.
const (
	FormatCSV         = "csv"
	FormatChannelsXML = "channels-xml"
)

type Config struct {
	Sources  []SourceConfig
	Priority PriorityConfig
	Rules    RulesConfig
	Output   OutputConfig
	DuckDB   DuckDBConfig
	Env      string
}

// SourceConfig describes one input channel list. Order in the config
// file is load order, and earlier sources win first-seen ties.
type SourceConfig struct {
	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`
	Format   string `mapstructure:"format"`
	Site     string `mapstructure:"site"`
	Country  string `mapstructure:"country"`
	Required bool   `mapstructure:"required"`
}

// PriorityConfig is the site trust table. Lower number = more trusted;
// sites missing from the map get Default.
type PriorityConfig struct {
	Sites   map[string]int `mapstructure:"sites"`
	Default int            `mapstructure:"default"`
}

type RulesConfig struct {
	UKTokens          []string `mapstructure:"uk_tokens"`
	AUTokens          []string `mapstructure:"au_tokens"`
	LocalKeepPatterns []string `mapstructure:"local_keep_patterns"`
	ProviderTags      []string `mapstructure:"provider_tags"`
	PreferredChannels string   `mapstructure:"preferred_channels"`
	ExcludeCategories string   `mapstructure:"exclude_categories"`
}

type OutputConfig struct {
	ChannelList            string `mapstructure:"channel_list"`
	MergeReport            string `mapstructure:"merge_report"`
	ProblemList            string `mapstructure:"problem_list"`
	VersionedDir           string `mapstructure:"versioned_dir"`
	PreserveOriginalNaming bool   `mapstructure:"preserve_original_naming"`
}

type DuckDBConfig struct {
	Path              string   `mapstructure:"path"`
	ConnInitFnQueries []string `mapstructure:"conn_init_fn_queries"`
}

// NewConfig loads the configuration from the provided base config reader
// and merges it with the environment-specific configuration.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" { // Use the provided 'env' or default to "dev"
		env = "dev"
	}

	viper.SetConfigType("yaml")

	// Read the base configuration
	if err := viper.ReadConfig(baseConfigReader); err != nil {
		return nil, fmt.Errorf("error reading base config: %w", err)
	}

	// Merge with environment-specific configuration (only if provided)
	if envConfigReader != nil {
		if err := viper.MergeConfig(envConfigReader); err != nil {
			log.Printf("Error merging environment-specific config: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Set the environment directly
	config.Env = env

	return &config, nil
}
