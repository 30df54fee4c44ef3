// Package config holds the runtime settings of the harvester and the
// loaders for the settings file and the optional exclusion-term list.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Debug toggles per-stage debug logging.
type Debug struct {
	Summaries  bool `mapstructure:"summaries"`
	Sentences  bool `mapstructure:"sentences"`
	Excludes   bool `mapstructure:"excludes"`
	Duplicates bool `mapstructure:"duplicates"`
	Corpus     bool `mapstructure:"corpus"`
	Senses     bool `mapstructure:"senses"`
}

// Settings is the full configuration surface of a harvesting run.
type Settings struct {
	Language     string `mapstructure:"language"`
	LanguageCode string `mapstructure:"language_code"`
	LanguageQID  string `mapstructure:"language_qid"`

	QueryResultSize  int `mapstructure:"query_result_size"`
	QueryOffset      int `mapstructure:"query_offset"`
	CorpusMaxResults int `mapstructure:"corpus_max_results"`

	MinWordCount          int `mapstructure:"min_word_count"`
	MaxWordCount          int `mapstructure:"max_word_count"`
	NearDuplicateDistance int `mapstructure:"near_duplicate_distance"`

	StopOnSenseCancel bool   `mapstructure:"stop_on_sense_cancel"`
	SkipSeen          bool   `mapstructure:"skip_seen"`
	HistoryDB         string `mapstructure:"history_db"`
	ExclusionList     string `mapstructure:"exclusion_list"`

	Debug Debug `mapstructure:"debug"`
}

// Default returns the settings used when no file overrides them. The corpus
// budget is kept to multiples of the 20-document page size.
func Default() *Settings {
	return &Settings{
		Language:         "swedish",
		LanguageCode:     "sv",
		LanguageQID:      "Q9027",
		QueryResultSize:  100,
		QueryOffset:      0,
		CorpusMaxResults: 160,
		MinWordCount:     5,
		MaxWordCount:     15,
		SkipSeen:         true,
		HistoryDB:        "lexuse.db",
	}
}

// Validate reports every invalid field.
func (s *Settings) Validate() []error {
	var errs []error
	if s.LanguageCode == "" {
		errs = append(errs, errors.New("language_code must not be empty"))
	}
	if s.LanguageQID == "" {
		errs = append(errs, errors.New("language_qid must not be empty"))
	}
	if s.QueryResultSize <= 0 {
		errs = append(errs, errors.New("query_result_size must be positive"))
	}
	if s.CorpusMaxResults <= 0 {
		errs = append(errs, errors.New("corpus_max_results must be positive"))
	}
	if s.MinWordCount <= 0 {
		errs = append(errs, errors.New("min_word_count must be positive"))
	}
	if s.MaxWordCount < s.MinWordCount {
		errs = append(errs, errors.Errorf(
			"max_word_count (%d) must not be below min_word_count (%d)",
			s.MaxWordCount, s.MinWordCount))
	}
	if s.NearDuplicateDistance < 0 {
		errs = append(errs, errors.New("near_duplicate_distance must not be negative"))
	}
	return errs
}

// TryLoadFromDisk reads a settings file and merges it over the defaults.
// Environment variables with the LEXUSE_ prefix override file values.
func TryLoadFromDisk(configFilePath string) (*Settings, error) {
	if _, err := os.Stat(configFilePath); err != nil {
		return nil, err
	}
	dir, file := filepath.Split(configFilePath)
	fileType := filepath.Ext(file)

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(file, fileType))
	v.SetConfigType(strings.TrimPrefix(fileType, "."))
	v.SetEnvPrefix("LEXUSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read settings file")
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal settings")
	}
	return cfg, nil
}

// Credentials are the bot-password credentials for the write-back service.
// They are only ever read from the environment, never from the settings
// file.
type Credentials struct {
	Username string
	Password string
}

// CredentialsFromEnv reads LEXUSE_USERNAME and LEXUSE_PASSWORD.
func CredentialsFromEnv() (Credentials, error) {
	user := os.Getenv("LEXUSE_USERNAME")
	pass := os.Getenv("LEXUSE_PASSWORD")
	if user == "" || pass == "" {
		return Credentials{}, errors.New(
			"LEXUSE_USERNAME and LEXUSE_PASSWORD must be set")
	}
	return Credentials{Username: user, Password: pass}, nil
}

// ExclusionList is an override for the built-in exclusion-term list.
type ExclusionList struct {
	Terms []string `yaml:"terms"`
}

// LoadExclusionList loads exclusion terms from a YAML file.
func LoadExclusionList(path string) (*ExclusionList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list ExclusionList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse exclusion list %s: %w", path, err)
	}
	return &list, nil
}
