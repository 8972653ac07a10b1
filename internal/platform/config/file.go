package config

// Pipeline configuration from a json file. Env Conf covers ambient knobs
// (logging, ops listener); everything the sync loop needs lives here

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/SamMeown/ETL/internal/platform/backoff"
	perr "github.com/SamMeown/ETL/internal/platform/errors"
)

// Defaults applied by File.withDefaults for absent keys
const (
	DefaultStateFilePath = "storage.json"
	DefaultSyncInterval  = 30.0
	DefaultBatchSize     = 100

	defaultMinBackoffDelay  = 0.1
	defaultMaxBackoffDelay  = 10.0
	defaultTotalBackoffTime = 30.0
)

// File is the pipeline configuration
type File struct {
	Postgres      PostgresDB `json:"postgres_db" validate:"required"`
	Elastic       ElasticDB  `json:"es_db" validate:"required"`
	StateFilePath string     `json:"state_file_path"`
	SyncInterval  float64    `json:"sync_interval" validate:"gte=0"`
	BatchSize     int        `json:"batch_size" validate:"gte=0"`
}

// PostgresDB configures the source database and its retry budget
type PostgresDB struct {
	DSN PostgresDSN `json:"dsn" validate:"required"`
	Retry
}

// ElasticDB configures the search backend and its retry budget
type ElasticDB struct {
	DSN ElasticDSN `json:"dsn" validate:"required"`
	Retry
}

// PostgresDSN holds source connection parameters
type PostgresDSN struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required,gte=1,lte=65535"`
	DBName   string `json:"dbname" validate:"required"`
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ElasticDSN holds search backend parameters; DBName doubles as the index name
type ElasticDSN struct {
	Host   string `json:"host" validate:"required"`
	Port   int    `json:"port" validate:"required,gte=1,lte=65535"`
	DBName string `json:"dbname" validate:"required"`
}

// Retry holds per backend backoff knobs in seconds, mirroring the file keys
type Retry struct {
	MinBackoffDelay  float64 `json:"min_backoff_delay" validate:"gte=0"`
	MaxBackoffDelay  float64 `json:"max_backoff_delay" validate:"gte=0"`
	TotalBackoffTime float64 `json:"total_backoff_time" validate:"gte=0"`
}

// Policy converts the retry knobs into a backoff policy
func (r Retry) Policy() backoff.Policy {
	return backoff.Policy{
		Start:   secondsToDuration(r.MinBackoffDelay),
		Ceiling: secondsToDuration(r.MaxBackoffDelay),
		Budget:  secondsToDuration(r.TotalBackoffTime),
	}
}

// ConnString renders a pgx keyword/value connection string
func (d PostgresDSN) ConnString() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s",
		d.Host, d.Port, d.DBName, d.User, d.Password)
}

// BaseURL renders the search backend root, e.g. http://127.0.0.1:9200
func (d ElasticDSN) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.Host, d.Port)
}

// Index returns the target index name
func (d ElasticDSN) Index() string { return d.DBName }

// SyncEvery returns the pause between orchestrator iterations
func (f *File) SyncEvery() time.Duration { return secondsToDuration(f.SyncInterval) }

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (f *File) withDefaults() {
	if f.StateFilePath == "" {
		f.StateFilePath = DefaultStateFilePath
	}
	if f.SyncInterval == 0 {
		f.SyncInterval = DefaultSyncInterval
	}
	if f.BatchSize == 0 {
		f.BatchSize = DefaultBatchSize
	}
	for _, r := range []*Retry{&f.Postgres.Retry, &f.Elastic.Retry} {
		if r.MinBackoffDelay == 0 {
			r.MinBackoffDelay = defaultMinBackoffDelay
		}
		if r.MaxBackoffDelay == 0 {
			r.MaxBackoffDelay = defaultMaxBackoffDelay
		}
		if r.TotalBackoffTime == 0 {
			r.TotalBackoffTime = defaultTotalBackoffTime
		}
	}
}

// LoadFile reads, defaults, and validates the pipeline configuration
//
// any failure here is fatal to the caller: the pipeline must not start on a
// half-understood config
func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.KindConfig, "read config %s", path)
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, perr.Wrapf(err, perr.KindParse, "parse config %s", path)
	}
	f.withDefaults()
	if err := validateFile(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
