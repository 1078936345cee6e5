package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"gopkg.in/yaml.v3"

	"github.com/hugr-lab/lazyscan"
	"github.com/hugr-lab/lazyscan/catalog"
	"github.com/hugr-lab/lazyscan/relation"
	"github.com/hugr-lab/lazyscan/relation/duckdb"
)

// Config is the serve configuration file.
type Config struct {
	// Address to listen on, e.g. "localhost:50051".
	Address string `yaml:"address"`

	// LogLevel overrides the --log-level flag when set.
	LogLevel string `yaml:"log_level,omitempty"`

	// MaxMessageSize is the gRPC message size limit in bytes.
	MaxMessageSize int `yaml:"max_message_size,omitempty"`

	// Relations are Arrow IPC files loaded into memory.
	Relations []FileRelation `yaml:"relations,omitempty"`

	// DuckDB exposes tables of one DuckDB database.
	DuckDB *DuckDBConfig `yaml:"duckdb,omitempty"`

	// Auth enables bearer-token authentication.
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// FileRelation is a relation read from a file.
type FileRelation struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Comment string `yaml:"comment,omitempty"`
}

// DuckDBConfig lists the DuckDB tables to serve.
type DuckDBConfig struct {
	// Path to the database file. Empty means an in-memory database.
	Path string `yaml:"path"`

	// Init statements run once after opening, e.g. to create views.
	Init []string `yaml:"init,omitempty"`

	Tables []DuckDBTable `yaml:"tables"`
}

// DuckDBTable maps a relation name to a DuckDB table or view.
type DuckDBTable struct {
	Name    string `yaml:"name"`
	Table   string `yaml:"table"`
	Comment string `yaml:"comment,omitempty"`
}

// AuthConfig holds static bearer tokens.
type AuthConfig struct {
	// Tokens maps token to identity.
	Tokens map[string]string `yaml:"tokens"`
}

// LoadConfig reads and validates a YAML configuration file. Relative relation
// and database paths are resolved against the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base := filepath.Dir(path)
	for i := range cfg.Relations {
		cfg.Relations[i].Path = resolve(base, cfg.Relations[i].Path)
	}
	if cfg.DuckDB != nil && cfg.DuckDB.Path != "" {
		cfg.DuckDB.Path = resolve(base, cfg.DuckDB.Path)
	}
	return &cfg, nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func validateConfig(cfg *Config) error {
	if cfg.Address == "" {
		return errors.New("address is required")
	}
	if cfg.LogLevel != "" {
		if _, err := parseLevel(cfg.LogLevel); err != nil {
			return err
		}
	}
	if cfg.MaxMessageSize < 0 {
		return fmt.Errorf("max_message_size must be non-negative, got %d", cfg.MaxMessageSize)
	}

	for i, r := range cfg.Relations {
		if r.Name == "" {
			return fmt.Errorf("relations[%d]: name is required", i)
		}
		if r.Path == "" {
			return fmt.Errorf("relations[%d] %s: path is required", i, r.Name)
		}
	}
	if cfg.DuckDB != nil {
		if len(cfg.DuckDB.Tables) == 0 {
			return errors.New("duckdb: at least one table is required")
		}
		for i, t := range cfg.DuckDB.Tables {
			if t.Name == "" {
				return fmt.Errorf("duckdb.tables[%d]: name is required", i)
			}
		}
	}
	if len(cfg.Relations) == 0 && cfg.DuckDB == nil {
		return errors.New("no relations configured")
	}
	if cfg.Auth != nil && len(cfg.Auth.Tokens) == 0 {
		return errors.New("auth: at least one token is required")
	}
	return nil
}

// OpenedCatalog is a catalog plus the resources backing its relations.
type OpenedCatalog struct {
	Catalog *catalog.Catalog
	closers []func()
}

// Close releases relation memory and closes databases.
func (o *OpenedCatalog) Close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
	o.closers = nil
}

// OpenCatalog opens every configured relation and builds the catalog.
func OpenCatalog(ctx context.Context, cfg *Config, logger *slog.Logger) (_ *OpenedCatalog, err error) {
	opened := &OpenedCatalog{}
	defer func() {
		if err != nil {
			opened.Close()
		}
	}()

	builder := lazyscan.NewCatalogBuilder().Logger(logger)

	for _, r := range cfg.Relations {
		mem, err := relation.Open(r.Path, memory.DefaultAllocator)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", r.Name, err)
		}
		opened.closers = append(opened.closers, mem.Release)
		builder.Relation(lazyscan.RelationDef{Name: r.Name, Comment: r.Comment, Relation: mem})

		logger.Info("Loaded relation", "relation", r.Name, "path", r.Path, "rows", mem.NumRows())
	}

	if cfg.DuckDB != nil {
		db, err := sql.Open(duckdb.DriverName, cfg.DuckDB.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open DuckDB database: %w", err)
		}
		opened.closers = append(opened.closers, func() { db.Close() })

		for _, stmt := range cfg.DuckDB.Init {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return nil, fmt.Errorf("duckdb init: %w", err)
			}
		}

		for _, t := range cfg.DuckDB.Tables {
			tableName := t.Table
			if tableName == "" {
				tableName = t.Name
			}
			table, err := duckdb.Open(ctx, db, tableName, duckdb.WithLogger(logger))
			if err != nil {
				return nil, fmt.Errorf("relation %s: %w", t.Name, err)
			}
			builder.Relation(lazyscan.RelationDef{Name: t.Name, Comment: t.Comment, Relation: table})

			logger.Info("Opened DuckDB relation", "relation", t.Name, "table", tableName)
		}
	}

	cat, err := builder.Build()
	if err != nil {
		return nil, err
	}
	opened.Catalog = cat
	return opened, nil
}
