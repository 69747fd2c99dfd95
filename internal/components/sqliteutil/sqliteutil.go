package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects a database, `Url` (a remote libsql database) takes precedence
// over `File` (a local sqlite file, ":memory:" is allowed).
type Config struct {
	File      string `json:"file" envconfig:"FILE"`
	Url       string `json:"url" envconfig:"URL"`
	AuthToken string `json:"auth_token" envconfig:"AUTH_TOKEN"`
}

// OpenDB opens the configured database and applies `schema` to it,
// schemas are expected to use "CREATE ... IF NOT EXISTS".
func OpenDB(config Config, schema string) (*sql.DB, error) {
	db, err := open(config)
	if err != nil {
		return nil, err
	}
	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}

func open(config Config) (*sql.DB, error) {
	if config.Url != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		link := config.Url
		if len(values) > 0 {
			link += "?" + values.Encode()
		}
		return sql.Open("libsql", link)
	}

	if config.File == "" {
		return nil, fmt.Errorf("neither a database url nor a file was specified")
	}
	if config.File == ":memory:" {
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, err
		}
		// every connection to :memory: is a different database
		db.SetMaxOpenConns(1)
		return db, nil
	}

	if dir := filepath.Dir(config.File); dir != "." && !strings.HasPrefix(config.File, "file:") {
		err := os.MkdirAll(dir, 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
