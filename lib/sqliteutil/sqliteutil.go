package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	devenv "starrail-backend/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects between a local sqlite file and a remote libsql database,
// a non-empty Url always wins.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens the configured database and applies `schema` to it.
func (c Config) OpenDB(schema string) (*sql.DB, error) {
	if c.Url != "" {
		return openRemote(schema, c.Url, c.AuthToken)
	}
	if c.File == "" {
		return nil, wrapOpenDB(fmt.Errorf("neither a file nor a url was specified"))
	}
	return OpenDB(schema, c.File)
}

func openRemote(schema, dburl, authToken string) (*sql.DB, error) {
	values := url.Values{}
	if authToken != "" {
		values.Add("authToken", authToken)
	}
	db, err := sql.Open("libsql", dburl+"?"+values.Encode())
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	err = applySchema(db, schema)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

// OpenDB opens a local sqlite database at `path` (which may be `:memory:`
// or start with `<dev_state>`) and applies `schema` to it.
func OpenDB(schema, path string) (*sql.DB, error) {
	if path != ":memory:" {
		resolved, err := devenv.ResolvePath(path)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		path = resolved
		err = os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	err = applySchema(db, schema)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

func applySchema(db *sql.DB, schema string) error {
	if schema == "" {
		return nil
	}
	_, err := db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return err
	}
	return nil
}
