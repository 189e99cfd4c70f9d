package main

import (
	"fmt"
	"log/slog"
	"os"

	devenv "starrail-backend/dev/env"
	"starrail-backend/internal/db"
	"starrail-backend/lib/sqliteutil"
)

const localConfigTemplate = `{
  // overrides for config.json5, this file is never committed
  hoyolab: {
    uid: "",
    region: "prod_official_asia",
    cookie: "",
  },
  discord: {
    webhook: "",
  },
}
`

func CreateDevDB() error {
	path, err := devenv.ResolvePath("<dev_state>/starrail.db")
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	database, err := sqliteutil.OpenDB(db.Schema, path)
	if err != nil {
		return err
	}
	return database.Close()
}

func CreateLocalConfig() error {
	_, err := os.Stat("config.local.json5")
	if err == nil {
		fmt.Println("local config already exists")
		return nil
	}
	return os.WriteFile("config.local.json5", []byte(localConfigTemplate), 0600)
}

func PrintConfigLocations() {
	slog.Info("fill in config.local.json5 with a hoyolab account to enable redemption, live source tests read dev/.state/live.json5 and are skipped when it is missing.")
}
