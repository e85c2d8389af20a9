package models

import (
	"database/sql"
	_ "embed"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

var DB *sql.DB

func InitDB(path string) *sql.DB {
	var err error
	DB, err = sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open DB")
	}
	if _, err := DB.Exec(schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	log.Info().Str("path", path).Msg("Database connected and schema applied")
	DB.SetMaxOpenConns(1)
	return DB
}
