// Package database ships a small seed so a fresh install has accounts to
// poke at. Seeding is skipped when any user already exists.
package database

import (
	"database/sql"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Username string
	Email    string
	Password string
	Bio      string
}

var seedUsers = []seedUser{
	{"adam", "adam@example.com", "password123", "Street photography and old film cameras."},
	{"brian", "brian@example.com", "password123", "Mostly here for the food pictures."},
	{"carl", "carl@example.com", "password123", ""},
}

func SeedTestUsers(db *sql.DB) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		log.Error().Err(err).Msg("seed: count users failed")
		return
	}
	if count > 0 {
		return
	}

	for _, u := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Str("username", u.Username).Msg("seed: hash failed")
			continue
		}
		if _, err := db.Exec(`INSERT INTO users (username, email, password_hash, bio) VALUES (?, ?, ?, ?)`,
			u.Username, u.Email, string(hash), u.Bio); err != nil {
			log.Error().Err(err).Str("username", u.Username).Msg("seed: insert failed")
		}
	}
	log.Info().Int("users", len(seedUsers)).Msg("seed users inserted")
}
