// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads QuizForge's runtime configuration from the
// environment via viper, merging env vars and defaults into a single
// struct. Command-line flags are not read.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every environment-derived setting the engine needs to start.
type Config struct {
	// DatabaseURL is a SQLite DSN or file path. The engine does not scale
	// horizontally, so this is never interpreted as a Postgres connection
	// string.
	DatabaseURL string

	// SecretKey signs presenter JWTs. There is no safe default: Load fails
	// fast if it is unset.
	SecretKey string

	// AllowedOrigins is the CORS allow-list for the REST API. The WebSocket
	// upgrade does not consult it and accepts any Origin.
	AllowedOrigins []string

	// RegistrationEnabled toggles POST /api/auth/register.
	RegistrationEnabled bool

	// HostLANIP is returned by GET /api/network-info so a client can build a
	// join URL that phones on the same network can reach. The QR-code
	// endpoint does not read it.
	HostLANIP string

	// HTTPAddr is the address the combined REST+WebSocket server listens on.
	HTTPAddr string
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database_url", "./data/quizforge.db")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("registration_enabled", true)
	v.SetDefault("host_lan_ip", "")
	v.SetDefault("http_addr", ":8080")

	secret := v.GetString("quizforge_secret_key")
	if secret == "" {
		return Config{}, fmt.Errorf("config: QUIZFORGE_SECRET_KEY must be set")
	}

	origins := strings.Split(v.GetString("allowed_origins"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return Config{
		DatabaseURL:         v.GetString("database_url"),
		SecretKey:           secret,
		AllowedOrigins:      origins,
		RegistrationEnabled: v.GetBool("registration_enabled"),
		HostLANIP:           v.GetString("host_lan_ip"),
		HTTPAddr:            v.GetString("http_addr"),
	}, nil
}
