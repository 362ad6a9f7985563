/*
MIT License

Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package config reads the settings shared by the hookfetch commands from the
// environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mikelane/hookfetch/internal/hookdeck"
)

const (
	// DefaultHost is the address the inbound receiver listens on
	DefaultHost = "0.0.0.0"
	// DefaultPort is the port the inbound receiver listens on
	DefaultPort = 3032
	// DefaultLogLevel is used when LOG_LEVEL is unset
	DefaultLogLevel = "info"
)

// Config holds the settings of every command
type Config struct {
	Hookdeck HookdeckConfig
	Server   ServerConfig
	Log      LogConfig
}

// HookdeckConfig locates the Hookdeck APIs and holds their credentials
type HookdeckConfig struct {
	APIKey        string
	APIURL        string
	PublishURL    string
	WebhookSecret string
}

// ServerConfig is the listen address of the inbound receiver
type ServerConfig struct {
	Host string
	Port int
}

// LogConfig selects the log verbosity and format
type LogConfig struct {
	Level       string
	Development bool
}

// Load reads the configuration from the environment. Callers load .env first.
func Load() *Config {
	return &Config{
		Hookdeck: HookdeckConfig{
			APIKey:        getEnv("HOOKDECK_API_KEY", ""),
			APIURL:        getEnv("HOOKDECK_API_URL", hookdeck.DefaultBaseURL),
			PublishURL:    getEnv("HOOKDECK_PUBLISH_URL", hookdeck.DefaultPublishURL),
			WebhookSecret: getEnv("HOOKDECK_WEBHOOK_SECRET", ""),
		},
		Server: ServerConfig{
			Host: getEnv("HOST", DefaultHost),
			Port: getEnvInt("PORT", DefaultPort),
		},
		Log: LogConfig{
			Level:       strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
			Development: getEnvBool("LOG_DEVELOPMENT", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
