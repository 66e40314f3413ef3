// Package config defines the application configuration structures and loading.
package config
