// Package config provides configuration structures and utilities for the
// SEO crawler. It defines the main options for crawl budgets, batching,
// report generation, and per-site overrides loaded from a YAML file.
package config
