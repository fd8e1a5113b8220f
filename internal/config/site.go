package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "2s" or "500ms". yaml.v3 has no native duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// SiteConfig holds site-specific overrides for a single hostname.
// This allows tuning crawl behavior per site without separate runs.
type SiteConfig struct {
	// TargetPages overrides the global page budget for this site.
	// If zero, the global TargetPages is used.
	TargetPages int `yaml:"targetPages,omitempty"`

	// BatchSize overrides the global analyzer batch size for this site.
	// If zero, the global BatchSize is used.
	BatchSize int `yaml:"batchSize,omitempty"`

	// CrawlDelay overrides the inter-batch delay for this site.
	// If zero, the global CrawlDelay is used. Slow or rate-limited
	// sites can be given a longer pause here.
	CrawlDelay Duration `yaml:"crawlDelay,omitempty"`

	// Exclusions are URLs never crawled on this site, in addition to
	// any exclusion file passed on the command line.
	Exclusions []string `yaml:"exclusions,omitempty"`
}

// File represents the structure of the .seocrawl configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys should be the bare hostname (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(hostname string) SiteConfig {
	// Start with defaults. The exclusion slice is copied so that
	// appending a site's exclusions never writes into the shared
	// Defaults backing array.
	result := cf.Defaults
	result.Exclusions = append([]string(nil), result.Exclusions...)

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[hostname]; ok {
		if siteConfig.TargetPages != 0 {
			result.TargetPages = siteConfig.TargetPages
		}
		if siteConfig.BatchSize != 0 {
			result.BatchSize = siteConfig.BatchSize
		}
		if siteConfig.CrawlDelay != 0 {
			result.CrawlDelay = siteConfig.CrawlDelay
		}
		if len(siteConfig.Exclusions) > 0 {
			result.Exclusions = append(result.Exclusions, siteConfig.Exclusions...)
		}
	}

	return result
}
