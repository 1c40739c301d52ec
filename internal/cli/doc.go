// Package cli implements the command-line interface for econcal.
//
// The cli package provides the Cobra-based CLI that binds flags, config files
// and ECONCAL_* environment variables through viper, then coordinates the
// scraper, collector, filter and storage packages to fetch a week range and
// either write the resulting table or print a preview of it.
package cli
