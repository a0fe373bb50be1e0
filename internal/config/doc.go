// Package config defines updater settings and provides helpers to load,
// validate and save them in YAML format.
//
// Settings either name the manifest and archive URLs directly or provide a
// GitHub owner/repo/branch triple from which the standard raw-file and
// zipball URLs are derived.
package config
