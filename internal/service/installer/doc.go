// Package installer applies release archives to the install directory.
//
// Archives use the single-common-root zip layout; the root component is
// stripped from every entry and all paths are validated before the first
// byte is written.
package installer
