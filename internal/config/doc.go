// Package config provides configuration loading, merging, and validation
// facilities for the sync agent and the document store.
//
// Configuration is assembled from multiple sources. For every field the
// first source holding a non-zero value wins:
//  1. Command-line flags
//  2. Environment variables
//  3. JSON or YAML config file
//
// The main entry points are [GetClientConfig] for the sync agent and
// [GetServerConfig] for the document store.
package config
