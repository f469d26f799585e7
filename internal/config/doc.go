// Package config holds the runtime configuration of atlasharvest: crawl
// timing, HTTP identity, output locations and the optional .atlasharvest
// YAML file with per score type overrides.
package config
