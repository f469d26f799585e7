// Package main provides the entry point for the atlasharvest CLI.
//
// atlasharvest harvests the university program listings of the admission
// atlas, one JSON partition per score type, and merges the partitions into
// a canonical dataset.
//
// Usage:
//
//	atlasharvest crawl --score-type say
//	atlasharvest crawl --all-types
//	atlasharvest normalize
//	atlasharvest stats --format markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}
