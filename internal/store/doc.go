// Package store persists record partitions as JSON files.
//
// A partition holds every record of one score type. Files are written as a
// UTF-8 JSON array with two-space indentation and no HTML escaping, and are
// replaced atomically: the new content goes to a temporary file in the same
// directory which is then renamed over the old one. A crash mid-write leaves
// the previous checkpoint intact.
package store
