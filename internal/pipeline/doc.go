// Package pipeline runs the per-score-type harvest steps and batches them.
//
// A Pipeline executes Steps in order over a Job: the crawl itself, then
// bookkeeping such as recording the run in the history database. Batch
// runs one fresh pipeline per score type, one after the other with a pause
// in between, and keeps going when a score type fails.
package pipeline
