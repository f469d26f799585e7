// Package report renders harvest results for people and tools.
//
// Three writers share the Writer interface:
//   - TextWriter: rounded terminal tables
//   - JSONWriter: structured output for scripts
//   - MarkdownWriter: shareable documents with mermaid pie charts
//
// Writers only format. Counting happens in model.NewSummary and the run
// history lives in the database package.
package report
