// Package provider defines the document capability the crawler drives.
//
// A Document is a live page: it can be loaded, queried, and acted upon
// (click, programmatic invoke, select option). The crawler depends only on
// these interfaces, so a browser-backed engine and the static-markup engine
// in package htmldoc are interchangeable.
//
// Queries are built with ByID, ByName, ByTag and BySelector. Readiness is
// awaited with WaitUntilPresent and WaitUntilClickable, which poll the
// document until the element appears or the timeout elapses.
package provider
