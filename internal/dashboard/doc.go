// Package dashboard derives the three dashboard sections (crash map, severity
// analysis, crash causes) from the in-memory crash table. Every render is
// counted and, when a publisher is configured, reported as a view event.
package dashboard
