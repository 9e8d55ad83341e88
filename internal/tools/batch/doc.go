// Package batch runs one tool operation over several event IDs and reports
// per-ID outcomes, so a partial failure does not hide the successes.
package batch
