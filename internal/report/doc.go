// Package report renders analysis results for the terminal.
package report
