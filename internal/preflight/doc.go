// Package preflight provides readiness checks for the binaries, directories,
// and store that vinyl depends on.
//
// These checks run in two contexts:
//   - The "vinyl doctor" command renders the full set as a table.
//   - The TUI runs them at startup and shows a warning line when one fails.
package preflight
