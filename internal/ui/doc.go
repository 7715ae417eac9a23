// Package ui holds the formatters cred uses for terminal output.
//
// Each formatter names what it renders rather than how it looks:
//
//	ui.Key.Sprint("DATABASE_URL")      // secret key names
//	ui.Target.Sprint("github")         // targets and owner/name repos
//	ui.Code.Sprint("cred push")        // commands the user can run
//	ui.Path.Sprint(".cred/vault.enc")  // files and directories
//	ui.Success / ui.Error / ui.Warning // result markers
//	ui.Info.Sprint("→")                // hints
//	ui.Muted.Sprint("token missing")   // secondary detail
//
// Color is off when any of these hold:
//   - NO_COLOR is set
//   - --json is given or preferences.color_output is false
//   - stdout is not a terminal
//
// Without color, Code gains backticks, Target and Highlight gain single
// quotes and Muted gains parentheses.
package ui
