// Package logger provides leveled console logging for cred commands.
//
// Verbosity is controlled by two persistent flags:
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags, only critical warnings and errors are shown.
//
//	Logger.Infof()       // Shown with --verbose or --debug
//	Logger.Debugf()      // Shown only with --debug
//	Logger.Warnf()       // Shown with --verbose or --debug
//	Logger.WarnfAlways() // Always shown
//	Logger.Errorf()      // Always shown
//
// All levels write to stderr.
//
// The root command builds the logger in PersistentPreRun and passes it by
// value into workflow options.
package logger
