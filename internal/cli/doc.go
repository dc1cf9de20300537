// Package cli provides command-line interface setup and configuration
// for the tamildecl application. It handles flag parsing, command
// creation, logger setup and configuration management using cobra and viper.
package cli
