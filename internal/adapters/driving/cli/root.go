// Package cli wires the apidocs commands to the pipeline services.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driving"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	cfgPath    string
	verbose    bool
	noManifest bool
)

// Services injected before command execution. Tests swap these for
// mocks; main installs a bootstrap that builds them from config.
var (
	downloader    driving.Downloader
	converter     driving.Converter
	wikiPublisher driving.WikiPublisher
	indexer       driving.Indexer
	pipeline      driving.Pipeline
)

// bootstrap builds the services a command needs from the loaded
// configuration. mode is the command name, so the bootstrap can
// validate only the settings that command requires.
var bootstrap func(cfgPath string, verbose, noManifest bool, mode string) error

var rootCmd = &cobra.Command{
	Use:   "apidocs",
	Short: "Download, render and index API documentation",
	Long: `apidocs exports API specifications from Azure API Management,
renders them to Markdown, fuses wiki documentation per service and
publishes everything to an Azure AI Search index.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config/config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the driving ports directly, bypassing the
// bootstrap. Used by tests.
func SetServices(d driving.Downloader, c driving.Converter, w driving.WikiPublisher, i driving.Indexer, p driving.Pipeline) {
	downloader = d
	converter = c
	wikiPublisher = w
	indexer = i
	pipeline = p
}

// SetBootstrap registers the service factory run before each command.
func SetBootstrap(fn func(cfgPath string, verbose, noManifest bool, mode string) error) {
	bootstrap = fn
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

// ensureServices runs the bootstrap for the given command mode.
func ensureServices(mode string) error {
	if bootstrap == nil {
		return nil
	}
	if err := bootstrap(cfgPath, verbose, noManifest, mode); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
