package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-data/internal/config"
	"github.com/ironsheep/image-data/internal/transform"
)

// app carries state from the root command into its subcommands.
type app struct {
	cfg    config.Config
	logger *log.Logger
}

// newRootCommand creates a fresh command tree so tests don't share state.
func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "image-data",
		Short: "Replace image metadata tokens in stylesheets",
		Long: `image-data rewrites stylesheets, replacing tokens such as
image-width('src/images/logo.png') with values measured from the image itself.

Examples:
   image-data transform styles.css -o out.css
   image-data resolve            # metadata for every configured image
   image-data inspect logo.png   # metadata for one image
   image-data serve              # MCP server on stdin/stdout`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default .image-data.{yaml,json,toml} in the working directory)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.Version = Version
	cmd.SetVersionTemplate("image-data {{.Version}}\n")

	cmd.AddCommand(
		newTransformCommand(a),
		newResolveCommand(a),
		newInspectCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)

	return cmd
}

// load reads the configuration and sets up logging on stderr; stdout is
// reserved for results and the MCP protocol.
func (a *app) load(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(".", configFile, cmd.Flags())
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	return nil
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "image-data",
		ReportTimestamp: true,
	})
}

// transformer builds a Transformer from the loaded configuration.
func (a *app) transformer() (*transform.Transformer, error) {
	return transform.New(a.cfg, transform.WithLogger(a.logger))
}
