package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-data/internal/imaging"
	"github.com/ironsheep/image-data/internal/resolver"
	"github.com/ironsheep/image-data/internal/server"
)

func newTransformCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform [file]",
		Short: "Rewrite a stylesheet read from file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				in  []byte
				err error
			)
			if len(args) == 1 && args[0] != "-" {
				in, err = os.ReadFile(args[0])
			} else {
				in, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			t, err := a.transformer()
			if err != nil {
				return err
			}
			defer t.Close()

			res, err := t.Transform(cmd.Context(), string(in))
			if err != nil {
				return err
			}
			a.logger.Debug("document rewritten", "replaced", res.Replaced, "unresolved", len(res.Unresolved))

			output, _ := cmd.Flags().GetString("output")
			if output == "" || output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), res.Text)
				return err
			}
			if err := os.WriteFile(output, []byte(res.Text), 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "write the result to this file instead of stdout")
	return cmd
}

func newResolveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print metadata for every configured image as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := a.transformer()
			if err != nil {
				return err
			}
			defer t.Close()

			data, err := t.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), data)
		},
	}
}

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>",
		Short: "Print metadata for one image as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			_, format, err := imaging.DecodeConfig(path)
			if err != nil {
				return err
			}

			t, err := a.transformer()
			if err != nil {
				return err
			}
			defer t.Close()

			m, err := t.Resolver().ResolveOne(cmd.Context(), path)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), &server.InspectResult{
				ID:       resolver.ID(path),
				Format:   format,
				Metadata: m,
			})
		},
	}
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := a.transformer()
			if err != nil {
				return err
			}
			defer t.Close()

			a.logger.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)
			srv := server.New(t, Version, a.logger)
			if err := srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "image-data %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
