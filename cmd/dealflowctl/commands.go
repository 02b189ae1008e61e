// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ManuGH/dealflow/internal/client"
	"github.com/ManuGH/dealflow/internal/form"
	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/tiering"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the saved configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			cfg, err := c.Fetch(cmd.Context())
			if errors.Is(err, client.ErrNoConfiguration) {
				_, _ = fmt.Fprintln(opts.stdout, "{}")
				return nil
			}
			if err != nil {
				return err
			}

			var out []byte
			if compact {
				out, err = json.Marshal(cfg)
			} else {
				out, err = json.MarshalIndent(cfg, "", "  ")
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(opts.stdout, string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print without indentation")
	return cmd
}

func newFieldsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List form field names with their current values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, f, err := opts.loadForm(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(opts.stdout, 0, 4, 2, ' ', 0)
			for _, c := range f.Controls() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Kind, c.Value())
			}
			return tw.Flush()
		},
	}
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit FILE",
		Short: "Submit a configuration document (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0], opts.stdin)
			if err != nil {
				return err
			}
			cfg, err := tiering.Decode(data)
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			return opts.submitter(c).Submit(cmd.Context(), form.Build(cfg))
		},
	}
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME=VALUE...",
		Short: "Edit form fields on top of the saved configuration and submit",
		Long: "set loads the saved configuration into the form, applies each NAME=VALUE\n" +
			"as if typed by a user and submits the result. Run 'fields' for names.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, f, err := opts.loadForm(cmd)
			if err != nil {
				return err
			}
			for _, arg := range args {
				name, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid assignment %q, want NAME=VALUE", arg)
				}
				if err := f.Edit(name, value); err != nil {
					return err
				}
			}
			return opts.submitter(c).Submit(cmd.Context(), f)
		},
	}
}

// loadForm builds the form prefilled with the saved configuration. A failed
// fetch yields a blank form.
func (o *rootOptions) loadForm(cmd *cobra.Command) (*client.Client, *form.Form, error) {
	c, err := o.client()
	if err != nil {
		return nil, nil, err
	}
	loader := client.Loader{Fetcher: c, Logger: log.WithComponent("dealflowctl")}
	return c, form.Build(loader.Load(cmd.Context())), nil
}

func (o *rootOptions) submitter(c *client.Client) *client.Submitter {
	return client.NewSubmitter(c, newTerminalNotifier(o.stderr), printNavigator(o.stdout), log.WithComponent("dealflowctl"))
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	// #nosec G304 -- the operator names the file on the command line
	return os.ReadFile(name)
}
