// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/dealflow/internal/client"
	"github.com/ManuGH/dealflow/internal/config"
	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/version"
)

// EnvServer sets the default --server.
const EnvServer = "DEALFLOW_SERVER"

const defaultServer = "http://127.0.0.1:8000"

type rootOptions struct {
	server     string
	timeout    time.Duration
	cookieName string
	logLevel   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "dealflowctl",
		Short:         "Read and edit the tiering configuration",
		Long:          "dealflowctl talks to a running dealflowd through its configuration endpoints.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Configure(log.Config{
				Level:   opts.logLevel,
				Output:  opts.stderr,
				Service: "dealflowctl",
				Version: version.Version,
			})
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", config.ParseString(EnvServer, defaultServer), "base URL of the dealflow server")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	flags.StringVar(&opts.cookieName, "cookie-name", client.DefaultCookieName, "name of the CSRF cookie")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	cmd.AddCommand(
		newGetCmd(opts),
		newFieldsCmd(opts),
		newSubmitCmd(opts),
		newSetCmd(opts),
	)
	return cmd
}

func (o *rootOptions) client() (*client.Client, error) {
	logger := log.WithComponent("dealflowctl")
	return client.New(client.Options{
		BaseURL:    o.server,
		Timeout:    o.timeout,
		CookieName: o.cookieName,
		Logger:     &logger,
	})
}
