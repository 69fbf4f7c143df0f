package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/runguard/application/schema"
)

var version = "dev"

// cliEnv is the process surroundings a command runs in.
type cliEnv struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	getenv  func(string) string
	environ []string
	exit    func(int)
}

func defaultEnv() cliEnv {
	return cliEnv{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		getenv:  os.Getenv,
		environ: os.Environ(),
		exit:    os.Exit,
	}
}

func newRootCmd(env cliEnv) *cobra.Command {
	root := &cobra.Command{
		Use:           "runguard",
		Short:         "Run a WebAssembly program behind a capability gate",
		Long:          "runguard runs a WASI program and checks every environment, network, filesystem and subprocess access against granted capabilities, prompting for anything not granted.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(env.stdin)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	root.AddCommand(newRunCmd(env))
	root.AddCommand(newSchemaCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version of runguard",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "runguard %s\n", version)
		},
	})
	return root
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of grants files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schema.GrantsSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
