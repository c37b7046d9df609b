package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tierledger/settle/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration",
		// Config commands must work before any backend is reachable.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.resolve(a.cfgFile)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigInitCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "datadir:           %s\n", c.DataDir)
			fmt.Fprintf(out, "backend:           %s\n", c.Backend)
			fmt.Fprintf(out, "firestore-project: %s\n", c.FirestoreProject)
			fmt.Fprintf(out, "loglevel:          %s\n", c.LogLevel)
			fmt.Fprintf(out, "logfile:           %s\n", c.LogFile)
			fmt.Fprintf(out, "tolerance:         %g\n", c.Tolerance)
			return nil
		},
	}
}

func newConfigInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfgFile
			if path == "" {
				path = config.ConfigPath(a.cfg.DataDir)
			}
			if err := config.SaveConfig(path, a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
