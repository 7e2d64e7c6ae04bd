package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pyjs/internal/prof"
)

func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	var err error
	if cfg.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return err
	}
	if cfg.Mem, err = flags.GetString("mem-profile"); err != nil {
		return err
	}
	if cfg.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return err
	}
	if !cfg.Enabled() {
		return nil
	}
	session, err := prof.Start(cfg)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	})
	return nil
}
