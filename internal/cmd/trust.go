package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/daftmodel"
)

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Manage the trust database gating hook execution",
}

var trustAllowCmd = &cobra.Command{
	Use:   "allow [path]",
	Short: "Trust the repository at path (default: the current one) to run its hooks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTrust(cmd, args, daftmodel.TrustAllow)
	},
}

var trustDenyCmd = &cobra.Command{
	Use:   "deny [path]",
	Short: "Deny the repository at path (default: the current one) from running its hooks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTrust(cmd, args, daftmodel.TrustDeny)
	},
}

var trustForgetCmd = &cobra.Command{
	Use:   "forget [path]",
	Short: "Remove a repository's trust entry, reverting it to the default level",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx, verbose)
		if err != nil {
			return err
		}
		gitCommonDir, err := trustTargetDir(ctx, e, args)
		if err != nil {
			return err
		}
		e.trustDB.Remove(gitCommonDir)
		return e.trustDB.Save()
	},
}

var trustListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every trust decision on record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx, verbose)
		if err != nil {
			return err
		}
		snap := e.trustDB.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "default: %s\n", snap.DefaultLevel)
		for dir, entry := range snap.Repositories {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s (granted by %s)\n", entry.Level, dir, entry.GrantedBy)
		}
		return nil
	},
}

func setTrust(cmd *cobra.Command, args []string, level daftmodel.TrustLevel) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx, verbose)
	if err != nil {
		return err
	}
	gitCommonDir, err := trustTargetDir(ctx, e, args)
	if err != nil {
		return err
	}
	e.trustDB.Set(gitCommonDir, level, "daft trust", time.Now())
	return e.trustDB.Save()
}

func trustTargetDir(ctx context.Context, e *env, args []string) (string, error) {
	cwd, _ := os.Getwd()
	target := cwd
	if len(args) == 1 {
		target = args[0]
	}
	return e.facade.GitCommonDir(ctx, target)
}

func init() {
	trustCmd.AddCommand(trustAllowCmd, trustDenyCmd, trustForgetCmd, trustListCmd)
	rootCmd.AddCommand(trustCmd)
}
