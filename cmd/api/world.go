package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var worldID uint64

var worldCmd = &cobra.Command{
	Use:   "world",
	Short: "Inspect and drive worlds",
}

var worldEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Advance a world by its step size",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()
		if _, err := a.populateWorld(cmd.Context(), worldID); err != nil {
			return err
		}
		w, err := a.worlds.Evaluate(cmd.Context(), worldID)
		if err != nil {
			return err
		}
		logger.Info("world advanced", zap.Uint64("world_id", w.ID), zap.Int64("cycle", w.CurrentCycle))
		return printJSON(cmd, w)
	},
}

var worldResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Clear the halt flag of a world",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()
		w, err := a.worlds.Resume(cmd.Context(), worldID)
		if err != nil {
			return err
		}
		return printJSON(cmd, w)
	},
}

var worldListCmd = &cobra.Command{
	Use:   "list",
	Short: "List worlds",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()
		ws, err := a.worlds.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, ws)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func init() {
	for _, c := range []*cobra.Command{worldEvaluateCmd, worldResumeCmd} {
		c.Flags().Uint64Var(&worldID, "world", 0, "world id")
		_ = c.MarkFlagRequired("world")
	}
	worldCmd.AddCommand(worldEvaluateCmd, worldResumeCmd, worldListCmd)
}
