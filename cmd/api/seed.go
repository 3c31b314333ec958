package main

import (
	"fmt"

	bankDomain "fivebells/internal/domain/bank"
	"fivebells/internal/domain/ledger"
	"fivebells/internal/infrastructure/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedName    string
	seedBanks   int
	seedPeople  int
	seedCapital int64
	seedCash    int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo world with a central bank, customer banks and people",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()
		if err := db.Migrate(a.db); err != nil {
			return err
		}

		w, err := a.worlds.Create(ctx, seedName, 1)
		if err != nil {
			return err
		}
		if _, err := a.bank.CreateBank(ctx, w.ID, "central", bankDomain.KindCentral); err != nil {
			return err
		}
		person := uint64(0)
		for i := 1; i <= seedBanks; i++ {
			b, err := a.bank.CreateBank(ctx, w.ID, fmt.Sprintf("bank%d", i), bankDomain.KindCustomer)
			if err != nil {
				return err
			}
			if seedCapital > 0 {
				if _, err := a.bank.DepositCapital(ctx, b.ID, seedCapital); err != nil {
					return err
				}
			}
			for j := 0; j < seedPeople; j++ {
				person++
				acc, err := a.bank.OpenDepositAccount(ctx, b.ID, ledger.PersonOwner(person))
				if err != nil {
					return err
				}
				if seedCash > 0 {
					if _, err := a.bank.DepositCash(ctx, b.ID, acc.ID, seedCash); err != nil {
						return err
					}
				}
			}
		}
		logger.Info("world seeded", zap.Uint64("world_id", w.ID), zap.Int("banks", seedBanks), zap.Uint64("people", person))
		return printJSON(cmd, w)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedName, "name", "demo", "world name")
	seedCmd.Flags().IntVar(&seedBanks, "banks", 2, "customer banks")
	seedCmd.Flags().IntVar(&seedPeople, "people", 3, "people per bank")
	seedCmd.Flags().Int64Var(&seedCapital, "capital", 10000, "capital per bank")
	seedCmd.Flags().Int64Var(&seedCash, "cash", 500, "cash deposit per person")
}
