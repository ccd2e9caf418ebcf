// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/tomtom215/moodtune/internal/app"
	"github.com/tomtom215/moodtune/internal/users"
)

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts in the configured store",
	}
	cmd.AddCommand(c.userAddCmd(), c.userSeedCmd(), c.hashPasswordCmd())
	return cmd
}

// withAccounts opens the configured stores for the duration of fn.
func (c *cli) withAccounts(fn func(*users.Service) error) (err error) {
	stores, err := app.OpenStores(&c.cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stores.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()

	svc, err := users.NewService(stores.Users, users.DefaultBcryptCost)
	if err != nil {
		return err
	}
	return fn(svc)
}

func (c *cli) userAddCmd() *cobra.Command {
	var reg users.Registration
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg.Username = args[0]
			return c.withAccounts(func(svc *users.Service) error {
				p, err := svc.Register(cmd.Context(), reg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", p.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reg.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&reg.Gender, "gender", "", "Gender")
	cmd.Flags().StringVar(&reg.Age, "age", "", "Age")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) userSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the configured default account if the store is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAccounts(func(svc *users.Service) error {
				created, err := svc.EnsureSeed(cmd.Context(), c.cfg.Seed)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", c.cfg.Seed.Username)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "store already has accounts, nothing to do")
				}
				return nil
			})
		},
	}
}

func (c *cli) hashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash the user store would keep for a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := users.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", users.DefaultBcryptCost, "bcrypt cost")
	return cmd
}
