package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/userstore/internal/users"
	"github.com/saltyorg/userstore/internal/watch"
)

func newMigrateCmd(a *app) *cobra.Command {
	var noSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the users table and insert the seed users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if noSeed {
				if err := db.CreateTable(ctx); err != nil {
					return err
				}
				log.Info().Msg("Users table ready")
				return nil
			}

			seeded, err := users.Seed(ctx, db)
			if err != nil {
				return err
			}
			for _, u := range seeded {
				log.Info().Int64("id", u.ID).Str("name", u.Name).Int("age", u.Age).Msg("Seeded user")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "Only create the users table")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var watchChanges bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			db, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := printUsers(ctx, out, db); err != nil {
				return err
			}
			if !watchChanges {
				return nil
			}
			if db.Path() == ":memory:" {
				return fmt.Errorf("cannot watch an in-memory database")
			}

			changes := make(chan struct{}, 1)
			w, err := watch.New(db.Path(), a.cfg.Timeouts.WatchDebounce, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer w.Stop()
			if err := w.Start(); err != nil {
				return err
			}

			log.Info().Str("path", db.Path()).Msg("Watching for changes")

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-changes:
					fmt.Fprintln(out)
					if err := printUsers(ctx, out, db); err != nil {
						if ctx.Err() != nil {
							return nil
						}
						return err
					}
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watchChanges, "watch", "w", false, "Reprint the list whenever the database changes")
	return cmd
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find [id]",
		Short: "Print one user by id (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := int64(1)
			if len(args) == 1 {
				parsed, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid user id %q: %w", args[0], err)
				}
				id = parsed
			}

			ctx := cmd.Context()
			db, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := db.Find(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <age>",
		Short: "Insert a user and print it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid age %q: %w", args[1], err)
			}

			ctx := cmd.Context()
			db, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.CreateTable(ctx); err != nil {
				return err
			}

			u, err := db.Insert(ctx, users.NewUser(args[0], age))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func printUsers(ctx context.Context, out io.Writer, store users.Store) error {
	all, err := store.All(ctx)
	if err != nil {
		return err
	}
	for _, u := range all {
		fmt.Fprintln(out, u)
	}
	return nil
}
