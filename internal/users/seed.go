package users

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// SeedUsers are inserted by Seed, in order.
var SeedUsers = []User{
	{Name: "Adele Goldberg", Age: 62},
	{Name: "Alan Kay", Age: 65},
}

// Seed creates the users table and inserts SeedUsers.
// It stops at the first failure.
func Seed(ctx context.Context, store Store) ([]*User, error) {
	log.Info().Msg("Running migration for users")
	if err := store.CreateTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}
	log.Info().Msg("Migration done")

	seeded := make([]*User, 0, len(SeedUsers))
	for _, s := range SeedUsers {
		u, err := store.Insert(ctx, NewUser(s.Name, s.Age))
		if err != nil {
			return seeded, fmt.Errorf("failed to seed user %q: %w", s.Name, err)
		}
		seeded = append(seeded, u)
	}
	return seeded, nil
}
