package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/user-directory/internal/domain"
)

// DefaultUser is the record a fresh in-memory directory starts with.
func DefaultUser() domain.User {
	return domain.User{
		ID:        uuid.New(),
		FirstName: "Joe",
		LastName:  "Jones",
		Gender:    domain.GenderMale,
		Age:       22,
		Email:     "joe.jones@gmail.com",
	}
}

func sampleUsers() []UserInput {
	return []UserInput{
		{FirstName: "Ricardo", LastName: "Silva", Gender: domain.GenderMale, Age: intPtr(67), Email: "ricardo.silva@hotmail.com"},
		{FirstName: "Tiara", LastName: "Jupiter", Gender: domain.GenderFemale, Age: intPtr(20), Email: "tiara.jupiter@gmail.com"},
		{FirstName: "Carol", LastName: "Jacob", Gender: domain.GenderFemale, Age: intPtr(20), Email: "carol.jacob@gmail.com"},
		{FirstName: "Anna", LastName: "Montana", Gender: domain.GenderFemale, Age: intPtr(40), Email: "anna.montana@gmail.com"},
	}
}

// SeedSampleUsers creates a fixed set of demo users and returns the full listing.
func (d *UserDirectory) SeedSampleUsers(ctx context.Context) ([]domain.User, error) {
	for _, input := range sampleUsers() {
		if _, err := d.CreateUser(ctx, input); err != nil {
			return nil, err
		}
	}
	return d.ListUsers(ctx, UserFilter{})
}

func intPtr(v int) *int {
	return &v
}
