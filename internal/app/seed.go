package app

import (
	"context"
	"fmt"
	"time"

	"convoke/internal/domain"
)

// seedDemoData loads a small set of sample users and events for local
// development. Both accounts use the password "password123".
func seedDemoData(ctx context.Context, r *repos, hasher domain.PasswordHasher, clock domain.Clock) error {
	now := clock.Now()

	organizer, err := seedUser(ctx, r, hasher, "ana@example.com", "Ana Torres", now)
	if err != nil {
		return err
	}
	guest, err := seedUser(ctx, r, hasher, "bruno@example.com", "Bruno Diaz", now)
	if err != nil {
		return err
	}

	description := "Monthly meetup for backend engineers."
	public := domain.NewEvent("Backend Meetup Lima", organizer.ID, "Lima", now.Add(72*time.Hour), 50, domain.PrivacyPublic, now)
	public.Description = &description
	if err := r.events.Create(ctx, public); err != nil {
		return fmt.Errorf("create public event: %w", err)
	}

	private := domain.NewEvent("Organizers Dinner", organizer.ID, "Lima", now.Add(96*time.Hour), 10, domain.PrivacyPrivate, now)
	if err := r.events.Create(ctx, private); err != nil {
		return fmt.Errorf("create private event: %w", err)
	}

	inv := &domain.Invitation{
		EventID:   private.ID,
		Email:     guest.Email,
		Status:    domain.InvitationPending,
		CreatedAt: now,
	}
	if err := r.invitations.Create(ctx, inv); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}

	return nil
}

func seedUser(ctx context.Context, r *repos, hasher domain.PasswordHasher, email, name string, now time.Time) (*domain.User, error) {
	salt, err := hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := hasher.Hash(salt, "password123")
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := domain.NewUser(email, name, hash, salt, now)
	user.Active = true
	if err := r.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return user, nil
}
