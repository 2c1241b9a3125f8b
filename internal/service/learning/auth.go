package learning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/session"
)

// Login signs in with the mock profile under the given email. Enrollment and
// cached content are kept.
func (s *Session) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user := domain.MockUser(in.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveUser(ctx, s.id, &user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.state.User = &user

	s.log.InfoContext(ctx, "user logged in",
		slog.String("session_id", s.id.String()),
		slog.String("user_id", user.ID),
	)

	out := user
	return &out, nil
}

// Signup creates a fresh user and resets enrollment and cached content.
func (s *Session) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.Name = domain.NormalizeName(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user := domain.NewUser(in.Name, in.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(ctx, s.id, user); err != nil {
		return nil, fmt.Errorf("reset session: %w", err)
	}
	s.state = session.State{
		User:     &user,
		Cache:    domain.CourseCache{},
		Progress: domain.CourseProgress{},
	}
	s.epoch++
	s.days = nil

	s.log.InfoContext(ctx, "user signed up",
		slog.String("session_id", s.id.String()),
		slog.String("user_id", user.ID),
	)

	out := user
	return &out, nil
}

// Logout clears the user and wipes the whole persisted record.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx, s.id); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.state = session.EmptyState()
	s.epoch++
	s.days = nil

	s.log.InfoContext(ctx, "user logged out", slog.String("session_id", s.id.String()))
	return nil
}

// UpdateUserAvatar replaces the avatar URL. It is a no-op when logged out.
func (s *Session) UpdateUserAvatar(ctx context.Context, in AvatarInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.User == nil {
		return nil, nil
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updated := s.state.User.WithAvatar(in.URL)
	if err := s.store.SaveUser(ctx, s.id, &updated); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.state.User = &updated

	out := updated
	return &out, nil
}
