// Package users is the player directory: registration, login tokens and profile updates.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/matchboard/internal/dependencies/clock"
	"github.com/mcoot/matchboard/internal/dependencies/random"
	"github.com/mcoot/matchboard/internal/metrics"
	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/storage"
)

// Session is the result of a successful login
type Session struct {
	Token  string
	Player *model.Player
}

// UpdateRequest carries the fields to change. Nil fields are left as they are.
// ID, when non-zero, must match the player being updated.
type UpdateRequest struct {
	ID       model.PlayerID
	Username *string
	Password *string
	Name     *string
	Surname  *string
}

// Config holds configuration for the users service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default users configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service manages player records
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	metrics metrics.Recorder
	cost    int
}

// New creates a new users Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	recorder metrics.Recorder,
	cfg Config,
) *Service {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
		metrics: recorder,
		cost:    cfg.BcryptCost,
	}
}

// Register creates a player and returns its public view.
// A failed write after the id was assigned leaves a gap in the id sequence.
func (s *Service) Register(ctx context.Context, username, password, name, surname string) (*model.Player, error) {
	if username == "" || password == "" {
		return nil, model.ErrMissingParameters
	}

	if err := s.checkUsernameFree(ctx, username); err != nil {
		return nil, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	id, err := s.storage.NextPlayerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("assigning player id: %w", err)
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:        id,
		Username:  username,
		Password:  hash,
		Name:      name,
		Surname:   surname,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, model.ErrUsernameExists) {
			return nil, err
		}
		return nil, fmt.Errorf("saving player %d: %w", id, err)
	}

	s.metrics.RecordRegistration()
	s.logger.Info("player registered", slog.Int64("player_id", int64(id)), slog.String("username", username))

	return player.Public(), nil
}

// Login checks the credentials and issues a new token
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	session, err := s.login(ctx, username, password)
	s.metrics.RecordLogin(err == nil)
	return session, err
}

func (s *Service) login(ctx context.Context, username, password string) (*Session, error) {
	id, err := s.storage.GetPlayerIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrUserDataNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.Password), hashInput(password)); err != nil {
		return nil, model.ErrInvalidPassword
	}

	token := s.random.Token()
	if err := s.storage.SaveToken(ctx, token, id); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}

	return &Session{
		Token:  token,
		Player: player.Public(),
	}, nil
}

// Update applies the non-nil fields of req to the player and returns the public view
func (s *Service) Update(ctx context.Context, id model.PlayerID, req UpdateRequest) (*model.Player, error) {
	if id < 1 || (req.ID != 0 && req.ID != id) {
		return nil, model.ErrInvalidID
	}

	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	previousUsername := player.Username

	if req.Username != nil {
		if *req.Username == "" {
			return nil, model.ErrMissingParameters
		}
		if *req.Username != previousUsername {
			if err := s.checkUsernameFree(ctx, *req.Username); err != nil {
				return nil, err
			}
		}
		player.Username = *req.Username
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, model.ErrMissingParameters
		}
		hash, err := s.hash(*req.Password)
		if err != nil {
			return nil, err
		}
		player.Password = hash
	}
	if req.Name != nil {
		player.Name = *req.Name
	}
	if req.Surname != nil {
		player.Surname = *req.Surname
	}
	player.UpdatedAt = s.clock.Now()

	if err := s.storage.UpdatePlayer(ctx, player, previousUsername); err != nil {
		if errors.Is(err, model.ErrUsernameExists) {
			return nil, err
		}
		return nil, fmt.Errorf("updating player %d: %w", id, err)
	}

	return player.Public(), nil
}

// Details returns the public view of a player
func (s *Service) Details(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	return player.Public(), nil
}

// Resolve returns the player a token was issued to
func (s *Service) Resolve(ctx context.Context, token string) (model.PlayerID, error) {
	if token == "" {
		return 0, model.ErrTokenNotFound
	}
	return s.storage.GetTokenPlayerID(ctx, token)
}

func (s *Service) checkUsernameFree(ctx context.Context, username string) error {
	_, err := s.storage.GetPlayerIDByUsername(ctx, username)
	switch {
	case err == nil:
		return model.ErrUsernameExists
	case errors.Is(err, model.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(hashInput(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// maxHashInput is the most bytes bcrypt reads from a password
const maxHashInput = 72

// hashInput cuts a password to what bcrypt reads; longer passwords are
// accepted and compared on their first 72 bytes
func hashInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxHashInput {
		b = b[:maxHashInput]
	}
	return b
}
