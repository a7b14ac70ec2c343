package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/session-bridge/internal/auth"
	"github.com/spec-kit/session-bridge/internal/config"
	"github.com/spec-kit/session-bridge/internal/domain"
	"github.com/spec-kit/session-bridge/internal/events"
	"github.com/spec-kit/session-bridge/internal/observability"
	"github.com/spec-kit/session-bridge/internal/repository"
	"github.com/spec-kit/session-bridge/internal/retry"
	"github.com/spec-kit/session-bridge/internal/session"
	apperrors "github.com/spec-kit/session-bridge/pkg/util"
)

// errSessionNotVisible drives the verify fallback loop when the read-back
// comes up empty without a transport error.
var errSessionNotVisible = errors.New("session not visible after establish")

// PrimaryVerifier validates the primary (Auth.js) session token.
type PrimaryVerifier interface {
	Verify(tokenStr string) (*auth.PrimaryIdentity, error)
}

// TokenSigner mints and validates the platform token pair.
type TokenSigner interface {
	MintPair(subject, email string, role domain.Role) (*domain.TokenPair, error)
	ParseRefresh(tokenStr string) (*auth.RefreshClaims, error)
	AccessTTL() time.Duration
}

// BridgeInput carries the request-scoped inputs of one bridge attempt.
type BridgeInput struct {
	PrimaryToken string
	SessionRef   string
}

// BridgeDependencies encapsulates collaborator requirements for the bridge.
type BridgeDependencies struct {
	Verifier   PrimaryVerifier
	Signer     TokenSigner
	Identities repository.IdentityRepository
	Sessions   session.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// BridgeService converts a verified primary session into a live platform
// session: resolve-or-create the identity, mint tokens, establish the session
// with bounded retry, verify by read-back.
type BridgeService struct {
	verifier   PrimaryVerifier
	signer     TokenSigner
	identities repository.IdentityRepository
	sessions   session.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	establishAttempts int
	verifyAttempts    int
	baseDelay         time.Duration
}

// NewBridgeService builds the service.
func NewBridgeService(cfg config.BridgeConfig, deps BridgeDependencies) *BridgeService {
	establish := cfg.EstablishAttempts
	if establish <= 0 {
		establish = 3
	}
	verify := cfg.VerifyAttempts
	if verify <= 0 {
		verify = 2
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BridgeService{
		verifier:          deps.Verifier,
		signer:            deps.Signer,
		identities:        deps.Identities,
		sessions:          deps.Sessions,
		dispatcher:        deps.Dispatcher,
		metrics:           deps.Metrics,
		logger:            logger,
		establishAttempts: establish,
		verifyAttempts:    verify,
		baseDelay:         cfg.RetryBaseDelay(),
	}
}

// Bridge runs one bridge attempt. Unrecoverable failures return a DomainError
// carrying the stage-specific message; otherwise the result is tagged
// EXISTING, CONFIRMED or DEGRADED_SUCCESS.
func (s *BridgeService) Bridge(ctx context.Context, input BridgeInput) (*domain.BridgeResult, error) {
	primary, err := s.verifyPrimary(input.PrimaryToken)
	if err != nil {
		return nil, err
	}

	// Fast path: a live session short-circuits provisioning entirely.
	if input.SessionRef != "" {
		if existing, err := s.sessions.Get(ctx, input.SessionRef); err == nil && existing != nil &&
			strings.EqualFold(existing.Email, primary.Email) {
			s.recordOutcome("existing")
			return &domain.BridgeResult{
				State:    domain.BridgeStateExisting,
				Identity: &domain.Identity{ID: existing.UserID, Email: existing.Email},
				Session:  existing,
			}, nil
		}
	}

	identity, err := s.resolveIdentity(ctx, primary)
	if err != nil {
		s.recordOutcome("failed")
		return nil, err
	}

	pair, err := s.signer.MintPair(identity.ID, identity.Email, domain.RoleAuthenticated)
	if err != nil {
		s.recordOutcome("failed")
		if errors.Is(err, auth.ErrMissingSecret) {
			s.logger.Error("sign_tokens: secret not configured")
			return nil, apperrors.NewConfigError("JWT secret not configured")
		}
		s.logger.Error("sign_tokens: signing failed", zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	ref := input.SessionRef
	if ref == "" {
		ref = uuid.NewString()
	}
	sess := domain.Session{
		ID:           ref,
		UserID:       identity.ID,
		Email:        identity.Email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExpiresAt,
	}

	establishErr := retry.Do(ctx, func() error {
		return s.sessions.Set(ctx, sess)
	}, s.policy("establish_session", s.establishAttempts))

	verified := s.verifySession(ctx, &sess)
	if verified {
		s.recordOutcome("confirmed")
		return &domain.BridgeResult{
			State:    domain.BridgeStateConfirmed,
			Identity: identity,
			Tokens:   pair,
			Session:  &sess,
		}, nil
	}

	// Deliberate leniency: the identity is resolved and tokens are minted, so
	// a session-store hiccup degrades the outcome instead of failing the
	// primary-system login.
	s.logger.Warn("verify_session: session unconfirmed, returning degraded success",
		zap.String("identity_id", identity.ID),
		zap.Error(establishErr))
	s.recordOutcome("degraded")
	return &domain.BridgeResult{
		State:    domain.BridgeStateDegraded,
		Identity: identity,
		Tokens:   pair,
		Session:  &sess,
	}, nil
}

// Refresh exchanges a valid minted refresh token for a fresh pair. The
// identity must still exist.
func (s *BridgeService) Refresh(ctx context.Context, refreshToken string) (*domain.Identity, *domain.TokenPair, error) {
	claims, err := s.signer.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			return nil, nil, apperrors.NewConfigError("JWT secret not configured")
		}
		return nil, nil, apperrors.NewUnauthenticated("invalid refresh token")
	}

	identity, err := s.identities.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthenticated("unknown identity")
		}
		s.logger.Error("refresh: identity lookup failed", zap.Error(err))
		return nil, nil, apperrors.NewProvisioningError("failed to look up platform identity", err)
	}

	pair, err := s.signer.MintPair(identity.ID, identity.Email, claims.Role)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			return nil, nil, apperrors.NewConfigError("JWT secret not configured")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	return identity, pair, nil
}

func (s *BridgeService) verifyPrimary(tokenStr string) (*auth.PrimaryIdentity, error) {
	primary, err := s.verifier.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			s.logger.Error("verify_primary: secret not configured")
			return nil, apperrors.NewConfigError("Auth.js secret not configured")
		}
		s.logger.Warn("verify_primary: token rejected", zap.Error(err))
		return nil, apperrors.NewUnauthenticated("No Auth.js session found")
	}
	if primary == nil {
		return nil, apperrors.NewUnauthenticated("No Auth.js session found")
	}
	if primary.Email == "" {
		return nil, apperrors.NewInvalidIdentity("Auth.js session has no email")
	}
	return primary, nil
}

// resolveIdentity finds the identity for the email or creates it. Idempotent
// by email; a lost create race falls back to a second lookup.
func (s *BridgeService) resolveIdentity(ctx context.Context, primary *auth.PrimaryIdentity) (*domain.Identity, error) {
	identity, err := s.identities.GetByEmail(ctx, primary.Email)
	if err == nil {
		s.refreshMetadata(ctx, identity, primary)
		return identity, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error("lookup_identity: lookup failed", zap.Error(err))
		return nil, apperrors.NewProvisioningError("failed to look up platform identity", err)
	}

	identity = &domain.Identity{
		Email:          primary.Email,
		Name:           primary.Name,
		AvatarURL:      primary.Picture,
		Provider:       domain.ProviderAuthJS,
		EmailConfirmed: true,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			existing, lookupErr := s.identities.GetByEmail(ctx, primary.Email)
			if lookupErr != nil {
				s.logger.Error("create_identity: lost race and re-lookup failed", zap.Error(lookupErr))
				return nil, apperrors.NewProvisioningError("failed to look up platform identity", lookupErr)
			}
			return existing, nil
		}
		s.logger.Error("create_identity: create failed", zap.Error(err))
		return nil, apperrors.NewProvisioningError("failed to create platform identity", err)
	}

	s.publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventIdentityCreated,
		IdentityID: identity.ID,
		Timestamp:  time.Now(),
		Payload: events.IdentityCreatedPayload{
			Email:    identity.Email,
			Name:     identity.Name,
			Provider: identity.Provider,
		},
	})
	return identity, nil
}

// refreshMetadata opportunistically syncs name/avatar from the primary token.
// Failure is non-fatal.
func (s *BridgeService) refreshMetadata(ctx context.Context, identity *domain.Identity, primary *auth.PrimaryIdentity) {
	name := primary.Name
	if name == "" {
		name = identity.Name
	}
	avatar := primary.Picture
	if avatar == "" {
		avatar = identity.AvatarURL
	}
	if name == identity.Name && avatar == identity.AvatarURL {
		return
	}

	if err := s.identities.UpdateMetadata(ctx, identity.ID, name, avatar); err != nil {
		s.logger.Warn("lookup_identity: metadata refresh failed", zap.Error(err))
		return
	}
	identity.Name = name
	identity.AvatarURL = avatar

	s.publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventIdentityRefreshed,
		IdentityID: identity.ID,
		Timestamp:  time.Now(),
		Payload:    events.IdentityRefreshedPayload{Email: identity.Email, Name: identity.Name},
	})
}

// verifySession reads the session back. When the read-back comes up empty it
// re-establishes and re-verifies inside a second bounded loop.
func (s *BridgeService) verifySession(ctx context.Context, sess *domain.Session) bool {
	if got, err := s.sessions.Get(ctx, sess.ID); err == nil && got != nil {
		return true
	}

	err := retry.Do(ctx, func() error {
		if err := s.sessions.Set(ctx, *sess); err != nil {
			return err
		}
		got, err := s.sessions.Get(ctx, sess.ID)
		if err != nil {
			return err
		}
		if got == nil {
			return errSessionNotVisible
		}
		return nil
	}, s.policy("verify_session", s.verifyAttempts))

	return err == nil
}

func (s *BridgeService) policy(name string, attempts int) retry.Policy {
	return retry.Policy{
		Name:     name,
		Attempts: attempts,
		Backoff:  retry.Exponential{Base: s.baseDelay},
		OnAttempt: func(attempt int, err error) {
			s.logger.Warn(name+": attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
		},
		OnExhaust: func(lastErr error) {
			s.logger.Error(name+": retries exhausted", zap.Error(lastErr))
		},
	}
}

func (s *BridgeService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (s *BridgeService) recordOutcome(outcome string) {
	s.metrics.RecordBridgeOutcome(outcome)
}
