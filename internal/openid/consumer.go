// Package openid implements the OpenID consumer state machine: the
// two-phase login/process flow against external identity providers, the
// per-attempt correlation state, and the terminal token handoff.
package openid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/datanav/velruse/internal/domain"
	"github.com/datanav/velruse/internal/profile"
	"github.com/datanav/velruse/internal/repository"
	"github.com/datanav/velruse/internal/session"
	"github.com/datanav/velruse/internal/token"
)

// Config carries the consumer's protocol configuration.
type Config struct {
	// Realm is the relying-party identifier presented to providers.
	Realm string
	// EndpointRegex is the allow-pattern callback end points must match.
	EndpointRegex *regexp.Regexp
	// AttemptTTL bounds the life of an in-flight attempt record.
	AttemptTTL time.Duration
}

// Attempt is the ephemeral per-login protocol state, keyed by the caller's
// session id. It is created on login and consumed exactly once on process;
// the storage TTL cleans up abandoned redirects.
type Attempt struct {
	Identifier string          `json:"identifier"`
	ReturnTo   string          `json:"return_to"`
	State      json.RawMessage `json:"state,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// LoginInput starts an authentication attempt.
type LoginInput struct {
	SessionID  string
	Identifier string
	EndPoint   string
	// ReturnTo is the absolute URL of the process endpoint the provider
	// redirects back to.
	ReturnTo string
}

// LoginResult is either a plain redirect or, when the provider protocol step
// forbids redirects, an auto-submitting form.
type LoginResult struct {
	RedirectURL string
	FormHTML    string
}

// ProcessInput completes an attempt from the provider's callback request.
type ProcessInput struct {
	SessionID  string
	RequestURL string
	Params     url.Values
}

// ProcessResult carries the minted token and the end point to deliver it to.
type ProcessResult struct {
	Token    string
	EndPoint string
}

// Consumer orchestrates the OpenID login flow. Failures surface as
// *FlowError values carrying the categorized redirect code.
type Consumer interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Process(ctx context.Context, in ProcessInput) (*ProcessResult, error)
}

type consumer struct {
	rp       RelyingParty
	hooks    Hooks
	attempts repository.KeyValueStore
	sessions *session.Store
	tokens   *token.Exchange
	cfg      Config
	logger   *zap.Logger
}

// NewConsumer wires the consumer state machine over its collaborators.
// A nil hooks argument installs the default BaseHooks behavior.
func NewConsumer(
	rp RelyingParty,
	hooks Hooks,
	attempts repository.KeyValueStore,
	sessions *session.Store,
	tokens *token.Exchange,
	cfg Config,
	logger *zap.Logger,
) Consumer {
	if hooks == nil {
		hooks = BaseHooks{}
	}
	if cfg.AttemptTTL <= 0 {
		cfg.AttemptTTL = 5 * time.Minute
	}
	return &consumer{
		rp:       rp,
		hooks:    hooks,
		attempts: attempts,
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

func (c *consumer) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Identifier == "" || in.EndPoint == "" || !c.cfg.EndpointRegex.MatchString(in.EndPoint) {
		return nil, flowFail(CodeInvalidRequest, in.EndPoint, ErrInvalidRequest)
	}

	identifier := c.hooks.LookupIdentifier(ctx, in.Identifier)

	req := &AuthRequest{
		Identifier: identifier,
		ReturnTo:   in.ReturnTo,
		Realm:      c.cfg.Realm,
		Extensions: url.Values{},
	}
	c.hooks.UpdateAuthRequest(ctx, req)

	redirect, err := c.rp.AuthURL(ctx, req)
	if err != nil {
		c.log().Warn("openid discovery failed",
			zap.String("identifier", identifier), zap.Error(err))
		return nil, flowFail(CodeDiscovery, in.EndPoint, err)
	}

	// The end point lives in the caller's session, not in attempt storage,
	// so it survives independently of the attempt record.
	if err := c.sessions.Save(ctx, session.Session{ID: in.SessionID, EndPoint: in.EndPoint}); err != nil {
		return nil, flowFail(CodeDiscovery, in.EndPoint, fmt.Errorf("save session: %w", err))
	}

	attempt := Attempt{
		Identifier: identifier,
		ReturnTo:   in.ReturnTo,
		State:      redirect.State,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.attempts.Store(ctx, in.SessionID, attempt, c.cfg.AttemptTTL); err != nil {
		return nil, flowFail(CodeDiscovery, in.EndPoint, fmt.Errorf("store attempt: %w", err))
	}

	if redirect.SendRedirect {
		return &LoginResult{RedirectURL: redirect.URL}, nil
	}

	html, err := authRequestForm(redirect.URL)
	if err != nil {
		return nil, flowFail(CodeDiscovery, in.EndPoint, err)
	}
	return &LoginResult{FormHTML: html}, nil
}

func (c *consumer) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	sess, err := c.sessions.Find(ctx, in.SessionID)
	if err != nil {
		return nil, flowFail(CodeDiscovery, "", fmt.Errorf("load session: %w", err))
	}
	if sess == nil {
		return nil, flowFail(CodeDiscovery, "", ErrNoSession)
	}
	endPoint := sess.EndPoint

	// Atomic take: a duplicated provider redirect observes the attempt
	// already consumed and fails instead of minting a second token.
	var attempt Attempt
	found, err := c.attempts.Take(ctx, in.SessionID, &attempt)
	if err != nil {
		return nil, flowFail(CodeDiscovery, endPoint, fmt.Errorf("take attempt: %w", err))
	}
	if !found {
		return nil, flowFail(CodeDiscovery, endPoint, ErrNoAttempt)
	}

	completion, err := c.rp.Complete(ctx, in.RequestURL, in.Params, attempt.ReturnTo, attempt.State)
	if err != nil {
		return nil, flowFail(CodeHandshake, endPoint, fmt.Errorf("%w: %v", ErrHandshake, err))
	}

	switch completion.Status {
	case StatusSuccess:
		// continue below
	case StatusFailure, StatusCancel:
		return nil, flowFail(CodeHandshake, endPoint, ErrHandshake)
	default:
		return nil, flowFail(CodeDiscovery, endPoint, fmt.Errorf("unrecognized completion status %d", completion.Status))
	}

	identity := completion.Identity
	if completion.CanonicalID != "" {
		// The canonical id stays secure even if the claimed one is
		// compromised, so it wins when the provider supplies it.
		identity = completion.CanonicalID
	}

	prof := profile.Extract(identity, ParseSRegResponse(in.Params), ParseAXResponse(in.Params))
	result := domain.OKResult(prof, nil)

	if requestToken := ParseOAuthRequestToken(in.Params); requestToken != "" {
		credentials, err := c.hooks.AccessToken(ctx, requestToken)
		if err != nil {
			c.log().Warn("access token exchange failed", zap.Error(err))
		} else if len(credentials) > 0 {
			result.Credentials = credentials
		}
	}

	tok, err := c.tokens.Issue(ctx, result)
	if err != nil {
		return nil, flowFail(CodeDiscovery, endPoint, err)
	}

	c.log().Info("openid attempt completed",
		zap.String("provider", prof.ProviderName))

	return &ProcessResult{Token: tok, EndPoint: endPoint}, nil
}

func (c *consumer) log() *zap.Logger {
	if c != nil && c.logger != nil {
		return c.logger
	}
	return zap.L()
}
