package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datanav/velruse/internal/domain"
	"github.com/datanav/velruse/internal/openid"
	"github.com/datanav/velruse/internal/session"
	"github.com/datanav/velruse/internal/token"
)

// AuthHandler exposes the OpenID broker flow over HTTP: login initiation,
// the provider callback, and the one-time token exchange.
type AuthHandler struct {
	OpenID openid.Consumer
	Tokens *token.Exchange

	cookieOpts session.CookieOptions
	logger     *zap.Logger
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(consumer openid.Consumer, tokens *token.Exchange, cookieOpts session.CookieOptions, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		OpenID:     consumer,
		Tokens:     tokens,
		cookieOpts: cookieOpts,
		logger:     logger,
	}
}

// Login starts an authentication attempt against the configured provider.
// Form fields: end_point (required, validated) and openid_identifier.
func (h *AuthHandler) Login(c *gin.Context) {
	sessionID := session.IDFromRequest(c.Request)
	if sessionID == "" {
		id, err := session.GenerateID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not establish a session."})
			return
		}
		sessionID = id
	}
	// Reissue on every login so the cookie outlives the redirect round trip.
	session.SetCookie(c.Writer, sessionID, h.cookieOpts)

	result, err := h.OpenID.Login(c.Request.Context(), openid.LoginInput{
		SessionID:  sessionID,
		Identifier: strings.TrimSpace(c.PostForm("openid_identifier")),
		EndPoint:   strings.TrimSpace(c.PostForm("end_point")),
		ReturnTo:   h.processURL(c),
	})
	if err != nil {
		h.redirectFlowError(c, err)
		return
	}

	if result.RedirectURL != "" {
		c.Redirect(http.StatusFound, result.RedirectURL)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.FormHTML))
}

// Process handles the incoming redirect from the OpenID provider and
// delivers the minted token to the caller's end point.
func (h *AuthHandler) Process(c *gin.Context) {
	sessionID := session.IDFromRequest(c.Request)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "No session cookie present."})
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Malformed callback parameters."})
		return
	}

	result, err := h.OpenID.Process(c.Request.Context(), openid.ProcessInput{
		SessionID:  sessionID,
		RequestURL: h.requestURL(c),
		Params:     c.Request.Form,
	})
	if err != nil {
		h.redirectFlowError(c, err)
		return
	}

	html, err := openid.RedirectForm(result.EndPoint, result.Token)
	if err != nil {
		h.log().Error("render redirect form", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Redeem exchanges a minted token for its stored result envelope, at most
// once.
func (h *AuthHandler) Redeem(c *gin.Context) {
	tok := strings.TrimSpace(c.Param("token"))
	if tok == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "token is required."})
		return
	}
	result, err := h.Tokens.Redeem(c.Request.Context(), tok)
	if err != nil {
		h.log().Error("token redeem failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid_token", "error_description": "Token is unknown, expired, or already used."})
		return
	}
	c.JSON(http.StatusOK, result)
}

// redirectFlowError sends the categorized error code back to the caller's
// end point. Provider-internal detail stays in the logs.
func (h *AuthHandler) redirectFlowError(c *gin.Context, err error) {
	var flowErr *openid.FlowError
	if !errors.As(err, &flowErr) {
		h.log().Error("openid flow failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
		return
	}

	h.log().Warn("openid flow error",
		zap.Int("code", flowErr.Code),
		zap.Error(flowErr))

	if flowErr.EndPoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "No end point recorded for this session."})
		return
	}

	redirect, err := url.Parse(flowErr.EndPoint)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "end_point is not a valid URL."})
		return
	}
	q := redirect.Query()
	q.Set("error", fmt.Sprintf("%d", flowErr.Code))
	q.Set("end_point", flowErr.EndPoint)
	// A failure envelope is stored too, so the caller redeems a uniform
	// result shape on either outcome.
	if tok, issueErr := h.Tokens.Issue(c.Request.Context(), domain.FailedResult(flowErr.Code)); issueErr == nil {
		q.Set("token", tok)
	} else {
		h.log().Warn("store failure envelope", zap.Error(issueErr))
	}
	redirect.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, redirect.String())
}

// processURL is the absolute callback URL providers redirect back to.
func (h *AuthHandler) processURL(c *gin.Context) string {
	return fmt.Sprintf("%s://%s/auth/openid/process", schemeOnly(c.Request), c.Request.Host)
}

// requestURL reconstructs the full URL of the current request for signature
// verification.
func (h *AuthHandler) requestURL(c *gin.Context) string {
	u := *c.Request.URL
	u.Scheme = schemeOnly(c.Request)
	u.Host = c.Request.Host
	return u.String()
}

func (h *AuthHandler) log() *zap.Logger {
	if h != nil && h.logger != nil {
		return h.logger
	}
	return zap.L()
}

func schemeOnly(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme
}
