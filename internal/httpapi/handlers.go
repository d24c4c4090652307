// Package httpapi serves the voting operations over HTTP with gin.
package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/godilite/voting-tool/internal/domain"
	"github.com/godilite/voting-tool/internal/export"
	"github.com/godilite/voting-tool/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionCookie names the cookie holding the session id.
const SessionCookie = "voting_session"

type Handlers struct {
	votings      VotingService
	sessions     SessionStore
	logger       *zap.Logger
	sessionTTL   time.Duration
	secureCookie bool
}

// NewHandlers wires the HTTP handlers. sessionTTL bounds the session cookie
// lifetime.
func NewHandlers(votings VotingService, sessions SessionStore, logger *zap.Logger, sessionTTL time.Duration, secureCookie bool) *Handlers {
	if votings == nil {
		panic("nil VotingService provided to NewHandlers")
	}
	if sessions == nil {
		panic("nil SessionStore provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		votings:      votings,
		sessions:     sessions,
		logger:       logger.Named("http-handler"),
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
	}
}

type nameRequest struct {
	Name string `json:"name" form:"name"`
}

type ballotRequest struct {
	Voter string   `json:"voter" form:"voter"`
	Items []string `json:"items" form:"items"`
}

// sessionID returns the caller's session id, issuing a new cookie when
// create is set and the request carries none.
func (h *Handlers) sessionID(c *gin.Context, create bool) (string, bool) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id, true
		}
	}
	if !create {
		return "", false
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(h.sessionTTL.Seconds()), "/", "", h.secureCookie, true)
	return id, true
}

// voting resolves the target voting from the path, or from the session on
// /session routes.
func (h *Handlers) voting(c *gin.Context) (string, error) {
	if name := c.Param("name"); name != "" {
		return name, nil
	}
	id, ok := h.sessionID(c, false)
	if !ok {
		return "", session.ErrNoSelection
	}
	return h.sessions.Active(c.Request.Context(), id)
}

// fail writes the error response. A session whose voting has disappeared
// loses its selection so the client is prompted to pick again.
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	if c.Param("name") == "" && errors.Is(err, domain.ErrNotFound) {
		if id, ok := h.sessionID(c, false); ok {
			if ferr := h.sessions.Forget(c.Request.Context(), id); ferr != nil {
				h.logger.Warn("failed to clear stale session", zap.Error(ferr))
			}
		}
	}
	h.writeError(c, op, err)
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) ListVotings(c *gin.Context) {
	names, err := h.votings.ListVotings(c.Request.Context())
	if err != nil {
		h.fail(c, "list votings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votings": names})
}

func (h *Handlers) CreateVoting(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, "create voting", fmt.Errorf("%w: %v", domain.ErrInvalidName, err))
		return
	}

	name, err := h.votings.CreateVoting(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, "create voting", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"voting": name})
}

func (h *Handlers) ResetVoting(c *gin.Context) {
	voting, err := h.voting(c)
	if err != nil {
		h.fail(c, "reset voting", err)
		return
	}
	if err := h.votings.ClearVoting(c.Request.Context(), voting); err != nil {
		h.fail(c, "reset voting", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) DeleteVoting(c *gin.Context) {
	voting, err := h.voting(c)
	if err != nil {
		h.fail(c, "delete voting", err)
		return
	}
	if err := h.votings.DeleteVoting(c.Request.Context(), voting); err != nil {
		h.fail(c, "delete voting", err)
		return
	}

	if c.Param("name") == "" {
		if id, ok := h.sessionID(c, false); ok {
			if err := h.sessions.Forget(c.Request.Context(), id); err != nil {
				h.logger.Warn("failed to clear session after delete", zap.Error(err))
			}
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) SubmitBallot(c *gin.Context) {
	voting, err := h.voting(c)
	if err != nil {
		h.fail(c, "submit ballot", err)
		return
	}

	var req ballotRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, "submit ballot", fmt.Errorf("%w: %v", domain.ErrInvalidSubmission, err))
		return
	}

	sub, err := h.votings.Submit(c.Request.Context(), voting, req.Voter, req.Items)
	if err != nil {
		h.fail(c, "submit ballot", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"voting": voting, "submission": sub})
}

func (h *Handlers) ListBallots(c *gin.Context) {
	voting, err := h.voting(c)
	if err != nil {
		h.fail(c, "list ballots", err)
		return
	}

	subs, err := h.votings.Submissions(c.Request.Context(), voting)
	if err != nil {
		h.fail(c, "list ballots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voting": voting, "submissions": subs})
}

func (h *Handlers) Ranking(c *gin.Context) {
	voting, err := h.voting(c)
	if err != nil {
		h.fail(c, "ranking", err)
		return
	}

	entries, err := h.votings.Ranking(c.Request.Context(), voting)
	if err != nil {
		h.fail(c, "ranking", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voting": voting, "entries": entries})
}

func (h *Handlers) ExportRanking(c *gin.Context) {
	voting, err := h.voting(c)
	if err != nil {
		h.fail(c, "export ranking", err)
		return
	}

	entries, err := h.votings.Ranking(c.Request.Context(), voting)
	if err != nil {
		h.fail(c, "export ranking", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRanking(&buf, entries); err != nil {
		h.fail(c, "export ranking", err)
		return
	}

	// Non-ASCII names are sent as an RFC 2231 filename* parameter.
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.FileName(voting),
	}))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// SelectVoting makes an existing voting the session's active voting.
func (h *Handlers) SelectVoting(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, "select voting", fmt.Errorf("%w: %v", domain.ErrInvalidName, err))
		return
	}
	name, err := domain.NormalizeVotingName(req.Name)
	if err != nil {
		h.fail(c, "select voting", err)
		return
	}

	names, err := h.votings.ListVotings(c.Request.Context())
	if err != nil {
		h.fail(c, "select voting", err)
		return
	}
	found := false
	for _, n := range names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		h.writeError(c, "select voting", fmt.Errorf("%w: %q", domain.ErrNotFound, name))
		return
	}

	id, _ := h.sessionID(c, true)
	if err := h.sessions.Select(c.Request.Context(), id, name); err != nil {
		h.fail(c, "select voting", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voting": name})
}

func (h *Handlers) ActiveVoting(c *gin.Context) {
	voting, err := h.voting(c)
	if err != nil {
		h.writeError(c, "active voting", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voting": voting})
}
