package main

import (
	"net/http"
	"strconv"

	"github.com/carlmjohnson/versioninfo"
	"github.com/labstack/echo/v4"

	"github.com/haven-social/guardian/lexicon"
	"github.com/haven-social/guardian/pipeline"
	"github.com/haven-social/guardian/policy"
	"github.com/haven-social/guardian/queue"
)

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericStatus{Daemon: "guardian", Status: "ok", Version: versioninfo.Short()})
}

func (srv *Server) HandleModerationCheck(c echo.Context) error {
	var content pipeline.Content
	if err := c.Bind(&content); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if content.Workflow == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workflow is required")
	}
	if content.Text == "" && len(content.Image) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "content is empty")
	}

	verdict := srv.engine.Moderate(c.Request().Context(), content)
	return c.JSON(http.StatusOK, verdict)
}

func (srv *Server) HandleListPolicies(c echo.Context) error {
	policies, err := srv.policies.ListPolicies(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, policies)
}

func (srv *Server) HandleGetPolicy(c echo.Context) error {
	workflow := c.Param("workflow")
	pol, err := srv.policies.GetPolicy(c.Request().Context(), workflow)
	if err != nil {
		return err
	}
	if pol == nil {
		// what the pipeline would use for this workflow
		pol = policy.DefaultPolicy(workflow)
	}
	return c.JSON(http.StatusOK, pol)
}

func (srv *Server) HandleSavePolicy(c echo.Context) error {
	var pol policy.Policy
	if err := c.Bind(&pol); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pol.Workflow = c.Param("workflow")
	if err := pol.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := srv.policies.SavePolicy(c.Request().Context(), &pol); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &pol)
}

type LexiconUpdate struct {
	Terms   []lexicon.Entry `json:"terms"`
	Domains []string        `json:"domains"`
}

// HandleUpdateLexicon replaces the blocked term and domain lists on a
// workflow's lexicon tier without touching the rest of the policy.
func (srv *Server) HandleUpdateLexicon(c echo.Context) error {
	var update LexiconUpdate
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	workflow := c.Param("workflow")

	pol, err := srv.policies.GetPolicy(ctx, workflow)
	if err != nil {
		return err
	}
	if pol == nil {
		pol = policy.DefaultPolicy(workflow)
	}
	tc := pol.TierConfig(policy.TierLexicon)
	if tc == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "policy has no lexicon tier")
	}
	tc.BlockedTerms = update.Terms
	tc.BlockedDomains = update.Domains
	if err := srv.policies.SavePolicy(ctx, pol); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pol)
}

func (srv *Server) HandleListQueue(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	entries, err := srv.queue.List(c.Request().Context(), c.QueryParam("status"), c.QueryParam("workflow"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (srv *Server) HandleGetQueueEntry(c echo.Context) error {
	entry, err := srv.queue.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if entry == nil {
		return echo.NewHTTPError(http.StatusNotFound, "queue entry not found")
	}
	return c.JSON(http.StatusOK, entry)
}

type ResolveRequest struct {
	Status     string `json:"status"`
	ReviewerID string `json:"reviewerId"`
	Notes      string `json:"notes"`
}

func (srv *Server) HandleResolveQueueEntry(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Status != queue.StatusApproved && req.Status != queue.StatusRejected {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be approved or rejected")
	}
	entry, err := srv.queue.Resolve(c.Request().Context(), c.Param("id"), req.Status, req.ReviewerID, req.Notes)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, entry)
}

func (srv *Server) HandleStats(c echo.Context) error {
	stats, err := srv.queue.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
