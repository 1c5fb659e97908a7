package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/haven-social/guardian/pipeline"
	"github.com/haven-social/guardian/policy"
)

func testServer() *Server {
	eng := pipeline.EngineTestFixture()
	return &Server{
		logger:   slog.Default(),
		echo:     echo.New(),
		engine:   eng,
		policies: eng.Policies,
		queue:    eng.Queue,
	}
}

func TestHealthCheck(t *testing.T) {
	assert := assert.New(t)
	srv := testServer()

	req := httptest.NewRequest(http.MethodGet, "/_health", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	assert.NoError(srv.HandleHealthCheck(c))
	assert.Equal(http.StatusOK, rec.Code)

	var status GenericStatus
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal("guardian", status.Daemon)
}

func TestModerationCheckEndpoint(t *testing.T) {
	assert := assert.New(t)
	srv := testServer()

	body := `{"type":"text","text":"you are so hateful","authorId":"user-1","workflow":"public_channel"}`
	req := httptest.NewRequest(http.MethodPost, "/api/moderation/check", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	assert.NoError(srv.HandleModerationCheck(c))
	assert.Equal(http.StatusOK, rec.Code)

	var verdict pipeline.Verdict
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.Equal(pipeline.ActionBlock, verdict.Action)
	assert.False(verdict.Allowed)
}

func TestModerationCheckValidation(t *testing.T) {
	assert := assert.New(t)
	srv := testServer()

	// missing workflow
	body := `{"type":"text","text":"hello","authorId":"user-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/moderation/check", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := srv.HandleModerationCheck(c)
	var httpErr *echo.HTTPError
	if assert.ErrorAs(err, &httpErr) {
		assert.Equal(http.StatusBadRequest, httpErr.Code)
	}
}

func TestGetPolicyFallsBackToDefault(t *testing.T) {
	assert := assert.New(t)
	srv := testServer()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/policies/agent_output", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("workflow")
	c.SetParamValues(policy.WorkflowAgentOutput)

	assert.NoError(srv.HandleGetPolicy(c))

	var pol policy.Policy
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &pol))
	assert.Equal(policy.WorkflowAgentOutput, pol.Workflow)
	assert.False(pol.TierConfig(policy.TierLexicon).Enabled)
}

func TestUpdateLexicon(t *testing.T) {
	assert := assert.New(t)
	srv := testServer()

	body := `{"terms":[{"value":"badword"}],"domains":["evil.example"]}`
	req := httptest.NewRequest(http.MethodPut, "/api/admin/policies/public_channel/lexicon", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("workflow")
	c.SetParamValues(policy.WorkflowPublicChannel)

	assert.NoError(srv.HandleUpdateLexicon(c))

	pol, err := srv.policies.GetPolicy(req.Context(), policy.WorkflowPublicChannel)
	assert.NoError(err)
	if assert.NotNil(pol) {
		terms := pol.TierConfig(policy.TierLexicon).BlockedTerms
		if assert.Len(terms, 1) {
			assert.Equal("badword", terms[0].Value)
		}
	}
}

func TestResolveValidation(t *testing.T) {
	assert := assert.New(t)
	srv := testServer()

	body := `{"status":"bogus","reviewerId":"mod-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/queue/abc/resolve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := srv.HandleResolveQueueEntry(c)
	var httpErr *echo.HTTPError
	if assert.ErrorAs(err, &httpErr) {
		assert.Equal(http.StatusBadRequest, httpErr.Code)
	}
}
