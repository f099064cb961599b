package http

import (
	"bytes"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprofund/research-ledger/internal/application/command"
	"github.com/reprofund/research-ledger/internal/application/query"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/infrastructure/persistence/memory"
)

// newTestServer wires the full API against in-memory stores.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	researchers := memory.NewResearcherStore()
	proposals := memory.NewProposalStore()
	milestones := memory.NewMilestoneStore()
	proofs := memory.NewProofStore()
	reviews := memory.NewReviewStore()
	leaderboard := memory.NewLeaderboardStore()
	engine := researcher.NewEngine(researcher.DefaultBadgeCatalog())

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0 // not under test

	srv := NewServer(cfg, Dependencies{
		RegisterResearcher: command.NewRegisterResearcherHandler(researchers, nil),
		CreateProposal:     command.NewCreateProposalHandler(proposals, researchers, engine, nil),
		FundProposal:       command.NewFundProposalHandler(proposals, nil),
		AdvanceStage:       command.NewAdvanceProposalStageHandler(proposals, nil),
		CreateMilestone:    command.NewCreateMilestoneHandler(milestones, proposals, nil),
		SubmitProof:        command.NewSubmitProofHandler(milestones, proofs, nil),
		VerifyMilestone: command.NewVerifyMilestoneHandler(
			milestones, proofs, proposals, nil,
			command.VerifyMilestoneConfig{},
		),
		SubmitReview: command.NewSubmitReviewHandler(
			reviews, proposals, researchers, engine, nil,
			command.SubmitReviewConfig{AwardPoints: true},
		),

		GetResearcher:   query.NewGetResearcherHandler(researchers, nil),
		ListResearchers: query.NewGetAllResearchersHandler(researchers),
		GetProposal:     query.NewGetProposalHandler(proposals),
		ListProposals:   query.NewGetAllProposalsHandler(proposals),
		ResearcherWork:  query.NewGetProposalsByResearcherHandler(proposals),
		GetMilestone:    query.NewGetMilestoneHandler(milestones, proofs),
		GetLeaderboard:  query.NewGetLeaderboardHandler(leaderboard, researchers),
		GetProfile:      query.NewGetResearcherProfileHandler(researchers, proposals, leaderboard),

		AuthRepo: researchers,
	})

	ts := httptest.NewServer(srv.buildMiddlewareChain(srv.router))
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends a request and decodes the envelope.
func doJSON(t *testing.T, ts *httptest.Server, method, path, apiKey string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := stdhttp.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

// register creates a researcher through the API and returns (id, apiKey).
func register(t *testing.T, ts *httptest.Server, name, email, phone string) (string, string) {
	t.Helper()

	status, env := doJSON(t, ts, "POST", "/api/v1/researchers", "", map[string]interface{}{
		"name":    name,
		"address": "12 Laboratory Lane",
		"email":   email,
		"phone":   phone,
	})
	require.Equal(t, stdhttp.StatusCreated, status)

	data := env["data"].(map[string]interface{})
	id := data["ResearcherID"].(string)
	key := data["APIKey"].(string)
	require.NotEmpty(t, id)
	require.NotEmpty(t, key)
	return id, key
}

func TestRegisterResearcherEndpoint(t *testing.T) {
	ts := newTestServer(t)

	id, key := register(t, ts, "Marie Curie", "marie@institute.org", "+12025550191")

	// The key embeds the researcher ID for O(1) verification.
	assert.Contains(t, key, id+".")

	// The record is readable without auth, the key hash is not exposed.
	status, env := doJSON(t, ts, "GET", "/api/v1/researchers/"+id, "", nil)
	assert.Equal(t, stdhttp.StatusOK, status)
	data := env["data"].(map[string]interface{})
	assert.NotContains(t, data, "APIKeyHash")
}

func TestRegisterResearcherValidation(t *testing.T) {
	ts := newTestServer(t)

	status, env := doJSON(t, ts, "POST", "/api/v1/researchers", "", map[string]interface{}{
		"name":    "X",
		"address": "12 Laboratory Lane",
		"email":   "not-an-email",
		"phone":   "123",
	})
	assert.Equal(t, stdhttp.StatusBadRequest, status)
	assert.Equal(t, false, env["success"])

	apiErr := env["error"].(map[string]interface{})
	assert.Equal(t, "invalid_request", apiErr["code"])
}

func TestProposalLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	_, key := register(t, ts, "Marie Curie", "marie@institute.org", "+12025550191")

	// Create
	status, env := doJSON(t, ts, "POST", "/api/v1/proposals", key, map[string]interface{}{
		"title":          "Radium decay rates",
		"description":    "Measure decay constants under varying temperature",
		"methodology":    "Ionization chamber measurements, triple-blinded analysis",
		"funding_target": 100000,
	})
	require.Equal(t, stdhttp.StatusCreated, status)
	proposalID := env["data"].(map[string]interface{})["ProposalID"].(string)

	// Fund anonymously
	status, env = doJSON(t, ts, "POST", "/api/v1/proposals/"+proposalID+"/fund", "", map[string]interface{}{
		"amount": 60000,
	})
	require.Equal(t, stdhttp.StatusOK, status)

	// Read back
	status, _ = doJSON(t, ts, "GET", "/api/v1/proposals/"+proposalID, "", nil)
	assert.Equal(t, stdhttp.StatusOK, status)
}

func TestCreateProposalRequiresAPIKey(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]interface{}{
		"title":          "Radium decay rates",
		"description":    "Measure decay constants under varying temperature",
		"methodology":    "Ionization chamber measurements",
		"funding_target": 100000,
	}

	// No key at all
	status, env := doJSON(t, ts, "POST", "/api/v1/proposals", "", body)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", env["error"].(map[string]interface{})["code"])

	// Well-formed key with a wrong secret
	id, _ := register(t, ts, "Marie Curie", "marie@institute.org", "+12025550191")
	status, _ = doJSON(t, ts, "POST", "/api/v1/proposals", id+".deadbeef", body)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)

	// Garbage key
	status, _ = doJSON(t, ts, "POST", "/api/v1/proposals", "garbage", body)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
}

func TestReviewOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	_, authorKey := register(t, ts, "Marie Curie", "marie@institute.org", "+12025550191")
	reviewerID, reviewerKey := register(t, ts, "Lise Meitner", "lise@institute.org", "+12025550192")

	status, env := doJSON(t, ts, "POST", "/api/v1/proposals", authorKey, map[string]interface{}{
		"title":          "Radium decay rates",
		"description":    "Measure decay constants under varying temperature",
		"methodology":    "Ionization chamber measurements",
		"funding_target": 100000,
	})
	require.Equal(t, stdhttp.StatusCreated, status)
	proposalID := env["data"].(map[string]interface{})["ProposalID"].(string)

	status, env = doJSON(t, ts, "POST", "/api/v1/proposals/"+proposalID+"/reviews", reviewerKey, map[string]interface{}{
		"score":        4,
		"comments":     "Methodology is sound, sample size could be larger",
		"stake_amount": 500,
	})
	require.Equal(t, stdhttp.StatusCreated, status)

	// Reviewer identity comes from the key, and the review earns points.
	status, env = doJSON(t, ts, "GET", "/api/v1/researchers/"+reviewerID, "", nil)
	require.Equal(t, stdhttp.StatusOK, status)
}

func TestNotFoundMapping(t *testing.T) {
	ts := newTestServer(t)

	status, env := doJSON(t, ts, "GET", "/api/v1/proposals/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, status)
	assert.Equal(t, "not_found", env["error"].(map[string]interface{})["code"])
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	status, env := doJSON(t, ts, "GET", "/health", "", nil)
	assert.Equal(t, stdhttp.StatusOK, status)
	assert.Equal(t, true, env["success"])

	status, _ = doJSON(t, ts, "GET", "/live", "", nil)
	assert.Equal(t, stdhttp.StatusOK, status)
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(3, 100*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
	assert.False(t, rl.Allow("10.0.0.1"))

	// Other keys are independent.
	assert.True(t, rl.Allow("10.0.0.2"))
}
