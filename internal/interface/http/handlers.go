package http

import (
	"net/http"
	"time"

	"github.com/reprofund/research-ledger/internal/application/command"
	"github.com/reprofund/research-ledger/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot handles GET / - API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "research-ledger",
		"version": "v1",
		"status":  "operational",
	})
}

// handleHealth handles GET /health - full component health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"uptime": s.Uptime().String(),
		})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// handleReady handles GET /ready - readiness probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles GET /live - liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// RESEARCHER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerResearcherRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// handleRegisterResearcher handles POST /api/v1/researchers.
// The response carries the API key exactly once; only its hash is stored.
func (s *Server) handleRegisterResearcher(w http.ResponseWriter, r *http.Request) {
	var req registerResearcherRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.RegisterResearcher.Handle(r.Context(), command.RegisterResearcherCommand{
		Name:    req.Name,
		Address: req.Address,
		Email:   req.Email,
		Phone:   req.Phone,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleListResearchers handles GET /api/v1/researchers.
func (s *Server) handleListResearchers(w http.ResponseWriter, r *http.Request) {
	q := query.GetAllResearchersQuery{
		Limit:  getQueryParamInt(r, "limit", 50),
		Offset: getQueryParamInt(r, "offset", 0),
	}

	result, err := s.deps.ListResearchers.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetResearcher handles GET /api/v1/researchers/{id}.
func (s *Server) handleGetResearcher(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetResearcher.HandleByID(r.Context(), query.GetResearcherByIDQuery{
		ResearcherID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetResearcherRank handles GET /api/v1/researchers/{id}/rank.
func (s *Server) handleGetResearcherRank(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetLeaderboard.HandleRank(r.Context(), query.GetResearcherRankQuery{
		ResearcherID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetResearcherNeighbors handles GET /api/v1/researchers/{id}/neighbors?radius=.
// Returns the ranking window around a researcher.
func (s *Server) handleGetResearcherNeighbors(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetLeaderboard.HandleNeighbors(r.Context(), query.GetLeaderboardNeighborsQuery{
		ResearcherID: r.PathValue("id"),
		Radius:       getQueryParamInt(r, "radius", 0),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetResearcherProposals handles GET /api/v1/researchers/{id}/proposals.
func (s *Server) handleGetResearcherProposals(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ResearcherWork.Handle(r.Context(), query.GetProposalsByResearcherQuery{
		ResearcherID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetProfile handles GET /api/v1/me - the authenticated researcher's
// aggregated profile (record, proposals, rank).
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	res, ok := authenticatedResearcher(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	result, err := s.deps.GetProfile.Handle(r.Context(), query.GetResearcherProfileQuery{
		Owner: res.Owner,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROPOSAL HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createProposalRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Methodology   string `json:"methodology"`
	FundingTarget int64  `json:"funding_target"`
}

// handleCreateProposal handles POST /api/v1/proposals.
// The owning researcher is taken from the API key, never from the body.
func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	res, ok := authenticatedResearcher(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req createProposalRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.CreateProposal.Handle(r.Context(), command.CreateProposalCommand{
		ResearcherID:  res.ID,
		Title:         req.Title,
		Description:   req.Description,
		Methodology:   req.Methodology,
		FundingTarget: req.FundingTarget,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleListProposals handles GET /api/v1/proposals?stage=.
func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListProposals.Handle(r.Context(), query.GetAllProposalsQuery{
		Stage: getQueryParam(r, "stage", ""),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetProposal handles GET /api/v1/proposals/{id}.
func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetProposal.Handle(r.Context(), query.GetProposalByIDQuery{
		ProposalID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type fundProposalRequest struct {
	Amount int64 `json:"amount"`
}

// handleFundProposal handles POST /api/v1/proposals/{id}/fund.
// Funding is open: contributions do not require a researcher account.
func (s *Server) handleFundProposal(w http.ResponseWriter, r *http.Request) {
	var req fundProposalRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.FundProposal.Handle(r.Context(), command.FundProposalCommand{
		ProposalID: r.PathValue("id"),
		Amount:     req.Amount,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type advanceStageRequest struct {
	Stage string `json:"stage"`
}

// handleAdvanceStage handles POST /api/v1/proposals/{id}/stage.
func (s *Server) handleAdvanceStage(w http.ResponseWriter, r *http.Request) {
	var req advanceStageRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.AdvanceStage.Handle(r.Context(), command.AdvanceProposalStageCommand{
		ProposalID:  r.PathValue("id"),
		TargetStage: req.Stage,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE & PROOF HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createMilestoneRequest struct {
	Description     string    `json:"description"`
	RequiredFunding int64     `json:"required_funding"`
	Deadline        time.Time `json:"deadline"`
}

// handleCreateMilestone handles POST /api/v1/proposals/{id}/milestones.
func (s *Server) handleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req createMilestoneRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.CreateMilestone.Handle(r.Context(), command.CreateMilestoneCommand{
		ProposalID:      r.PathValue("id"),
		Description:     req.Description,
		RequiredFunding: req.RequiredFunding,
		Deadline:        req.Deadline,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetMilestone handles GET /api/v1/milestones/{id}.
func (s *Server) handleGetMilestone(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetMilestone.Handle(r.Context(), query.GetMilestoneByIDQuery{
		MilestoneID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type submitProofRequest struct {
	MethodologyHash string `json:"methodology_hash"`
	ResultsHash     string `json:"results_hash"`
}

// handleSubmitProof handles POST /api/v1/milestones/{id}/proofs.
func (s *Server) handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	var req submitProofRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.SubmitProof.Handle(r.Context(), command.SubmitProofCommand{
		MilestoneID:     r.PathValue("id"),
		MethodologyHash: req.MethodologyHash,
		ResultsHash:     req.ResultsHash,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleVerifyMilestone handles
// POST /api/v1/proposals/{id}/milestones/{milestoneID}/verify.
func (s *Server) handleVerifyMilestone(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.VerifyMilestone.Handle(r.Context(), command.VerifyMilestoneCommand{
		ProposalID:  r.PathValue("id"),
		MilestoneID: r.PathValue("milestoneID"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type submitReviewRequest struct {
	Score       int    `json:"score"`
	Comments    string `json:"comments"`
	StakeAmount int64  `json:"stake_amount"`
}

// handleSubmitReview handles POST /api/v1/proposals/{id}/reviews.
// The reviewer identity comes from the API key.
func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	res, ok := authenticatedResearcher(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req submitReviewRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.SubmitReview.Handle(r.Context(), command.SubmitReviewCommand{
		ProposalID:  r.PathValue("id"),
		ReviewerID:  res.ID,
		Score:       req.Score,
		Comments:    req.Comments,
		StakeAmount: req.StakeAmount,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLeaderboard handles GET /api/v1/leaderboard?limit=.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetLeaderboard.Handle(r.Context(), query.GetLeaderboardQuery{
		Limit: getQueryParamInt(r, "limit", 20),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
