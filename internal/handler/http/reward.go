package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freshdrop/rewards/internal/domain"
	"github.com/freshdrop/rewards/internal/engine"
	"github.com/freshdrop/rewards/internal/repository"
	"github.com/freshdrop/rewards/internal/service"
	"github.com/freshdrop/rewards/pkg/httputil"
	"github.com/freshdrop/rewards/pkg/pagination"
	"github.com/freshdrop/rewards/pkg/validator"
)

// RewardHandler handles HTTP requests for campaign, scratch reward, and
// resolution endpoints.
type RewardHandler struct {
	service *service.RewardService
	logger  *slog.Logger
}

// NewRewardHandler creates a new reward HTTP handler.
func NewRewardHandler(svc *service.RewardService, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AmountRangeRequest is a min/max value band in minor currency units.
type AmountRangeRequest struct {
	Min int64 `json:"min" validate:"gte=0"`
	Max int64 `json:"max" validate:"gte=0"`
}

// RewardRequest is one wheel option inside a slab.
type RewardRequest struct {
	ID           string              `json:"id"`
	Type         string              `json:"type" validate:"required,oneof=wallet_credit instant_discount free_shipping fixed_wallet product_reward try_again"`
	Frequency    int                 `json:"frequency" validate:"gte=0,lte=100"`
	Description  string              `json:"description" validate:"max=500"`
	CouponCode   string              `json:"coupon_code" validate:"max=50"`
	MinCartValue *int64              `json:"min_cart_value" validate:"omitempty,gte=0"`
	RewardValue  *int64              `json:"reward_value" validate:"omitempty,gte=0"`
	AmountRange  *AmountRangeRequest `json:"amount_range"`
}

// SlabRequest is one order-amount band with its reward wheel.
type SlabRequest struct {
	MinAmount int64           `json:"min_amount" validate:"gte=0"`
	MaxAmount *int64          `json:"max_amount" validate:"omitempty,gt=0"`
	Rewards   []RewardRequest `json:"rewards" validate:"dive"`
}

// CreateCampaignRequest is the JSON request body for creating a campaign.
type CreateCampaignRequest struct {
	Name             string        `json:"name" validate:"required,min=1,max=255"`
	Description      string        `json:"description" validate:"max=1000"`
	ExpiryDate       string        `json:"expiry_date" validate:"required"`
	SpinLimitPerUser int           `json:"spin_limit_per_user" validate:"required,gt=0"`
	Eligibility      []string      `json:"eligibility" validate:"dive,oneof=all new_users first_order returning referral"`
	Slabs            []SlabRequest `json:"slabs" validate:"dive"`
}

// UpdateCampaignRequest is the JSON request body for updating a draft campaign.
type UpdateCampaignRequest struct {
	Name             *string       `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string       `json:"description" validate:"omitempty,max=1000"`
	ExpiryDate       *string       `json:"expiry_date"`
	SpinLimitPerUser *int          `json:"spin_limit_per_user" validate:"omitempty,gt=0"`
	Eligibility      []string      `json:"eligibility" validate:"omitempty,dive,oneof=all new_users first_order returning referral"`
	Slabs            []SlabRequest `json:"slabs" validate:"omitempty,dive"`
}

// CreateScratchRewardRequest is the JSON request body for creating a scratch reward.
type CreateScratchRewardRequest struct {
	Type        string `json:"type" validate:"required,oneof=primary referral bonus seasonal daily"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1000"`
	RewardValue int64  `json:"reward_value" validate:"gte=0"`
	Probability int    `json:"probability" validate:"gte=0,lte=100"`
	IsActive    bool   `json:"is_active"`

	OrderValueThreshold *int64  `json:"order_value_threshold" validate:"omitempty,gte=0"`
	NthOrder            *int    `json:"nth_order" validate:"omitempty,gt=0"`
	FestivalName        string  `json:"festival_name" validate:"max=255"`
	DateFrom            *string `json:"date_from"`
	DateTo              *string `json:"date_to"`
	IntervalHours       *int    `json:"interval_hours" validate:"omitempty,gt=0"`
}

// UpdateScratchRewardRequest is the JSON request body for updating a scratch reward.
type UpdateScratchRewardRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	RewardValue *int64  `json:"reward_value" validate:"omitempty,gte=0"`
	Probability *int    `json:"probability" validate:"omitempty,gte=0,lte=100"`
	IsActive    *bool   `json:"is_active"`

	OrderValueThreshold *int64  `json:"order_value_threshold" validate:"omitempty,gte=0"`
	NthOrder            *int    `json:"nth_order" validate:"omitempty,gt=0"`
	FestivalName        *string `json:"festival_name" validate:"omitempty,max=255"`
	DateFrom            *string `json:"date_from"`
	DateTo              *string `json:"date_to"`
	IntervalHours       *int    `json:"interval_hours" validate:"omitempty,gt=0"`
}

// SpinRequest is the JSON request body for resolving one spin.
type SpinRequest struct {
	CampaignID  string `json:"campaign_id" validate:"required,uuid"`
	UserID      string `json:"user_id" validate:"required"`
	Segment     string `json:"segment" validate:"omitempty,oneof=all new_users first_order returning referral"`
	OrderAmount int64  `json:"order_amount" validate:"gte=0"`
}

// ScratchRequest is the JSON request body for evaluating a scratch trigger.
type ScratchRequest struct {
	UserID  string         `json:"user_id" validate:"required"`
	Trigger TriggerRequest `json:"trigger" validate:"required"`
}

// TriggerRequest describes the business event being evaluated. Only the
// field matching Kind is read.
type TriggerRequest struct {
	Kind           string `json:"kind" validate:"required,oneof=order_placed referral_completed nth_order_reached calendar_date interval_elapsed"`
	OrderAmount    int64  `json:"order_amount" validate:"gte=0"`
	NthOrder       int    `json:"nth_order" validate:"gte=0"`
	Date           string `json:"date"`
	HoursSinceLast int    `json:"hours_since_last" validate:"gte=0"`
}

// --- Response DTOs ---

// ActivationResult is the response body for a campaign activation attempt.
// Violations is populated, and Activated false, when the catalog fails
// validation; the campaign stays in its previous status.
type ActivationResult struct {
	Activated  bool                 `json:"activated"`
	Campaign   *domain.Campaign     `json:"campaign,omitempty"`
	Violations []domain.CatalogError `json:"violations,omitempty"`
}

// ScratchRewardResult is the response body for scratch reward create/update.
type ScratchRewardResult struct {
	Saved      bool                  `json:"saved"`
	Reward     *domain.ScratchReward `json:"reward,omitempty"`
	Violations []domain.CatalogError `json:"violations,omitempty"`
}

// SpinResult is the response body for a spin resolution. A rejected spin is
// a normal business outcome, reported with 200 and Won false.
type SpinResult struct {
	Won       bool               `json:"won"`
	Outcome   *domain.SpinOutcome `json:"outcome,omitempty"`
	Rejection *RejectionResponse `json:"rejection,omitempty"`
}

// RejectionResponse describes why a spin was refused.
type RejectionResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ScratchResult is the response body for a scratch trigger evaluation.
// Won false with no outcome means the card revealed nothing.
type ScratchResult struct {
	Won     bool                   `json:"won"`
	Outcome *domain.ScratchOutcome `json:"outcome,omitempty"`
}

// SpinsUsedResult reports consumed spins for a (campaign, user) pair.
type SpinsUsedResult struct {
	CampaignID string `json:"campaign_id"`
	UserID     string `json:"user_id"`
	Used       int    `json:"used"`
}

// --- Campaign handlers ---

// CreateCampaign handles POST /api/v1/campaigns
func (h *RewardHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	expiry, err := time.Parse(time.RFC3339, req.ExpiryDate)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "expiry_date must be in RFC3339 format"},
		})
		return
	}

	input := &service.CreateCampaignInput{
		Name:             req.Name,
		Description:      req.Description,
		ExpiryDate:       expiry,
		SpinLimitPerUser: req.SpinLimitPerUser,
		Eligibility:      req.Eligibility,
		Slabs:            toDomainSlabs(req.Slabs),
	}

	campaign, err := h.service.CreateCampaign(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: campaign})
}

// ListCampaigns handles GET /api/v1/campaigns
func (h *RewardHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	filter := repository.CampaignFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	campaigns, total, err := h.service.ListCampaigns(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(campaigns, total, params))
}

// GetCampaign handles GET /api/v1/campaigns/{id}
func (h *RewardHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "campaign id is required"},
		})
		return
	}

	campaign, err := h.service.GetCampaign(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: campaign})
}

// UpdateCampaign handles PUT /api/v1/campaigns/{id}
func (h *RewardHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "campaign id is required"},
		})
		return
	}

	var req UpdateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateCampaignInput{
		Name:             req.Name,
		Description:      req.Description,
		SpinLimitPerUser: req.SpinLimitPerUser,
		Eligibility:      req.Eligibility,
	}

	if req.ExpiryDate != nil {
		expiry, err := time.Parse(time.RFC3339, *req.ExpiryDate)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "expiry_date must be in RFC3339 format"},
			})
			return
		}
		input.ExpiryDate = &expiry
	}
	if req.Slabs != nil {
		input.Slabs = toDomainSlabs(req.Slabs)
	}

	campaign, err := h.service.UpdateCampaign(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: campaign})
}

// DuplicateCampaign handles POST /api/v1/campaigns/{id}/duplicate
func (h *RewardHandler) DuplicateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "campaign id is required"},
		})
		return
	}

	campaign, err := h.service.DuplicateCampaign(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: campaign})
}

// ActivateCampaign handles POST /api/v1/campaigns/{id}/activate
func (h *RewardHandler) ActivateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "campaign id is required"},
		})
		return
	}

	campaign, violations, err := h.service.ActivateCampaign(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if len(violations) > 0 {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.Response{Data: ActivationResult{
			Activated:  false,
			Violations: violations,
		}})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ActivationResult{
		Activated: true,
		Campaign:  campaign,
	}})
}

// DeactivateCampaign handles POST /api/v1/campaigns/{id}/deactivate
func (h *RewardHandler) DeactivateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "campaign id is required"},
		})
		return
	}

	campaign, err := h.service.DeactivateCampaign(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: campaign})
}

// DeleteCampaign handles DELETE /api/v1/campaigns/{id}
func (h *RewardHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "campaign id is required"},
		})
		return
	}

	if err := h.service.DeleteCampaign(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// SpinsUsed handles GET /api/v1/campaigns/{id}/spins
func (h *RewardHandler) SpinsUsed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if id == "" || userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "campaign id and user_id are required"},
		})
		return
	}

	used, err := h.service.SpinsUsed(r.Context(), id, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SpinsUsedResult{
		CampaignID: id,
		UserID:     userID,
		Used:       used,
	}})
}

// --- Scratch reward handlers ---

// CreateScratchReward handles POST /api/v1/scratch-rewards
func (h *RewardHandler) CreateScratchReward(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req CreateScratchRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateScratchRewardInput{
		Type:                req.Type,
		Name:                req.Name,
		Description:         req.Description,
		RewardValue:         req.RewardValue,
		Probability:         req.Probability,
		IsActive:            req.IsActive,
		OrderValueThreshold: req.OrderValueThreshold,
		NthOrder:            req.NthOrder,
		FestivalName:        req.FestivalName,
		IntervalHours:       req.IntervalHours,
	}

	if req.DateFrom != nil {
		from, err := time.Parse(time.RFC3339, *req.DateFrom)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "date_from must be in RFC3339 format"},
			})
			return
		}
		input.DateFrom = &from
	}
	if req.DateTo != nil {
		to, err := time.Parse(time.RFC3339, *req.DateTo)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "date_to must be in RFC3339 format"},
			})
			return
		}
		input.DateTo = &to
	}

	reward, violations, err := h.service.CreateScratchReward(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if len(violations) > 0 {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.Response{Data: ScratchRewardResult{
			Saved:      false,
			Violations: violations,
		}})
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: ScratchRewardResult{
		Saved:  true,
		Reward: reward,
	}})
}

// ListScratchRewards handles GET /api/v1/scratch-rewards
func (h *RewardHandler) ListScratchRewards(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	rewards, err := h.service.ListScratchRewards(r.Context(), activeOnly)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rewards})
}

// GetScratchReward handles GET /api/v1/scratch-rewards/{id}
func (h *RewardHandler) GetScratchReward(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "scratch reward id is required"},
		})
		return
	}

	reward, err := h.service.GetScratchReward(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reward})
}

// UpdateScratchReward handles PUT /api/v1/scratch-rewards/{id}
func (h *RewardHandler) UpdateScratchReward(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "scratch reward id is required"},
		})
		return
	}

	var req UpdateScratchRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateScratchRewardInput{
		Name:                req.Name,
		Description:         req.Description,
		RewardValue:         req.RewardValue,
		Probability:         req.Probability,
		IsActive:            req.IsActive,
		OrderValueThreshold: req.OrderValueThreshold,
		NthOrder:            req.NthOrder,
		FestivalName:        req.FestivalName,
		IntervalHours:       req.IntervalHours,
	}

	if req.DateFrom != nil {
		from, err := time.Parse(time.RFC3339, *req.DateFrom)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "date_from must be in RFC3339 format"},
			})
			return
		}
		input.DateFrom = &from
	}
	if req.DateTo != nil {
		to, err := time.Parse(time.RFC3339, *req.DateTo)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "date_to must be in RFC3339 format"},
			})
			return
		}
		input.DateTo = &to
	}

	reward, violations, err := h.service.UpdateScratchReward(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if len(violations) > 0 {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, httputil.Response{Data: ScratchRewardResult{
			Saved:      false,
			Violations: violations,
		}})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ScratchRewardResult{
		Saved:  true,
		Reward: reward,
	}})
}

// --- Resolution handlers ---

// Spin handles POST /api/v1/spins
func (h *RewardHandler) Spin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req SpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	outcome, err := h.service.Spin(r.Context(), &service.SpinInput{
		CampaignID:  req.CampaignID,
		UserID:      req.UserID,
		Segment:     req.Segment,
		OrderAmount: req.OrderAmount,
	})
	if err != nil {
		// A rejection is a business outcome, not an error status.
		if rej, ok := engine.AsRejection(err); ok {
			httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SpinResult{
				Won: false,
				Rejection: &RejectionResponse{
					Reason:  rej.Reason,
					Message: rej.Message,
				},
			}})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SpinResult{
		Won:     true,
		Outcome: outcome,
	}})
}

// SpinHistory handles GET /api/v1/spins
func (h *RewardHandler) SpinHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "user_id is required"},
		})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	outcomes, err := h.service.SpinHistory(r.Context(), userID, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: outcomes})
}

// Scratch handles POST /api/v1/scratch
func (h *RewardHandler) Scratch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req ScratchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	trigger, err := toTriggerEvent(req.Trigger)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
		})
		return
	}

	outcome, err := h.service.Scratch(r.Context(), req.UserID, trigger)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ScratchResult{
		Won:     outcome != nil,
		Outcome: outcome,
	}})
}

// --- Helpers ---

func toDomainSlabs(slabs []SlabRequest) []domain.Slab {
	out := make([]domain.Slab, 0, len(slabs))
	for _, s := range slabs {
		slab := domain.Slab{
			MinAmount: s.MinAmount,
			MaxAmount: s.MaxAmount,
			Rewards:   make([]domain.Reward, 0, len(s.Rewards)),
		}
		for _, rw := range s.Rewards {
			reward := domain.Reward{
				ID:           rw.ID,
				Type:         rw.Type,
				Frequency:    rw.Frequency,
				Description:  rw.Description,
				CouponCode:   rw.CouponCode,
				MinCartValue: rw.MinCartValue,
				RewardValue:  rw.RewardValue,
			}
			if rw.AmountRange != nil {
				reward.AmountRange = &domain.AmountRange{
					Min: rw.AmountRange.Min,
					Max: rw.AmountRange.Max,
				}
			}
			slab.Rewards = append(slab.Rewards, reward)
		}
		out = append(out, slab)
	}
	return out
}

func toTriggerEvent(req TriggerRequest) (domain.TriggerEvent, error) {
	switch req.Kind {
	case domain.TriggerOrderPlaced:
		return domain.OrderPlaced(req.OrderAmount), nil
	case domain.TriggerReferralCompleted:
		return domain.ReferralCompleted(), nil
	case domain.TriggerNthOrderReached:
		return domain.NthOrderReached(req.NthOrder), nil
	case domain.TriggerCalendarDate:
		if req.Date == "" {
			return domain.TriggerEvent{}, errors.New("date is required for calendar_date triggers")
		}
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return domain.TriggerEvent{}, errors.New("date must be in RFC3339 format")
		}
		return domain.CalendarDate(date), nil
	case domain.TriggerIntervalElapsed:
		return domain.IntervalElapsed(req.HoursSinceLast), nil
	default:
		return domain.TriggerEvent{}, errors.New("unknown trigger kind " + strconv.Quote(req.Kind))
	}
}

