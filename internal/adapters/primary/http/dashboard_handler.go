package http

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/primary/validation"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// SectionModels turns a derived view into one render-ready event per section.
type SectionModels func(view *domain.DerivedView) []domain.Event

// DashboardHandler exposes the filter controller over REST. Interactions
// answer 202 with the refresh ticket; the panels arrive over the WebSocket.
type DashboardHandler struct {
	service      ports.DashboardService
	models       SectionModels
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	service ports.DashboardService,
	models SectionModels,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		models:       models,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "dashboard"),
	}
}

// RegisterRoutes sets up the routing for all dashboard endpoints.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleSnapshot)
	r.Get("/panels", h.HandlePanels)
	r.Get("/sections", h.HandleSections)

	r.Put("/period", h.HandleSelectPeriod)
	r.Delete("/period", h.HandleClearPeriod)

	r.Post("/filters/click", h.HandleClickFilter)
	r.Delete("/filters", h.HandleClearFilters)
	r.Put("/filters/{field}", h.HandleApplyFilter)
	r.Delete("/filters/{field}", h.HandleClearFilter)
}

// --- Request/Response DTOs ---

// ApplyFilterRequest is the body of PUT /filters/{field}.
type ApplyFilterRequest struct {
	Value string `json:"value"`
}

// SectionRuleDTO describes which panels a filter field affects.
type SectionRuleDTO struct {
	Field    string           `json:"field"`
	Owner    domain.Section   `json:"owner"`
	Affected []domain.Section `json:"affected"`
}

func toSectionRuleDTOs(rules domain.SectionRules) []SectionRuleDTO {
	fields := make([]string, 0, len(rules))
	for field := range rules {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	response := make([]SectionRuleDTO, 0, len(fields))
	for _, field := range fields {
		rule := rules[field]
		response = append(response, SectionRuleDTO{
			Field:    field,
			Owner:    rule.Owner,
			Affected: rule.Affected,
		})
	}
	return response
}

// --- Handlers ---

// HandleSnapshot handles GET /dashboard
func (h *DashboardHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Snapshot(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteSuccess(w, view)
}

// HandlePanels handles GET /dashboard/panels
func (h *DashboardHandler) HandlePanels(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Snapshot(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteList(w, h.models(view))
}

// HandleSections handles GET /dashboard/sections
func (h *DashboardHandler) HandleSections(w http.ResponseWriter, r *http.Request) {
	WriteList(w, toSectionRuleDTOs(h.service.Rules()))
}

// HandleSelectPeriod handles PUT /dashboard/period
func (h *DashboardHandler) HandleSelectPeriod(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[validation.PeriodRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	start, end, err := req.Parse()
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	ticket, err := h.service.SelectPeriod(r.Context(), start, end)
	h.respond(w, r, ticket, err)
}

// HandleClearPeriod handles DELETE /dashboard/period
func (h *DashboardHandler) HandleClearPeriod(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.ClearPeriod(r.Context())
	h.respond(w, r, ticket, err)
}

// HandleClickFilter handles POST /dashboard/filters/click
func (h *DashboardHandler) HandleClickFilter(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[validation.FilterRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(true), h.errorHandler) {
		return
	}

	ticket, err := h.service.ClickFilter(r.Context(), req.Field, req.Value)
	h.respond(w, r, ticket, err)
}

// HandleApplyFilter handles PUT /dashboard/filters/{field}
func (h *DashboardHandler) HandleApplyFilter(w http.ResponseWriter, r *http.Request) {
	body, err := validation.DecodeAndValidate[ApplyFilterRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	req := validation.FilterRequest{Field: chi.URLParam(r, "field"), Value: body.Value}
	if HandleError(w, r, req.Validate(false), h.errorHandler) {
		return
	}

	ticket, err := h.service.ApplyFilter(r.Context(), req.Field, req.Value)
	h.respond(w, r, ticket, err)
}

// HandleClearFilter handles DELETE /dashboard/filters/{field}
func (h *DashboardHandler) HandleClearFilter(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.ClearFilter(r.Context(), chi.URLParam(r, "field"))
	h.respond(w, r, ticket, err)
}

// HandleClearFilters handles DELETE /dashboard/filters
func (h *DashboardHandler) HandleClearFilters(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.ClearFilter(r.Context(), "")
	h.respond(w, r, ticket, err)
}

func (h *DashboardHandler) respond(w http.ResponseWriter, r *http.Request, ticket *domain.RefreshTicket, err error) {
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	h.logger.DebugContext(r.Context(), "interaction accepted",
		"sequence", ticket.Sequence,
		"transition", ticket.Transition,
		"sections", len(ticket.Sections),
	)
	WriteAccepted(w, ticket)
}
