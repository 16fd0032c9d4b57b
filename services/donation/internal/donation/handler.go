package donation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	service *Service
	logger  aqm.Logger
	config  *aqm.Config
	tlm     *telemetry.HTTP
}

func NewHandler(service *Service, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		service: service,
		logger:  logger,
		config:  config,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/donations", func(r chi.Router) {
		r.Post("/", h.CreateDonation)
		r.Get("/", h.ListMyDonations)
		r.Get("/open", h.ListOpenDonations)
		r.Get("/previous", h.ListPreviousDonations)
		r.Get("/{id}", h.GetDonation)
		r.Patch("/{id}/accept", h.AcceptDonation)
		r.Patch("/{id}/reject", h.RejectDonation)
		r.Patch("/{id}/assign", h.AssignDonation)
		r.Patch("/{id}/collect", h.CollectDonation)
		r.Post("/{id}/feedback", h.SubmitFeedback)
	})

	r.Route("/agents", func(r chi.Router) {
		r.Get("/", h.ListAgents)
		r.Get("/{id}/feedback", h.GetAgentFeedback)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.GetDashboard)
		r.Get("/trend", h.GetWeeklyTrend)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateDonation")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var in CreateInput
	if !h.decode(w, r, log, &in) {
		return
	}

	d, err := h.service.Create(r.Context(), p, in)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusCreated, d, nil)
}

func (h *Handler) ListMyDonations(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMyDonations")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	donations, err := h.service.MyDonations(r.Context(), p, r.URL.Query().Get("status"))
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"donations": donations,
	}, nil)
}

func (h *Handler) ListOpenDonations(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOpenDonations")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	details, err := h.service.OpenDonations(r.Context(), p)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"donations": details,
	}, nil)
}

func (h *Handler) ListPreviousDonations(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListPreviousDonations")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	details, err := h.service.PreviousDonations(r.Context(), p)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"donations": details,
	}, nil)
}

func (h *Handler) GetDonation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDonation")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	detail, err := h.service.DonationDetail(r.Context(), p, id)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, detail, nil)
}

func (h *Handler) AcceptDonation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AcceptDonation")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	d, err := h.service.Accept(r.Context(), p, id)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, d, nil)
}

func (h *Handler) RejectDonation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RejectDonation")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	d, err := h.service.Reject(r.Context(), p, id)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, d, nil)
}

func (h *Handler) AssignDonation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AssignDonation")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	var in AssignInput
	if !h.decode(w, r, log, &in) {
		return
	}

	d, err := h.service.Assign(r.Context(), p, id, in)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, d, nil)
}

func (h *Handler) CollectDonation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CollectDonation")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	var in CollectInput
	if !h.decodeOptional(w, r, log, &in) {
		return
	}

	d, err := h.service.Collect(r.Context(), p, id, in)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, d, nil)
}

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SubmitFeedback")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	var in FeedbackInput
	if !h.decode(w, r, log, &in) {
		return
	}

	d, err := h.service.SubmitFeedback(r.Context(), p, id, in)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusCreated, d, nil)
}

func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListAgents")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	agents, err := h.service.Agents(r.Context(), p)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"agents": agents,
	}, nil)
}

func (h *Handler) GetAgentFeedback(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetAgentFeedback")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	agentID, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	report, err := h.service.AgentFeedback(r.Context(), p, agentID)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, report, nil)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDashboard")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	dash, err := h.service.Dashboard(r.Context(), p)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, dash, nil)
}

func (h *Handler) GetWeeklyTrend(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetWeeklyTrend")
	defer finish()
	log := h.log(r)

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	trend, err := h.service.WeeklyTrend(r.Context(), p)
	if err != nil {
		h.respondFailure(w, log, err)
		return
	}

	aqm.Respond(w, http.StatusOK, trend, nil)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	p, ok := PrincipalFromRequest(r)
	if !ok {
		aqm.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return Principal{}, false
	}
	return p, true
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request) (ID, bool) {
	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid ID")
		return ID{}, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log aqm.Logger, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if len(body) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("invalid JSON payload", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}

func (h *Handler) decodeOptional(w http.ResponseWriter, r *http.Request, log aqm.Logger, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("invalid JSON payload", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}

func (h *Handler) respondFailure(w http.ResponseWriter, log aqm.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		log.Error("unexpected failure", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	switch e.Kind {
	case KindNotFound:
		aqm.RespondError(w, http.StatusNotFound, e.Msg)
	case KindInvalidTransition:
		aqm.RespondError(w, http.StatusConflict, e.Msg)
	case KindValidation:
		log.Debug("validation failed", "errors", e.Fields)
		aqm.RespondError(w, http.StatusBadRequest, validationMessage(e))
	case KindUnauthorized:
		aqm.RespondError(w, http.StatusForbidden, e.Msg)
	case KindUnavailable:
		log.Error("store unavailable", "error", err)
		aqm.RespondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		log.Error("unexpected failure", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Internal error")
	}
}

func validationMessage(e *Error) string {
	if len(e.Fields) == 0 {
		return "Validation failed: " + e.Msg
	}
	return "Validation failed: " + strings.Join(e.Fields, ", ")
}
