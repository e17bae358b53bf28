package leavehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrleave/internal/domain/audit"
	"hrleave/internal/domain/auth"
	"hrleave/internal/domain/leave"
	"hrleave/internal/domain/notifications"
	"hrleave/internal/transport/http/api"
	"hrleave/internal/transport/http/middleware"
	"hrleave/internal/transport/http/shared"
)

type Handler struct {
	Service  *leave.Service
	Auth     *auth.Store
	Audit    *audit.Service
	Notifier *notifications.Service
}

func New(service *leave.Service, authStore *auth.Store, auditor *audit.Service, notifier *notifications.Service) *Handler {
	return &Handler{Service: service, Auth: authStore, Audit: auditor, Notifier: notifier}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/types", h.listTypes)
	r.With(middleware.RequirePermission(auth.PermCatalogWrite)).Post("/types", h.createType)

	r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/balances", h.balances)

	r.With(middleware.RequirePermission(auth.PermLeaveWrite)).Post("/requests/preview", h.preview)
	r.With(middleware.RequirePermission(auth.PermLeaveWrite)).Post("/requests", h.submit)
	r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/requests", h.listRequests)
	r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/requests/{id}", h.getRequest)
	r.With(middleware.RequirePermission(auth.PermLeaveWrite)).Put("/requests/{id}", h.editRequest)
	r.With(middleware.RequirePermission(auth.PermLeaveWrite)).Delete("/requests/{id}", h.cancelRequest)
	r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/requests/{id}/approve", h.approve)
	r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/requests/{id}/reject", h.reject)

	r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/unpaid-requests", h.listUnpaid)
	r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/unpaid-requests/{id}/approve", h.approveUnpaid)
	r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/unpaid-requests/{id}/reject", h.rejectUnpaid)

	return r
}

// writeError maps domain errors onto the response envelope.
func writeError(w http.ResponseWriter, err error, reqID string) {
	var validation *leave.ValidationError
	var insufficient *leave.InsufficientBalanceError

	switch {
	case errors.As(err, &validation):
		api.Fail(w, http.StatusBadRequest, "validation_failed", validation.Error(), reqID)
	case errors.As(err, &insufficient):
		api.Fail(w, http.StatusConflict, "insufficient_balance", insufficient.Error(), reqID)
	case errors.Is(err, leave.ErrMissingReason):
		api.Fail(w, http.StatusBadRequest, "missing_reason", "a rejection reason is required", reqID)
	case errors.Is(err, leave.ErrAlreadyProcessed):
		api.Fail(w, http.StatusConflict, "already_processed", "request has already been decided", reqID)
	case errors.Is(err, leave.ErrConcurrencyConflict):
		api.Fail(w, http.StatusConflict, "concurrency_conflict", "a concurrent update won, retry the operation", reqID)
	case errors.Is(err, leave.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not the owner of this request", reqID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", reqID)
	default:
		slog.Error("leave handler failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", reqID)
	}
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, payload any) {
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID, reqID, payload); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) notifyDecision(r *http.Request, employeeID, subject, body string) {
	email, err := h.Auth.FindEmployeeEmail(r.Context(), employeeID)
	if err != nil {
		slog.Warn("employee email lookup failed", "employeeId", employeeID, "err", err)
		return
	}
	h.Notifier.Enqueue(email, subject, body)
}

func (h *Handler) notifyApprovers(r *http.Request, body string) {
	emails, err := h.Auth.FindRoleEmails(r.Context(), auth.RoleHR)
	if err != nil {
		slog.Warn("hr email lookup failed", "err", err)
		return
	}
	for _, email := range emails {
		h.Notifier.Enqueue(email, "New leave request pending approval", body)
	}
}

func (h *Handler) listTypes(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	catalog, err := h.Service.Catalog(r.Context())
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, catalog.All(), reqID)
}

type createTypeRequest struct {
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	DefaultDays  int     `json:"defaultDaysPerYear"`
	AliasGroupID *string `json:"aliasGroupId"`
}

func (h *Handler) createType(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var in createTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	if in.Name == "" || in.Code == "" {
		api.Fail(w, http.StatusBadRequest, "validation_failed", "name and code are required", reqID)
		return
	}
	if in.DefaultDays < 0 {
		api.Fail(w, http.StatusBadRequest, "validation_failed", "defaultDaysPerYear must not be negative", reqID)
		return
	}

	id, err := h.Service.CreateType(r.Context(), leave.LeaveType{
		Name:         in.Name,
		Code:         in.Code,
		DefaultDays:  in.DefaultDays,
		AliasGroupID: in.AliasGroupID,
	})
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.record(r, user.UserID, "leave_type.created", "leave_type", id, in)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = user.EmployeeID
	}
	if employeeID != user.EmployeeID && !auth.HasPermission(user.RoleName, auth.PermReportsRead) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's balances", reqID)
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "validation_failed", "year must be an integer", reqID)
			return
		}
		year = parsed
	}

	snapshots, err := h.Service.Balances(r.Context(), employeeID, year)
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, snapshots, reqID)
}

type submitRequest struct {
	LeaveTypeID         string   `json:"leaveTypeId"`
	StartDate           string   `json:"startDate"`
	EndDate             string   `json:"endDate"`
	HalfDay             bool     `json:"halfDay"`
	AlternativeTypeIDs  []string `json:"alternativeTypeIds"`
	Reason              string   `json:"reason"`
	AcceptUnpaid        bool     `json:"acceptUnpaid"`
	UnpaidJustification string   `json:"unpaidJustification"`
}

func (h *Handler) decodeSubmit(r *http.Request, employeeID string) (leave.SubmitInput, error) {
	var in submitRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return leave.SubmitInput{}, &leave.ValidationError{Field: "body", Reason: "invalid request body"}
	}
	start, err := shared.ParseDate(in.StartDate)
	if err != nil {
		return leave.SubmitInput{}, &leave.ValidationError{Field: "startDate", Reason: "invalid date"}
	}
	end, err := shared.ParseDate(in.EndDate)
	if err != nil {
		return leave.SubmitInput{}, &leave.ValidationError{Field: "endDate", Reason: "invalid date"}
	}
	if in.LeaveTypeID == "" {
		return leave.SubmitInput{}, &leave.ValidationError{Field: "leaveTypeId", Reason: "required"}
	}
	return leave.SubmitInput{
		EmployeeID:          employeeID,
		PrimaryTypeID:       in.LeaveTypeID,
		StartDate:           start,
		EndDate:             end,
		HalfDay:             in.HalfDay,
		AlternativeTypeIDs:  in.AlternativeTypeIDs,
		Reason:              in.Reason,
		AcceptUnpaid:        in.AcceptUnpaid,
		UnpaidJustification: in.UnpaidJustification,
	}, nil
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	in, err := h.decodeSubmit(r, user.EmployeeID)
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	result, err := h.Service.Preview(r.Context(), in)
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	snapshots, err := h.Service.Balances(r.Context(), user.EmployeeID, in.StartDate.Year())
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{
		"days":      result.Days,
		"plan":      result.Plan,
		"snapshots": snapshots,
	}, reqID)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	in, err := h.decodeSubmit(r, user.EmployeeID)
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	result, err := h.Service.Submit(r.Context(), in)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	for _, id := range result.RequestIDs {
		h.record(r, user.UserID, "leave_request.submitted", "leave_request", id, result.Plan)
	}
	if result.UnpaidRequestID != "" {
		h.record(r, user.UserID, "unpaid_request.submitted", "unpaid_leave_request", result.UnpaidRequestID, nil)
	}
	h.notifyApprovers(r, fmt.Sprintf("%.1f day(s) of leave requested starting %s", result.Days, shared.FormatDate(in.StartDate)))
	api.Created(w, result, reqID)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" && !auth.HasPermission(user.RoleName, auth.PermLeaveApprove) {
		employeeID = user.EmployeeID
	}
	if employeeID != "" && employeeID != user.EmployeeID && !auth.HasPermission(user.RoleName, auth.PermLeaveApprove) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's requests", reqID)
		return
	}

	page := shared.ParsePage(r)
	requests, err := h.Service.Store.ListRequests(r.Context(), employeeID, page.Limit, page.Offset)
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, requests, reqID)
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	req, err := h.Service.Store.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	if req.EmployeeID != user.EmployeeID && !auth.HasPermission(user.RoleName, auth.PermLeaveApprove) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's request", reqID)
		return
	}
	api.Success(w, req, reqID)
}

type editRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	HalfDay   bool   `json:"halfDay"`
	Reason    string `json:"reason"`
}

func (h *Handler) editRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")

	var in editRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	start, err := shared.ParseDate(in.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_failed", "invalid startDate", reqID)
		return
	}
	end, err := shared.ParseDate(in.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_failed", "invalid endDate", reqID)
		return
	}

	req, err := h.Service.Edit(r.Context(), id, user.EmployeeID, start, end, in.HalfDay, in.Reason)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.record(r, user.UserID, "leave_request.edited", "leave_request", id, in)
	api.Success(w, req, reqID)
}

func (h *Handler) cancelRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Service.Cancel(r.Context(), id, user.EmployeeID); err != nil {
		writeError(w, err, reqID)
		return
	}

	h.record(r, user.UserID, "leave_request.cancelled", "leave_request", id, nil)
	api.Success(w, map[string]string{"id": id, "status": "cancelled"}, reqID)
}

type decisionRequest struct {
	Remarks string `json:"remarks"`
	Reason  string `json:"reason"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")

	// Remarks are optional on approval, but a body that is present and
	// malformed is still a client error.
	var in decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}

	req, err := h.Service.Approve(r.Context(), id, user.UserID, in.Remarks)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.record(r, user.UserID, "leave_request.approved", "leave_request", id, in)
	h.notifyDecision(r, req.EmployeeID, "Leave request approved",
		fmt.Sprintf("Your leave request for %.1f day(s) starting %s was approved.", req.Days, shared.FormatDate(req.StartDate)))
	api.Success(w, req, reqID)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")

	var in decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}

	req, err := h.Service.Reject(r.Context(), id, user.UserID, in.Reason)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.record(r, user.UserID, "leave_request.rejected", "leave_request", id, in)
	h.notifyDecision(r, req.EmployeeID, "Leave request rejected",
		fmt.Sprintf("Your leave request starting %s was rejected: %s", shared.FormatDate(req.StartDate), in.Reason))
	api.Success(w, req, reqID)
}

func (h *Handler) listUnpaid(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" && !auth.HasPermission(user.RoleName, auth.PermLeaveApprove) {
		employeeID = user.EmployeeID
	}
	if employeeID != "" && employeeID != user.EmployeeID && !auth.HasPermission(user.RoleName, auth.PermLeaveApprove) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's requests", reqID)
		return
	}

	page := shared.ParsePage(r)
	requests, err := h.Service.Store.ListUnpaidRequests(r.Context(), employeeID, page.Limit, page.Offset)
	if err != nil {
		writeError(w, err, reqID)
		return
	}
	api.Success(w, requests, reqID)
}

func (h *Handler) approveUnpaid(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")

	var in decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}

	req, err := h.Service.ApproveUnpaid(r.Context(), id, user.UserID, in.Remarks)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.record(r, user.UserID, "unpaid_request.approved", "unpaid_leave_request", id, in)
	h.notifyDecision(r, req.EmployeeID, "Unpaid leave request approved",
		fmt.Sprintf("Your request was approved: %.1f day(s) paid, %.1f day(s) unpaid.", req.RequestedDays-req.ExcessDays, req.ExcessDays))
	api.Success(w, req, reqID)
}

func (h *Handler) rejectUnpaid(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")

	var in decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}

	req, err := h.Service.RejectUnpaid(r.Context(), id, user.UserID, in.Reason)
	if err != nil {
		writeError(w, err, reqID)
		return
	}

	h.record(r, user.UserID, "unpaid_request.rejected", "unpaid_leave_request", id, in)
	h.notifyDecision(r, req.EmployeeID, "Unpaid leave request rejected",
		fmt.Sprintf("Your unpaid leave request starting %s was rejected: %s", shared.FormatDate(req.StartDate), in.Reason))
	api.Success(w, req, reqID)
}
