package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/review"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/timesheet"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	BreakStart(w http.ResponseWriter, r *http.Request)
	BreakEnd(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	WhosWorking(w http.ResponseWriter, r *http.Request)
	Timesheets(w http.ResponseWriter, r *http.Request)
	ListReview(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	ReviewHistory(w http.ResponseWriter, r *http.Request)
	GetPolicy(w http.ResponseWriter, r *http.Request)
	UpdatePolicy(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	punchService     punch.PunchService
	statusService    status.StatusService
	timesheetService timesheet.TimesheetService
	reviewService    review.ReviewService
	policyService    company.PolicyService
}

func NewAttendanceHandler(
	punchService punch.PunchService,
	statusService status.StatusService,
	timesheetService timesheet.TimesheetService,
	reviewService review.ReviewService,
	policyService company.PolicyService,
) AttendanceHandler {
	return &attendanceHandlerImpl{
		punchService:     punchService,
		statusService:    statusService,
		timesheetService: timesheetService,
		reviewService:    reviewService,
		policyService:    policyService,
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, punch.TypeClockIn)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, punch.TypeClockOut)
}

// BreakStart implements AttendanceHandler.
func (h *attendanceHandlerImpl) BreakStart(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, punch.TypeBreakStart)
}

// BreakEnd implements AttendanceHandler.
func (h *attendanceHandlerImpl) BreakEnd(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, punch.TypeBreakEnd)
}

func (h *attendanceHandlerImpl) record(w http.ResponseWriter, r *http.Request, punchType punch.Type) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	var req punch.PunchRequest
	// An empty body is a plain app punch without location.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Punch decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	employeeID, err := punchTarget(identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.punchService.Record(r.Context(), req.ToRecordRequest(identity.CompanyID, punchType))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Replayed {
		response.SuccessWithMessage(w, result.Message, punch.NewRecordPunchResponse(result))
		return
	}
	response.Created(w, result.Message, punch.NewRecordPunchResponse(result))
}

// punchTarget resolves whose ledger the punch is for. Punching for somebody else
// needs the punch_other permission and a KIOSK or MANUAL method.
func punchTarget(identity user.Identity, req punch.PunchRequest) (string, error) {
	if req.EmployeeID == "" || req.EmployeeID == identity.EmployeeID {
		if identity.EmployeeID == "" {
			return "", user.ErrEmployeeIDRequired
		}
		return identity.EmployeeID, nil
	}

	if !user.HasPermission(identity.Role, user.PermissionAttendancePunchOther) {
		return "", user.ErrInsufficientPermissions
	}
	if req.PunchMethod != punch.MethodKiosk && req.PunchMethod != punch.MethodManual {
		return "", punch.ErrPunchForOther
	}
	return req.EmployeeID, nil
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	employeeID := identity.EmployeeID
	if requested := r.URL.Query().Get("employee_id"); requested != "" && requested != employeeID {
		if !user.HasPermission(identity.Role, user.PermissionAttendanceViewAll) {
			response.HandleError(w, user.ErrInsufficientPermissions)
			return
		}
		employeeID = requested
	}
	if employeeID == "" {
		response.HandleError(w, user.ErrEmployeeIDRequired)
		return
	}

	es, err := h.statusService.EmployeeStatus(r.Context(), employeeID, identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, es)
}

// WhosWorking implements AttendanceHandler.
func (h *attendanceHandlerImpl) WhosWorking(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	board, err := h.statusService.WhoIsWorking(r.Context(), identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, board)
}

// Timesheets implements AttendanceHandler.
func (h *attendanceHandlerImpl) Timesheets(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	query := r.URL.Query()
	req := timesheet.AggregateRequest{
		CompanyID:   identity.CompanyID,
		EmployeeIDs: splitIDs(query["employee_id"]),
		Period:      timesheet.Period(query.Get("period")),
		StartDate:   query.Get("start"),
		EndDate:     query.Get("end"),
	}

	// Without view_all the caller only sees their own timesheet.
	if !user.HasPermission(identity.Role, user.PermissionAttendanceViewAll) {
		for _, id := range req.EmployeeIDs {
			if id != identity.EmployeeID {
				response.HandleError(w, user.ErrInsufficientPermissions)
				return
			}
		}
		if identity.EmployeeID == "" {
			response.HandleError(w, user.ErrEmployeeIDRequired)
			return
		}
		req.EmployeeIDs = []string{identity.EmployeeID}
	}

	ts, err := h.timesheetService.Aggregate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, timesheet.NewTimesheetResponse(ts))
}

// splitIDs accepts both repeated and comma separated employee_id parameters.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// ListReview implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	req := review.ListRequest{
		DaysBack: r.URL.Query().Get("days_back"),
		Status:   r.URL.Query().Get("status"),
	}

	result, err := h.reviewService.ListForReview(r.Context(), identity.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Review implements AttendanceHandler.
func (h *attendanceHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	var req review.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Review decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	p, err := h.reviewService.Apply(r.Context(), identity.CompanyID, reviewerID(identity), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch review updated", punch.NewPunchResponse(p))
}

func reviewerID(identity user.Identity) string {
	if identity.UserID != "" {
		return identity.UserID
	}
	return identity.EmployeeID
}

// ReviewHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) ReviewHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	history, err := h.reviewService.History(r.Context(), chi.URLParam(r, "id"), identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]review.HistoryResponse, 0, len(history))
	for _, rv := range history {
		result = append(result, review.NewHistoryResponse(rv))
	}
	response.Success(w, result)
}

// GetPolicy implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetPolicy(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	policy, err := h.policyService.Get(r.Context(), identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, company.NewPolicyResponse(policy))
}

// UpdatePolicy implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	var req company.UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update policy decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	policy, err := h.policyService.Update(r.Context(), identity.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance policy updated", company.NewPolicyResponse(policy))
}
