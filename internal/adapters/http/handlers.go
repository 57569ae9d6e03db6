package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"academia/internal/adapters/storage"
	studentStore "academia/internal/adapters/storage/student"
	"academia/internal/application/orchestrators"
	"academia/internal/application/projections"
	"academia/internal/domain/reminder"
	"academia/internal/domain/report"
	"academia/internal/domain/roster"
	studentDomain "academia/internal/domain/student"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// pathID parses the {id} path segment. A zero return means the response has
// already been written.
func pathID(w http.ResponseWriter, r *http.Request) int {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid student id", http.StatusBadRequest)
		return 0
	}
	return id
}

// --- JSON payloads ---

type paymentPayload struct {
	PaidOn      string `json:"paidOn"`
	AmountCents int64  `json:"amountCents"`
}

type studentPayload struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	EnrollmentDate  string           `json:"enrollmentDate"`
	MonthlyFeeCents int64            `json:"monthlyFeeCents"`
	NextDueDate     string           `json:"nextDueDate"`
	Status          string           `json:"status"`
	PaymentHistory  []paymentPayload `json:"paymentHistory"`
}

func toStudentPayload(s studentDomain.Student) studentPayload {
	history := make([]paymentPayload, 0, len(s.PaymentHistory))
	for _, p := range s.PaymentHistory {
		history = append(history, paymentPayload{
			PaidOn:      p.PaidOn.Format(storage.DateFormat),
			AmountCents: p.AmountCents,
		})
	}
	return studentPayload{
		ID:              s.ID,
		Name:            s.Name,
		Email:           s.Email,
		Phone:           s.Phone,
		EnrollmentDate:  s.EnrollmentDate.Format(storage.DateFormat),
		MonthlyFeeCents: s.MonthlyFeeCents,
		NextDueDate:     s.NextDueDate.Format(storage.DateFormat),
		Status:          string(s.Status),
		PaymentHistory:  history,
	}
}

func toStudentPayloads(students []studentDomain.Student) []studentPayload {
	out := make([]studentPayload, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentPayload(s))
	}
	return out
}

// parseDate parses a calendar date in YYYY-MM-DD form.
func parseDate(raw string) (time.Time, error) {
	return time.Parse(storage.DateFormat, raw)
}

// isValidationError reports whether err is a client fault rather than an
// infrastructure failure.
func isValidationError(err error) bool {
	switch {
	case errors.Is(err, studentDomain.ErrEmptyName),
		errors.Is(err, studentDomain.ErrInvalidEmail),
		errors.Is(err, studentDomain.ErrNegativeFee),
		errors.Is(err, studentDomain.ErrMissingDueDate),
		errors.Is(err, studentDomain.ErrNonPositiveAmount),
		errors.Is(err, studentDomain.ErrDueDateNotAdvanced):
		return true
	}
	return false
}

// --- Health ---

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Students ---

type createStudentRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	EnrollmentDate  string `json:"enrollmentDate"`
	MonthlyFeeCents int64  `json:"monthlyFeeCents"`
	NextDueDate     string `json:"nextDueDate"`
}

func handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := orchestrators.CreateStudentInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		MonthlyFeeCents: req.MonthlyFeeCents,
	}
	if req.EnrollmentDate != "" {
		d, err := parseDate(req.EnrollmentDate)
		if err != nil {
			http.Error(w, "invalid enrollment date", http.StatusBadRequest)
			return
		}
		input.EnrollmentDate = d
	}
	if req.NextDueDate != "" {
		d, err := parseDate(req.NextDueDate)
		if err != nil {
			http.Error(w, "invalid next due date", http.StatusBadRequest)
			return
		}
		input.NextDueDate = d
	}

	created, err := orchestrators.ExecuteCreateStudent(r.Context(), input, orchestrators.CreateStudentDeps{
		StudentStore: stores.StudentStore,
		Now:          timeNow,
	})
	if err != nil {
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentPayload(created))
}

func handleListStudents(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetRoster(r.Context(),
		projections.GetRosterQuery{},
		projections.GetRosterDeps{StudentStore: stores.StudentStore},
		timeNow(),
	)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentPayloads(result.Students))
}

func handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id := pathID(w, r)
	if id == 0 {
		return
	}
	s, err := stores.StudentStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, studentStore.ErrNotFound) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}
	s.RefreshStatus(timeNow())
	writeJSON(w, http.StatusOK, toStudentPayload(s))
}

type updateStudentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := pathID(w, r)
	if id == 0 {
		return
	}
	var req updateStudentRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := orchestrators.ExecuteUpdateStudent(r.Context(), orchestrators.UpdateStudentInput{
		StudentID: id,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	}, orchestrators.UpdateStudentDeps{
		StudentStore: stores.StudentStore,
		Now:          timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, studentStore.ErrNotFound):
			http.Error(w, "student not found", http.StatusNotFound)
		case isValidationError(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			internalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toStudentPayload(updated))
}

func handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := pathID(w, r)
	if id == 0 {
		return
	}
	err := orchestrators.ExecuteDeleteStudent(r.Context(),
		orchestrators.DeleteStudentInput{StudentID: id},
		orchestrators.DeleteStudentDeps{StudentStore: stores.StudentStore},
	)
	if err != nil {
		if errors.Is(err, studentStore.ErrNotFound) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renewMembershipRequest struct {
	NewDueDate  string `json:"newDueDate"`
	AmountCents int64  `json:"amountCents"`
}

func handleRenewMembership(w http.ResponseWriter, r *http.Request) {
	id := pathID(w, r)
	if id == 0 {
		return
	}
	var req renewMembershipRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	newDue, err := parseDate(req.NewDueDate)
	if err != nil {
		http.Error(w, "invalid new due date", http.StatusBadRequest)
		return
	}

	renewed, err := orchestrators.ExecuteRenewMembership(r.Context(), orchestrators.RenewMembershipInput{
		StudentID:   id,
		NewDueDate:  newDue,
		AmountCents: req.AmountCents,
	}, orchestrators.RenewMembershipDeps{
		StudentStore: stores.StudentStore,
		Now:          timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, studentStore.ErrNotFound):
			http.Error(w, "student not found", http.StatusNotFound)
		case isValidationError(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			internalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toStudentPayload(renewed))
}

// --- Roster ---

type rosterResponse struct {
	Students []studentPayload `json:"students"`
	Total    int              `json:"total"`
}

func handleGetRoster(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := roster.Criteria{
		Search: q.Get("q"),
		Status: roster.ParseStatusFilter(q.Get("status")),
		Sort:   roster.ParseSortKey(q.Get("sort")),
		Order:  roster.ParseSortOrder(q.Get("dir")),
	}

	result, err := projections.QueryGetRoster(r.Context(),
		projections.GetRosterQuery{Criteria: criteria},
		projections.GetRosterDeps{StudentStore: stores.StudentStore},
		timeNow(),
	)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rosterResponse{
		Students: toStudentPayloads(result.Students),
		Total:    result.Total,
	})
}

// --- Dashboard ---

type dashboardResponse struct {
	TotalStudents     int       `json:"totalStudents"`
	InactiveStudents  int       `json:"inactiveStudents"`
	DueTodayStudents  int       `json:"dueTodayStudents"`
	Year              int       `json:"year"`
	MonthRevenueCents int64     `json:"monthRevenueCents"`
	YearRevenueCents  [12]int64 `json:"yearRevenueCents"`
}

func handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(),
		projections.GetDashboardDeps{StudentStore: stores.StudentStore},
		timeNow(),
	)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		TotalStudents:     result.TotalStudents,
		InactiveStudents:  result.InactiveStudents,
		DueTodayStudents:  result.DueTodayStudents,
		Year:              result.Year,
		MonthRevenueCents: result.MonthRevenueCents,
		YearRevenueCents:  result.YearRevenueCents,
	})
}

// --- Messaging settings ---

type messagingSettingsPayload struct {
	AccountSID     string `json:"accountSid"`
	AuthToken      string `json:"authToken"`
	SenderNumber   string `json:"senderNumber"`
	DefaultMessage string `json:"defaultMessage"`
}

func handleGetMessagingSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := stores.SettingsStore.Get(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messagingSettingsPayload{
		AccountSID:     settings.AccountSID,
		AuthToken:      settings.AuthToken,
		SenderNumber:   settings.SenderNumber,
		DefaultMessage: settings.DefaultMessage,
	})
}

func handlePutMessagingSettings(w http.ResponseWriter, r *http.Request) {
	var req messagingSettingsPayload
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	settings := reminder.Settings{
		AccountSID:     req.AccountSID,
		AuthToken:      req.AuthToken,
		SenderNumber:   req.SenderNumber,
		DefaultMessage: req.DefaultMessage,
	}
	if err := stores.SettingsStore.Save(r.Context(), settings); err != nil {
		internalError(w, err)
		return
	}
	slog.Info("settings_event", "event", "messaging_settings_saved")
	writeJSON(w, http.StatusOK, req)
}

// --- Reminder dispatch ---

type dispatchRequest struct {
	StudentIDs []int  `json:"studentIds"`
	Message    string `json:"message"`
}

type outcomePayload struct {
	StudentID   int    `json:"studentId"`
	StudentName string `json:"studentName"`
	Channel     string `json:"channel,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	Result      string `json:"result"`
	MessageID   string `json:"messageId,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type dispatchResponse struct {
	RunID     string           `json:"runId"`
	Delivered int              `json:"delivered"`
	Failed    int              `json:"failed"`
	Outcomes  []outcomePayload `json:"outcomes"`
}

func handleDispatchReminders(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteDispatchReminders(r.Context(), orchestrators.DispatchRemindersInput{
		StudentIDs: req.StudentIDs,
		Message:    req.Message,
	}, orchestrators.DispatchRemindersDeps{
		StudentStore:  stores.StudentStore,
		SettingsStore: stores.SettingsStore,
		WhatsApp:      whatsappSender,
		Email:         emailSender,
		EmailFrom:     emailFromAddress,
		GenerateID:    generateID,
		Now:           timeNow,
		CallTimeout:   dispatchTimeout,
		MaxInFlight:   dispatchMaxInFlight,
	})
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrNoSelection),
			errors.Is(err, reminder.ErrEmptyMessage),
			errors.Is(err, reminder.ErrMissingAccountSID),
			errors.Is(err, reminder.ErrMissingAuthToken),
			errors.Is(err, reminder.ErrMissingSenderNumber):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			internalError(w, err)
		}
		return
	}

	resp := dispatchResponse{RunID: result.RunID}
	for _, o := range result.Outcomes {
		if o.Delivered() {
			resp.Delivered++
		} else {
			resp.Failed++
		}
		resp.Outcomes = append(resp.Outcomes, outcomePayload{
			StudentID:   o.StudentID,
			StudentName: o.StudentName,
			Channel:     o.Channel,
			Recipient:   o.Recipient,
			Result:      o.Result,
			MessageID:   o.MessageID,
			Reason:      o.Reason,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Reports ---

type reportRequest struct {
	Type string `json:"type"`
}

func handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteGenerateReport(r.Context(),
		orchestrators.GenerateReportInput{Type: req.Type},
		orchestrators.GenerateReportDeps{
			StudentStore: stores.StudentStore,
			Renderer:     pdfRenderer,
			Now:          timeNow,
		},
	)
	if err != nil {
		if errors.Is(err, report.ErrInvalidType) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.Header().Set("X-Report-Count", strconv.Itoa(result.Count))
	w.Write(result.Content)
}
