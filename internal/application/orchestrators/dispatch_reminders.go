package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	emailAdapter "academia/internal/adapters/email"
	"academia/internal/adapters/whatsapp"
	settingsStore "academia/internal/adapters/storage/settings"
	"academia/internal/domain/reminder"
	"academia/internal/domain/student"
)

// StudentLister defines the student access needed by dispatch and reports.
type StudentLister interface {
	List(ctx context.Context) ([]student.Student, error)
}

// DefaultMaxInFlight bounds concurrent provider calls during a dispatch run.
const DefaultMaxInFlight = 4

// DispatchRemindersInput carries input for a reminder dispatch run.
type DispatchRemindersInput struct {
	StudentIDs []int  // explicit operator selection
	Message    string // override; empty falls back to the configured default
}

// DispatchRemindersDeps holds dependencies for DispatchReminders.
type DispatchRemindersDeps struct {
	StudentStore  StudentLister
	SettingsStore settingsStore.Store
	WhatsApp      whatsapp.Sender
	Email         emailAdapter.Sender // optional: nil disables the email fallback
	EmailFrom     string
	GenerateID    func() string
	Now           func() time.Time
	CallTimeout   time.Duration // per-call bound; zero uses the sender default
	MaxInFlight   int           // zero uses DefaultMaxInFlight
}

// DispatchRemindersResult carries the outcome of a dispatch run.
type DispatchRemindersResult struct {
	RunID    string
	Outcomes []reminder.Outcome
}

// ExecuteDispatchReminders sends one payment reminder per selected student
// and collects per-recipient outcomes.
//
// Fire-and-collect semantics: every selected student is attempted exactly
// once; a failure neither cancels nor rolls back the others; there is no
// retry. The run completes when every target has produced an outcome.
// PRE: at least one student selected; a message body is resolvable
// POST: len(Outcomes) == len(targets), ordered as the roster enumerates them
func ExecuteDispatchReminders(ctx context.Context, input DispatchRemindersInput, deps DispatchRemindersDeps) (DispatchRemindersResult, error) {
	if len(input.StudentIDs) == 0 {
		return DispatchRemindersResult{}, reminder.ErrNoSelection
	}

	settings, err := deps.SettingsStore.Get(ctx)
	if err != nil {
		return DispatchRemindersResult{}, err
	}
	body, err := settings.ResolveMessage(input.Message)
	if err != nil {
		return DispatchRemindersResult{}, err
	}

	students, err := deps.StudentStore.List(ctx)
	if err != nil {
		return DispatchRemindersResult{}, err
	}

	// Targets follow roster enumeration order, not selection order.
	selected := make(map[int]bool, len(input.StudentIDs))
	for _, id := range input.StudentIDs {
		selected[id] = true
	}
	var targets []student.Student
	for _, s := range students {
		if selected[s.ID] {
			targets = append(targets, s)
			delete(selected, s.ID)
		}
	}

	needsWhatsApp := false
	for _, t := range targets {
		if t.Phone != "" {
			needsWhatsApp = true
			break
		}
	}
	if needsWhatsApp {
		if err := settings.Validate(); err != nil {
			return DispatchRemindersResult{}, err
		}
	}

	timeout := deps.CallTimeout
	if timeout <= 0 {
		timeout = whatsapp.DefaultCallTimeout
	}
	limit := deps.MaxInFlight
	if limit <= 0 {
		limit = DefaultMaxInFlight
	}

	outcomes := make([]reminder.Outcome, len(targets))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, t := range targets {
		g.Go(func() error {
			outcomes[i] = dispatchOne(ctx, t, body, settings, deps, timeout)
			return nil
		})
	}
	g.Wait()

	// Selected ids missing from the roster still produce an outcome.
	for _, id := range input.StudentIDs {
		if selected[id] {
			outcomes = append(outcomes, reminder.Outcome{
				StudentID: id,
				Result:    reminder.OutcomeFailed,
				Reason:    "student not found",
			})
			selected[id] = false
		}
	}

	runID := deps.GenerateID()
	delivered := 0
	for _, o := range outcomes {
		if o.Delivered() {
			delivered++
		}
	}
	slog.Info("reminder_event", "event", "dispatch_completed",
		"run_id", runID, "targets", len(outcomes), "delivered", delivered, "failed", len(outcomes)-delivered)

	return DispatchRemindersResult{RunID: runID, Outcomes: outcomes}, nil
}

// dispatchOne sends a single reminder and maps the result to an outcome.
// WhatsApp is the primary channel; students without a phone fall back to
// email when an email sender is configured.
func dispatchOne(ctx context.Context, t student.Student, body string, settings reminder.Settings, deps DispatchRemindersDeps, timeout time.Duration) reminder.Outcome {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if t.Phone != "" {
		res, err := deps.WhatsApp.Send(callCtx, whatsapp.SendRequest{
			To:       t.Phone,
			Body:     body,
			Settings: settings,
		})
		if err != nil {
			return reminder.Outcome{
				StudentID:   t.ID,
				StudentName: t.Name,
				Channel:     reminder.ChannelWhatsApp,
				Recipient:   t.Phone,
				Result:      reminder.OutcomeFailed,
				Reason:      err.Error(),
			}
		}
		return reminder.Outcome{
			StudentID:   t.ID,
			StudentName: t.Name,
			Channel:     reminder.ChannelWhatsApp,
			Recipient:   t.Phone,
			Result:      reminder.OutcomeDelivered,
			MessageID:   res.MessageID,
		}
	}

	if deps.Email != nil && t.Email != "" {
		res, err := deps.Email.Send(callCtx, emailAdapter.SendRequest{
			To:      []string{t.Email},
			From:    deps.EmailFrom,
			Subject: "Payment reminder",
			HTML:    emailAdapter.RenderMarkdown(body),
		})
		if err != nil {
			return reminder.Outcome{
				StudentID:   t.ID,
				StudentName: t.Name,
				Channel:     reminder.ChannelEmail,
				Recipient:   t.Email,
				Result:      reminder.OutcomeFailed,
				Reason:      err.Error(),
			}
		}
		return reminder.Outcome{
			StudentID:   t.ID,
			StudentName: t.Name,
			Channel:     reminder.ChannelEmail,
			Recipient:   t.Email,
			Result:      reminder.OutcomeDelivered,
			MessageID:   res.MessageID,
		}
	}

	return reminder.Outcome{
		StudentID:   t.ID,
		StudentName: t.Name,
		Result:      reminder.OutcomeFailed,
		Reason:      "no reachable contact: student has no phone and no email channel is configured",
	}
}
