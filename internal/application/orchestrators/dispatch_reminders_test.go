package orchestrators_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	emailAdapter "academia/internal/adapters/email"
	"academia/internal/adapters/whatsapp"
	"academia/internal/application/orchestrators"
	"academia/internal/domain/reminder"
	"academia/internal/domain/student"
)

type fakeLister struct {
	students []student.Student
	err      error
}

func (f *fakeLister) List(_ context.Context) ([]student.Student, error) {
	return f.students, f.err
}

type fakeSettingsStore struct {
	settings reminder.Settings
	saved    *reminder.Settings
}

func (f *fakeSettingsStore) Get(_ context.Context) (reminder.Settings, error) {
	return f.settings, nil
}

func (f *fakeSettingsStore) Save(_ context.Context, v reminder.Settings) error {
	f.saved = &v
	return nil
}

// fakeWhatsApp records sends and fails for phones listed in failFor.
type fakeWhatsApp struct {
	mu      sync.Mutex
	sent    []whatsapp.SendRequest
	failFor map[string]bool
}

func (f *fakeWhatsApp) Send(_ context.Context, req whatsapp.SendRequest) (whatsapp.SendResult, error) {
	f.mu.Lock()
	f.sent = append(f.sent, req)
	f.mu.Unlock()
	if f.failFor[req.To] {
		return whatsapp.SendResult{}, errors.New("provider rejected message")
	}
	return whatsapp.SendResult{MessageID: "SM-" + req.To, SentAt: time.Now()}, nil
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []emailAdapter.SendRequest
}

func (f *fakeEmail) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	f.mu.Lock()
	f.sent = append(f.sent, req)
	f.mu.Unlock()
	return emailAdapter.SendResult{MessageID: "EM-1", SentAt: time.Now()}, nil
}

func validSettings() reminder.Settings {
	return reminder.Settings{
		AccountSID:     "AC123",
		AuthToken:      "secret",
		SenderNumber:   "+14155550100",
		DefaultMessage: "Your membership payment is due.",
	}
}

func dispatchDeps(lister *fakeLister, settings *fakeSettingsStore, wa *fakeWhatsApp, em *fakeEmail) orchestrators.DispatchRemindersDeps {
	deps := orchestrators.DispatchRemindersDeps{
		StudentStore:  lister,
		SettingsStore: settings,
		WhatsApp:      wa,
		GenerateID:    func() string { return "run-1" },
		Now:           time.Now,
		CallTimeout:   time.Second,
	}
	if em != nil {
		deps.Email = em
		deps.EmailFrom = "Academia <noreply@academia.example>"
	}
	return deps
}

// TestDispatchPartialFailure replays the canonical scenario: 3 selected
// students, the 2nd provider call fails. Exactly one failed outcome at the
// 2nd position; the others are delivered.
func TestDispatchPartialFailure(t *testing.T) {
	lister := &fakeLister{students: []student.Student{
		{ID: 1, Name: "Ana", Phone: "+5511000000001"},
		{ID: 2, Name: "Bia", Phone: "+5511000000002"},
		{ID: 3, Name: "Caio", Phone: "+5511000000003"},
	}}
	wa := &fakeWhatsApp{failFor: map[string]bool{"+5511000000002": true}}

	result, err := orchestrators.ExecuteDispatchReminders(context.Background(),
		orchestrators.DispatchRemindersInput{StudentIDs: []int{1, 2, 3}},
		dispatchDeps(lister, &fakeSettingsStore{settings: validSettings()}, wa, nil))
	if err != nil {
		t.Fatalf("ExecuteDispatchReminders() error = %v", err)
	}

	if len(result.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(result.Outcomes))
	}
	failed := 0
	for i, o := range result.Outcomes {
		if o.StudentID != i+1 {
			t.Errorf("outcome %d is for student %d, want %d", i, o.StudentID, i+1)
		}
		if !o.Delivered() {
			failed++
			if o.StudentID != 2 {
				t.Errorf("failed outcome at student %d, want student 2", o.StudentID)
			}
			if o.Reason == "" {
				t.Error("failed outcome carries no reason")
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly 1 failure, got %d", failed)
	}
	if len(wa.sent) != 3 {
		t.Errorf("every student must be attempted exactly once, got %d sends", len(wa.sent))
	}
}

// TestDispatchUsesDefaultMessage verifies override-then-default resolution.
func TestDispatchUsesDefaultMessage(t *testing.T) {
	lister := &fakeLister{students: []student.Student{{ID: 1, Name: "Ana", Phone: "+5511000000001"}}}
	wa := &fakeWhatsApp{}

	_, err := orchestrators.ExecuteDispatchReminders(context.Background(),
		orchestrators.DispatchRemindersInput{StudentIDs: []int{1}},
		dispatchDeps(lister, &fakeSettingsStore{settings: validSettings()}, wa, nil))
	if err != nil {
		t.Fatalf("ExecuteDispatchReminders() error = %v", err)
	}
	if wa.sent[0].Body != "Your membership payment is due." {
		t.Errorf("body = %q, want configured default", wa.sent[0].Body)
	}

	wa2 := &fakeWhatsApp{}
	_, err = orchestrators.ExecuteDispatchReminders(context.Background(),
		orchestrators.DispatchRemindersInput{StudentIDs: []int{1}, Message: "Custom"},
		dispatchDeps(lister, &fakeSettingsStore{settings: validSettings()}, wa2, nil))
	if err != nil {
		t.Fatalf("ExecuteDispatchReminders() error = %v", err)
	}
	if wa2.sent[0].Body != "Custom" {
		t.Errorf("body = %q, want override", wa2.sent[0].Body)
	}
}

// TestDispatchEmailFallback verifies a phoneless student is reached over
// email when an email sender is wired.
func TestDispatchEmailFallback(t *testing.T) {
	lister := &fakeLister{students: []student.Student{
		{ID: 1, Name: "Ana", Phone: "+5511000000001"},
		{ID: 2, Name: "Bia", Email: "bia@example.com"},
	}}
	wa := &fakeWhatsApp{}
	em := &fakeEmail{}

	result, err := orchestrators.ExecuteDispatchReminders(context.Background(),
		orchestrators.DispatchRemindersInput{StudentIDs: []int{1, 2}},
		dispatchDeps(lister, &fakeSettingsStore{settings: validSettings()}, wa, em))
	if err != nil {
		t.Fatalf("ExecuteDispatchReminders() error = %v", err)
	}

	if result.Outcomes[1].Channel != reminder.ChannelEmail || !result.Outcomes[1].Delivered() {
		t.Errorf("outcome 2 = %+v, want delivered over email", result.Outcomes[1])
	}
	if len(em.sent) != 1 || em.sent[0].To[0] != "bia@example.com" {
		t.Errorf("email sends = %+v", em.sent)
	}
}

// TestDispatchNoReachableContact verifies a student with no phone and no
// email channel still yields exactly one failed outcome.
func TestDispatchNoReachableContact(t *testing.T) {
	lister := &fakeLister{students: []student.Student{{ID: 1, Name: "Ana"}}}

	result, err := orchestrators.ExecuteDispatchReminders(context.Background(),
		orchestrators.DispatchRemindersInput{StudentIDs: []int{1}},
		dispatchDeps(lister, &fakeSettingsStore{settings: validSettings()}, &fakeWhatsApp{}, nil))
	if err != nil {
		t.Fatalf("ExecuteDispatchReminders() error = %v", err)
	}
	if len(result.Outcomes) != 1 || result.Outcomes[0].Delivered() {
		t.Errorf("outcomes = %+v, want single failure", result.Outcomes)
	}
}

// TestDispatchUnknownSelection verifies ids missing from the roster record
// failed outcomes instead of being silently dropped.
func TestDispatchUnknownSelection(t *testing.T) {
	lister := &fakeLister{students: []student.Student{{ID: 1, Name: "Ana", Phone: "+5511000000001"}}}

	result, err := orchestrators.ExecuteDispatchReminders(context.Background(),
		orchestrators.DispatchRemindersInput{StudentIDs: []int{1, 99}},
		dispatchDeps(lister, &fakeSettingsStore{settings: validSettings()}, &fakeWhatsApp{}, nil))
	if err != nil {
		t.Fatalf("ExecuteDispatchReminders() error = %v", err)
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(result.Outcomes))
	}
	last := result.Outcomes[1]
	if last.StudentID != 99 || last.Delivered() {
		t.Errorf("unknown id outcome = %+v", last)
	}
}

// TestDispatchValidation tests empty selection and unusable settings.
func TestDispatchValidation(t *testing.T) {
	lister := &fakeLister{students: []student.Student{{ID: 1, Name: "Ana", Phone: "+55"}}}

	_, err := orchestrators.ExecuteDispatchReminders(context.Background(),
		orchestrators.DispatchRemindersInput{},
		dispatchDeps(lister, &fakeSettingsStore{settings: validSettings()}, &fakeWhatsApp{}, nil))
	if !errors.Is(err, reminder.ErrNoSelection) {
		t.Errorf("empty selection error = %v, want ErrNoSelection", err)
	}

	_, err = orchestrators.ExecuteDispatchReminders(context.Background(),
		orchestrators.DispatchRemindersInput{StudentIDs: []int{1}},
		dispatchDeps(lister, &fakeSettingsStore{settings: reminder.Settings{DefaultMessage: "due"}}, &fakeWhatsApp{}, nil))
	if err == nil {
		t.Error("expected error when WhatsApp targets exist but settings are incomplete")
	}
}
