package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type FormState int

const (
	FormIdle FormState = iota
	FormEditing
	FormSubmitting
)

func (s FormState) String() string {
	switch s {
	case FormEditing:
		return "editing"
	case FormSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// FollowupForm é a máquina de estados do diálogo de follow-up de um lead:
// Idle -> Editing -> Submitting -> Idle (sucesso) ou Editing (erro).
// Não há estado terminal; Close apenas faz o resultado de um envio em voo ser ignorado.
type FollowupForm struct {
	mu sync.Mutex

	leadID    string
	actorName string
	location  *time.Location
	scheduler FollowupScheduler
	remover   FollowupRemover
	onSaved   func()

	state       FormState
	current     *time.Time
	currentNote string

	date string
	time string
	note string

	lastErr error
	closed  bool
}

// NewFollowupForm abre o formulário pré-preenchido com o follow-up atual do lead.
// onSaved é chamado após cada gravação confirmada para o chamador recarregar o lead.
func NewFollowupForm(lead *entity.Lead, actorName string, loc *time.Location, scheduler FollowupScheduler, remover FollowupRemover, onSaved func()) *FollowupForm {
	if loc == nil {
		loc = time.UTC
	}
	f := &FollowupForm{
		leadID:    lead.ID,
		actorName: actorName,
		location:  loc,
		scheduler: scheduler,
		remover:   remover,
		onSaved:   onSaved,
		state:     FormIdle,
	}
	if lead.HasFollowup() {
		at := *lead.FollowupAt
		f.current = &at
		f.currentNote = lead.FollowupNote
	}
	f.resetFields()
	return f
}

func (f *FollowupForm) resetFields() {
	f.date, f.time, f.note = "", "", f.currentNote
	if f.current != nil {
		local := f.current.In(f.location)
		f.date = local.Format("2006-01-02")
		f.time = local.Format("15:04")
	}
}

func (f *FollowupForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err é o erro exibido no banner; nil quando não há falha pendente.
func (f *FollowupForm) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *FollowupForm) HasFollowup() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current != nil
}

func (f *FollowupForm) Values() FollowupInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FollowupInput{Date: f.date, Time: f.time, Note: f.note, ActorName: f.actorName}
}

func (f *FollowupForm) NoteRemaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return NoteRemaining(f.note)
}

// Edit atualiza os campos. Uma nota acima do limite é recusada aqui mesmo e a
// nota anterior é mantida.
func (f *FollowupForm) Edit(date, clock, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == FormSubmitting {
		return entity.ErrFollowupInFlight
	}

	f.date = date
	f.time = clock
	f.state = FormEditing

	if verr := ValidateFollowupNote(note); verr != nil {
		return validationError([]ValidationError{*verr})
	}
	f.note = note
	return nil
}

// Cancel descarta a edição e volta ao valor atual.
func (f *FollowupForm) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return
	}
	f.resetFields()
	f.lastErr = nil
	f.state = FormIdle
}

func (f *FollowupForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return entity.ErrFollowupInFlight
	}
	input := FollowupInput{Date: f.date, Time: f.time, Note: f.note, ActorName: f.actorName}
	f.state = FormSubmitting
	f.lastErr = nil
	f.mu.Unlock()

	out, err := f.scheduler.Execute(ctx, f.leadID, input)

	return f.finish(err, func() {
		if at, perr := time.Parse(time.RFC3339, out.FollowupAt); perr == nil {
			f.current = &at
		}
		f.currentNote = out.Note
		f.resetFields()
	})
}

// Remove só é oferecido quando existe um follow-up.
func (f *FollowupForm) Remove(ctx context.Context) error {
	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return entity.ErrFollowupInFlight
	}
	if f.current == nil {
		f.mu.Unlock()
		return &DomainError{Code: CodeFollowupNotFound, Message: entity.ErrNoFollowup.Error()}
	}
	f.state = FormSubmitting
	f.lastErr = nil
	f.mu.Unlock()

	err := f.remover.Execute(ctx, f.leadID, f.actorName)

	return f.finish(err, func() {
		f.current = nil
		f.currentNote = ""
		f.resetFields()
	})
}

// Close marca o diálogo como fechado. Um envio em andamento termina, mas seu
// resultado não altera mais o formulário nem dispara onSaved.
func (f *FollowupForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *FollowupForm) finish(err error, onSuccess func()) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return err
	}
	if err != nil {
		f.state = FormEditing
		f.lastErr = err
		f.mu.Unlock()
		return err
	}
	onSuccess()
	f.state = FormIdle
	notify := f.onSaved
	f.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}
