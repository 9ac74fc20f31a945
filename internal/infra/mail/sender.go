package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/imob-crm/internal/entity"
)

var reminderTemplate = template.Must(template.New("followup_reminder").Parse(`<p>Olá, {{.OwnerName}}!</p>
<p>O follow-up com <strong>{{.LeadName}}</strong> estava marcado para <strong>{{.DueText}}</strong> e ainda não foi feito.</p>
{{if .Note}}<p>Anotação: {{.Note}}</p>{{end}}
{{if .LeadPhone}}<p>Telefone do lead: {{.LeadPhone}}</p>{{end}}
<p>Registre a interação no CRM assim que falar com o cliente.</p>`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) SendFollowupReminder(lead *entity.Lead, dueText string) error {
	if lead.OwnerEmail == "" {
		return entity.ErrNoRecipient
	}

	m, err := s.buildReminder(lead, dueText)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) buildReminder(lead *entity.Lead, dueText string) (*gomail.Message, error) {
	data := FollowupReminderData{
		OwnerName: lead.OwnerName,
		LeadName:  lead.Name,
		LeadPhone: lead.Phone,
		DueText:   dueText,
		Note:      lead.FollowupNote,
	}

	body, err := renderReminder(data)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", lead.OwnerEmail)
	m.SetHeader("Subject", fmt.Sprintf("Follow-up atrasado: %s", lead.Name))
	m.SetBody("text/html", body)
	return m, nil
}

func renderReminder(data FollowupReminderData) (string, error) {
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}
