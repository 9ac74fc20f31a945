package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/config"
	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/logger"
)

var nonDigits = regexp.MustCompile(`\D`)

type Client struct {
	accessToken  string
	phoneID      string
	baseURL      string
	templateName string
	http         *http.Client
	log          *zap.Logger
}

func NewClient(cfg config.WhatsAppConfig, log *zap.Logger) *Client {
	return &Client{
		accessToken:  cfg.AccessToken,
		phoneID:      cfg.PhoneID,
		baseURL:      cfg.BaseURL,
		templateName: cfg.TemplateName,
		http:         &http.Client{Timeout: 10 * time.Second},
		log:          logger.OrNop(log),
	}
}

// SendFollowupReminder avisa o corretor responsável pelo lead.
func (c *Client) SendFollowupReminder(lead *entity.Lead, dueText string) error {
	if lead.OwnerPhone == "" {
		return entity.ErrNoRecipient
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return c.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  normalizePhone(lead.OwnerPhone),
		TemplateName: c.templateName,
		Parameters:   []string{lead.OwnerName, lead.Name, dueText},
	})
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	if c.accessToken == "" || c.phoneID == "" {
		return fmt.Errorf("whatsapp não configurado")
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                input.PhoneNumber,
		"type":              "template",
		"template": map[string]interface{}{
			"name": input.TemplateName,
			"language": map[string]string{
				"code": "pt_BR",
			},
			"components": []map[string]interface{}{
				{
					"type":       "body",
					"parameters": convertParametersToAPI(input.Parameters),
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao serializar payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao enviar mensagem: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var result SendMessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("erro ao parsear resposta: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("whatsapp api error: %d", resp.StatusCode)
	}

	c.log.Info("lembrete enviado por whatsapp", zap.String("to", input.PhoneNumber))
	return nil
}

func convertParametersToAPI(params []string) []map[string]string {
	result := make([]map[string]string, 0, len(params))
	for _, param := range params {
		result = append(result, map[string]string{
			"type": "text",
			"text": param,
		})
	}
	return result
}

// normalizePhone deixa só dígitos e prefixa o DDI do Brasil quando falta.
func normalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}
