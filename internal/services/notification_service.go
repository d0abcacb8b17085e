package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"os"
	"time"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
	"github.com/google/uuid"
	svix "github.com/svix/svix-webhooks/go"
)

// Notifier define las notificaciones que el ciclo de actualización puede
// emitir. Las dos rutas son excluyentes dentro de un mismo ciclo: o se avisa
// que hace falta rebalancear, o que la configuración de objetivos es inválida.
type Notifier interface {
	NotifyRebalanceNeeded(user models.User, maxDeviation float64) error
	NotifyMisconfigured(user models.User, combinedTarget float64) error
}

// EmailNotifier envía las notificaciones por correo usando la configuración
// SMTP de las variables de entorno
type EmailNotifier struct{}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{}
}

func (n *EmailNotifier) NotifyRebalanceNeeded(user models.User, maxDeviation float64) error {
	subject := "Rebalanceo necesario"
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Rebalanceo necesario</h2>
		<p>Alguna de tus posiciones superó el umbral de desviación configurado.</p>
		<p>Desviación máxima actual: <strong>%.1f%%</strong></p>
		<p>Considerá rebalancear tu portafolio.</p>
	</body>
	</html>
	`, maxDeviation)

	return sendEmail(user.Email, subject, body)
}

func (n *EmailNotifier) NotifyMisconfigured(user models.User, combinedTarget float64) error {
	subject := "Configuración de objetivos inválida"
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Configuración de objetivos inválida</h2>
		<p>La suma de los porcentajes objetivo de tu portafolio es <strong>%.1f%%</strong>.</p>
		<p>Ajustala a 100%% para poder rebalancear.</p>
	</body>
	</html>
	`, combinedTarget)

	return sendEmail(user.Email, subject, body)
}

// sendEmail envía un correo HTML. Si no hay configuración SMTP solo registra
// el mensaje y simula éxito, igual que el envío de recuperación de contraseña.
func sendEmail(email, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("FROM_EMAIL")

	if smtpHost == "" || smtpPort == "" || smtpUser == "" || smtpPass == "" {
		log.Printf("Configuración de email no encontrada. Notificación para %s: %s", email, subject)
		return nil
	}

	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)

	message := fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", email, subject, body)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, fromEmail, []string{email}, []byte(message))
	if err != nil {
		log.Printf("Error al enviar email de notificación: %v", err)
		return err
	}

	return nil
}

// WebhookNotifier entrega las notificaciones como webhooks firmados con el
// esquema estándar de Svix, para que el receptor pueda verificar la firma
type WebhookNotifier struct {
	url    string
	wh     *svix.Webhook
	client *http.Client
}

// NewWebhookNotifier crea el notificador de webhooks. La URL de destino y el
// secreto de firma vienen de NOTIFY_WEBHOOK_URL y NOTIFY_WEBHOOK_SECRET.
func NewWebhookNotifier(url, secret string) (*WebhookNotifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}

	return &WebhookNotifier{
		url:    url,
		wh:     wh,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (n *WebhookNotifier) NotifyRebalanceNeeded(user models.User, maxDeviation float64) error {
	return n.send(map[string]interface{}{
		"type":          "rebalance.needed",
		"user_id":       user.ID,
		"max_deviation": maxDeviation,
	})
}

func (n *WebhookNotifier) NotifyMisconfigured(user models.User, combinedTarget float64) error {
	return n.send(map[string]interface{}{
		"type":            "portfolio.misconfigured",
		"user_id":         user.ID,
		"combined_target": combinedTarget,
	})
}

func (n *WebhookNotifier) send(payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msgID := "msg_" + uuid.New().String()
	timestamp := time.Now()

	signature, err := n.wh.Sign(msgID, timestamp, body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", msgID)
	req.Header.Set("svix-timestamp", fmt.Sprintf("%d", timestamp.Unix()))
	req.Header.Set("svix-signature", signature)

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("Error al entregar webhook: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("el receptor del webhook respondió %d", resp.StatusCode)
	}

	return nil
}

// CompositeNotifier reparte cada notificación entre varios notificadores.
// Los fallos individuales se registran pero no cortan el resto.
type CompositeNotifier struct {
	notifiers []Notifier
}

func NewCompositeNotifier(notifiers ...Notifier) *CompositeNotifier {
	return &CompositeNotifier{notifiers: notifiers}
}

func (n *CompositeNotifier) NotifyRebalanceNeeded(user models.User, maxDeviation float64) error {
	for _, notifier := range n.notifiers {
		if err := notifier.NotifyRebalanceNeeded(user, maxDeviation); err != nil {
			log.Printf("Error al notificar rebalanceo para %s: %v", user.ID, err)
		}
	}
	return nil
}

func (n *CompositeNotifier) NotifyMisconfigured(user models.User, combinedTarget float64) error {
	for _, notifier := range n.notifiers {
		if err := notifier.NotifyMisconfigured(user, combinedTarget); err != nil {
			log.Printf("Error al notificar configuración inválida para %s: %v", user.ID, err)
		}
	}
	return nil
}
