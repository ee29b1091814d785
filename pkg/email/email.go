// pkg/email/email.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"
)

// Service sends transactional mail through the Resend API. A nil *Service
// is valid and disables mail entirely.
type Service struct {
	apiKey    string
	from      string
	templates *template.Template
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

type WelcomeEmailData struct {
	Name string
}

type SubscriptionActivatedData struct {
	Name        string
	PackageName string
	Price       float64
	Currency    string
	ExpiresAt   time.Time
}

type SubscriptionExpiryWarningData struct {
	Name        string
	PackageName string
	ExpiresAt   time.Time
	DaysLeft    int
}

func NewService(apiKey, from string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	tmpl, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("could not parse email templates: %v", err)
	}

	return &Service{
		apiKey:    apiKey,
		from:      from,
		templates: tmpl,
	}, nil
}

func (s *Service) SendWelcomeEmail(to, name string) error {
	return s.send(to, "Welcome to HomeBiz", "welcome", WelcomeEmailData{Name: name})
}

func (s *Service) SendSubscriptionActivatedEmail(to string, data SubscriptionActivatedData) error {
	return s.send(to, "Your HomeBiz subscription is active", "subscription_activated", data)
}

func (s *Service) SendSubscriptionExpiryWarning(to string, data SubscriptionExpiryWarningData) error {
	subject := fmt.Sprintf("Your HomeBiz subscription expires in %d days", data.DaysLeft)
	return s.send(to, subject, "subscription_expiry_warning", data)
}

func (s *Service) send(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("could not render template %s: %v", templateName, err)
	}

	payload := emailPayload{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}
