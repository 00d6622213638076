package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/config"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/utils"
)

const decisionSubject = "Your Dynamic Credit Limit Analysis Report"

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendDecision emails a credit decision summary to the customer
func (s *Sender) SendDecision(ctx context.Context, summary models.DecisionSummary, attachments ...models.Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := s.buildDecisionEmail(summary, attachments)
	if err != nil {
		return err
	}

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send decision email to %s: %v", summary.UserEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": summary.ReportID,
		"band":      summary.Decision.Band,
	}).Infof("Email sent to %s: %s", summary.UserEmail, e.Subject)
	return nil
}

func (s *Sender) buildDecisionEmail(summary models.DecisionSummary, attachments []models.Attachment) (*email.Email, error) {
	if summary.UserEmail == "" {
		return nil, fmt.Errorf("failed to build email: recipient is required")
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{summary.UserEmail}
	e.Subject = decisionSubject

	// Format email body
	greeting := summary.UserEmail
	if summary.UserName != "" {
		greeting = summary.UserName
	}
	body := fmt.Sprintf("Dear Customer (%s),\n\n", greeting)
	body += "Thank you for using the Dynamic Credit Limit Analyzer. Our system has completed the analysis of your transaction behavior.\n\n"
	body += fmt.Sprintf(
		"CREDIT DECISION SUMMARY:\n"+
			"-------------------------\n"+
			"Current Credit Limit: ₹%s\n"+
			"Final Credit Score: %.2f/100\n"+
			"Recommended Credit Limit: ₹%s\n\n"+
			"Decision Reason:\n%s\n\n",
		utils.FormatAmount(summary.CurrentLimit),
		summary.Decision.Score,
		utils.FormatDecimal(summary.Decision.RecommendedLimit),
		summary.Decision.Explanation,
	)
	body += "This decision was reached based on your repayment history, spending stability, and credit utilization ratio.\n"
	if summary.ReportID != "" {
		body += fmt.Sprintf("Report reference: %s\n", summary.ReportID)
	}
	body += "\nBest regards,\nCredit Decision Engine\nDynamic Bank Ltd."
	e.Text = []byte(body)

	for _, a := range attachments {
		if _, err := e.Attach(bytes.NewReader(a.Data), a.Filename, a.ContentType); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}
	return e, nil
}
