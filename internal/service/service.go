package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/auth"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/config"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/decision"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/generator"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/metrics"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/repository"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/scoring"
)

const minPasswordLength = 8

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrProviderUnavailable = errors.New("identity provider not configured")
	ErrInvalidState        = errors.New("invalid or expired OAuth state")
	ErrUnknownFormat       = errors.New("unknown report format")
	ErrNotifierUnavailable = errors.New("notifier not configured")
)

// IdentityProvider signs users in through an external OAuth provider
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.User, error)
}

// Notifier delivers decision summaries to customers
type Notifier interface {
	SendDecision(ctx context.Context, summary models.DecisionSummary, attachments ...models.Attachment) error
}

// ReportRenderer renders a decision summary as a document
type ReportRenderer interface {
	Render(w io.Writer, summary models.DecisionSummary) error
	ContentType() string
	Extension() string
}

// Dependencies are the collaborators of the service. Identity and Notifier may be nil.
type Dependencies struct {
	Tokens    *auth.TokenIssuer
	States    *auth.StateStore
	Identity  IdentityProvider
	Notifier  Notifier
	Renderers map[string]ReportRenderer
	Metrics   *metrics.Metrics
}

// Analysis is the result of scoring a transaction history
type Analysis struct {
	CurrentLimit float64                 `json:"current_limit"`
	Report       models.ScoreReport      `json:"report"`
	Insights     models.SpendingInsights `json:"insights"`
}

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	deps   Dependencies
	now    func() time.Time
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, deps Dependencies) *Service {
	return &Service{repo: repo, log: log, config: cfg, deps: deps, now: time.Now}
}

// Register creates a new local user with hashed password
func (s *Service) Register(name, email, password string) (*models.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidRegistration, email)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, minPasswordLength)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Provider:     models.ProviderLocal,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a local user and returns a session token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil || user.Provider != models.ProviderLocal {
		return "", ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.deps.Tokens.Issue(user)
	if err != nil {
		return "", err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return token, nil
}

// BeginOAuth returns the provider consent URL for a fresh state
func (s *Service) BeginOAuth() (string, error) {
	if s.deps.Identity == nil {
		return "", ErrProviderUnavailable
	}
	return s.deps.Identity.AuthCodeURL(s.deps.States.New()), nil
}

// CompleteOAuth handles the provider callback and returns a session token
func (s *Service) CompleteOAuth(ctx context.Context, state, code string) (string, *models.User, error) {
	if s.deps.Identity == nil {
		return "", nil, ErrProviderUnavailable
	}
	if !s.deps.States.Consume(state) {
		return "", nil, ErrInvalidState
	}

	identity, err := s.deps.Identity.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("%s sign-in failed: %w", s.deps.Identity.Name(), err)
	}
	user, err := s.repo.FindOrCreateUser(identity)
	if err != nil {
		return "", nil, err
	}
	token, err := s.deps.Tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.log.WithField("provider", s.deps.Identity.Name()).Infof("User logged in: %s", user.Email)
	return token, user, nil
}

// Analyze scores a transaction history against the current limit
func (s *Service) Analyze(txns []models.Transaction, currentLimit float64) (*Analysis, error) {
	report, err := scoring.ComputeScores(txns, currentLimit)
	s.observeAnalysis(&report, err)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"transactions": len(txns),
		"final_score":  report.FinalScore,
	}).Info("Transactions analyzed")
	return &Analysis{
		CurrentLimit: currentLimit,
		Report:       report,
		Insights:     scoring.Insights(txns),
	}, nil
}

// Decide recommends a credit limit for a composite score
func (s *Service) Decide(finalScore, currentLimit float64) (models.Decision, error) {
	d, err := decision.Decide(finalScore, currentLimit)
	if err != nil {
		return models.Decision{}, err
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveDecision(d)
	}

	s.log.WithFields(logrus.Fields{
		"score": finalScore,
		"band":  d.Band,
	}).Infof("Recommended limit %s for current limit %.2f", d.RecommendedLimit.StringFixed(2), currentLimit)
	return d, nil
}

// Summarize decides on an existing score report and packages the result for reporting
func (s *Service) Summarize(user *models.User, currentLimit float64, report models.ScoreReport) (models.DecisionSummary, error) {
	d, err := s.Decide(report.FinalScore, currentLimit)
	if err != nil {
		return models.DecisionSummary{}, err
	}
	return models.DecisionSummary{
		ReportID:     uuid.NewString(),
		UserEmail:    user.Email,
		UserName:     user.Name,
		CurrentLimit: currentLimit,
		Report:       report,
		Decision:     d,
		GeneratedAt:  s.now().UTC(),
	}, nil
}

// Evaluate runs the whole pipeline: scores, decision and summary
func (s *Service) Evaluate(user *models.User, txns []models.Transaction, currentLimit float64) (models.DecisionSummary, error) {
	analysis, err := s.Analyze(txns, currentLimit)
	if err != nil {
		return models.DecisionSummary{}, err
	}
	return s.Summarize(user, currentLimit, analysis.Report)
}

// Renderer looks up the renderer for a report format
func (s *Service) Renderer(format string) (ReportRenderer, error) {
	r, ok := s.deps.Renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return r, nil
}

// RenderReport writes summary to w in the given format
func (s *Service) RenderReport(w io.Writer, format string, summary models.DecisionSummary) error {
	r, err := s.Renderer(format)
	if err != nil {
		return err
	}
	if err := r.Render(w, summary); err != nil {
		return err
	}
	s.log.Infof("Report %s rendered as %s", summary.ReportID, format)
	return nil
}

// SendReport emails summary to the customer with the PDF report attached
func (s *Service) SendReport(ctx context.Context, summary models.DecisionSummary) error {
	if s.deps.Notifier == nil {
		return ErrNotifierUnavailable
	}

	var attachments []models.Attachment
	if r, err := s.Renderer("pdf"); err == nil {
		var buf bytes.Buffer
		if err := r.Render(&buf, summary); err != nil {
			return err
		}
		attachments = append(attachments, models.Attachment{
			Filename:    "Credit_Decision_Report." + r.Extension(),
			ContentType: r.ContentType(),
			Data:        buf.Bytes(),
		})
	}

	err := s.deps.Notifier.SendDecision(ctx, summary, attachments...)
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveEmail(err)
	}
	if err != nil {
		return err
	}
	s.log.Infof("Decision %s sent to %s", summary.ReportID, summary.UserEmail)
	return nil
}

// DemoTransactions generates a synthetic history ending today
func (s *Service) DemoTransactions(records int) []models.Transaction {
	if records <= 0 {
		records = s.config.DemoRecords
	}
	txns := generator.Generate(records, s.config.DemoSeed, s.now())
	s.log.Infof("Generated %d synthetic transactions", len(txns))
	return txns
}

// DefaultLimit is the credit limit assumed when a request does not carry one
func (s *Service) DefaultLimit() float64 {
	return s.config.DefaultCurrentLimit
}

func (s *Service) observeAnalysis(report *models.ScoreReport, err error) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveAnalysis(report, err)
	}
}
