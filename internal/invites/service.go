package invites

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/config"
	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
	"github.com/outstocked/outstocked-backend/pkg/security"
)

// Service invites new members by email. Each invite creates a profile with a
// temporary password; failures are reported per email rather than failing the
// whole batch.
type Service interface {
	Invite(ctx context.Context, input InviteInput) (*BatchResult, error)
}

// InviteInput is an admin's batch of emails to invite.
type InviteInput struct {
	OrganizationID uuid.UUID
	InvitedBy      uuid.UUID
	Emails         []string
}

// EmailResult is the outcome for a single address in the batch.
type EmailResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult summarizes the whole batch.
type BatchResult struct {
	Results []EmailResult `json:"results"`
	Sent    int           `json:"sent"`
	Failed  int           `json:"failed"`
	Summary string        `json:"summary"`
}

type service struct {
	repo     Repository
	logg     *logger.Logger
	invites  config.InvitesConfig
	password config.PasswordConfig
}

// NewService wires the invites service.
func NewService(repo Repository, logg *logger.Logger, invites config.InvitesConfig, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invites repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if invites.MaxBatch <= 0 {
		invites.MaxBatch = 10
	}
	if invites.TempPasswordLen <= 0 {
		invites.TempPasswordLen = 16
	}
	return &service{repo: repo, logg: logg, invites: invites, password: password}, nil
}

func (s *service) Invite(ctx context.Context, input InviteInput) (*BatchResult, error) {
	emails := normalizeEmails(input.Emails)
	if len(emails) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one email is required")
	}
	if len(emails) > s.invites.MaxBatch {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot invite more than %d emails at once", s.invites.MaxBatch)).
			WithDetails(map[string]any{"requested": len(emails), "max": s.invites.MaxBatch})
	}

	if _, err := s.repo.GetOrganization(ctx, input.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}

	batch := &BatchResult{Results: make([]EmailResult, 0, len(emails))}
	for _, email := range emails {
		if err := s.inviteOne(ctx, input, email); err != nil {
			batch.Failed++
			batch.Results = append(batch.Results, EmailResult{Email: email, Error: errorMessage(err)})
			continue
		}
		batch.Sent++
		batch.Results = append(batch.Results, EmailResult{Email: email, Success: true})
	}

	batch.Summary = fmt.Sprintf("Sent %d invite(s), %d failed", batch.Sent, batch.Failed)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"sent":   batch.Sent,
		"failed": batch.Failed,
	}), "invite batch processed")
	return batch, nil
}

func (s *service) inviteOne(ctx context.Context, input InviteInput, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already belongs to a member")
	}

	temp, err := security.GenerateTempPassword(s.invites.TempPasswordLen)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(temp, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temp password")
	}

	profile := &models.UserProfile{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		Email:          email,
		Role:           enums.UserRoleUser,
		PasswordHash:   hash,
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return nil
}

// normalizeEmails trims, lowercases, drops empties, and dedupes while
// preserving order.
func normalizeEmails(raw []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(raw))
	for _, email := range raw {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func errorMessage(err error) string {
	if appErr := pkgerrors.As(err); appErr != nil {
		return appErr.Message()
	}
	return err.Error()
}
