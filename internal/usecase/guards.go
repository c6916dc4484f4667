package usecase

import (
	"context"
	"log/slog"

	"studentpay/internal/domain"
	"studentpay/internal/metrics"
)

// Guard names used in logs and metrics.
const (
	GuardProtected           = "protected"
	GuardRedirectIfAuthed    = "redirect_if_authenticated"
	GuardVerificationPending = "verification_pending"
)

// Guards binds the auth flow to the three kinds of page.
type Guards struct {
	flow   *AuthFlow
	verify Verifier
	logger *slog.Logger
}

// NewGuards creates the guard bindings.
func NewGuards(flow *AuthFlow, v Verifier, l *slog.Logger) *Guards {
	if l == nil {
		l = slog.Default()
	}
	return &Guards{flow: flow, verify: v, logger: l}
}

// ProtectedPage guards pages that need a verified department.
func (g *Guards) ProtectedPage(ctx context.Context) domain.Outcome {
	outcome := g.flow.Evaluate(ctx, Policy{RequireVerification: true})
	return g.record(ctx, GuardProtected, outcome)
}

// RedirectIfAuthenticated guards the login and signup pages: a signed-in
// department is sent forward, everyone else stays.
func (g *Guards) RedirectIfAuthenticated(ctx context.Context) domain.Outcome {
	if !g.flow.store.IsAuthenticated(ctx) {
		return g.record(ctx, GuardRedirectIfAuthed, domain.Stay)
	}

	var outcome domain.Outcome
	switch result := g.flow.Evaluate(ctx, Policy{RequireVerification: true}); result.Kind {
	case domain.OutcomeAuthorized:
		outcome = domain.RedirectToDashboard
	case domain.OutcomeRedirectToVerificationPending:
		outcome = domain.RedirectToVerificationPending
	default:
		outcome = domain.Stay
	}
	return g.record(ctx, GuardRedirectIfAuthed, outcome)
}

// VerificationPendingPage guards the page unverified departments wait on.
// It always re-checks with the backend so a freshly approved department is
// let through without waiting for the cache to expire.
func (g *Guards) VerificationPendingPage(ctx context.Context) domain.Outcome {
	if outcome, ok := g.flow.Authenticate(ctx); !ok {
		return g.record(ctx, GuardVerificationPending, outcome)
	}

	var outcome domain.Outcome
	switch g.verify.ExecuteFresh(ctx) {
	case domain.VerificationVerified:
		outcome = domain.RedirectToDashboard
	case domain.VerificationUnverified:
		outcome = domain.Stay
	default:
		g.logger.WarnContext(ctx, "verification re-check failed, staying on pending page")
		outcome = domain.Stay
	}
	return g.record(ctx, GuardVerificationPending, outcome)
}

func (g *Guards) record(ctx context.Context, guard string, outcome domain.Outcome) domain.Outcome {
	metrics.RecordGuardOutcome(guard, outcome.Kind.String())
	g.logger.DebugContext(ctx, "guard evaluated",
		"guard", guard,
		"outcome", outcome.Kind.String(),
		"reason", string(outcome.Reason))
	return outcome
}
