package domain

// OutcomeKind enumerates the decisions a guard can reach.
type OutcomeKind int

const (
	// OutcomeAuthorized lets the visitor see the page.
	OutcomeAuthorized OutcomeKind = iota
	// OutcomeRedirectToLogin sends the visitor to the login page.
	OutcomeRedirectToLogin
	// OutcomeRedirectToVerificationPending sends an unverified department to the pending page.
	OutcomeRedirectToVerificationPending
	// OutcomeRedirectToDashboard sends an already verified department forward.
	OutcomeRedirectToDashboard
	// OutcomeDegradedStay keeps an authenticated visitor on the page while
	// the verification status could not be determined.
	OutcomeDegradedStay
	// OutcomeStay keeps the visitor on a page that needs no credential.
	OutcomeStay
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAuthorized:
		return "authorized"
	case OutcomeRedirectToLogin:
		return "redirect_to_login"
	case OutcomeRedirectToVerificationPending:
		return "redirect_to_verification_pending"
	case OutcomeRedirectToDashboard:
		return "redirect_to_dashboard"
	case OutcomeDegradedStay:
		return "degraded_stay"
	case OutcomeStay:
		return "stay"
	default:
		return "unknown"
	}
}

// LoginReason explains a redirect to the login page.
type LoginReason string

const (
	ReasonUnauthorized   LoginReason = "unauthorized"
	ReasonSessionExpired LoginReason = "session-expired"
)

// Banner is the message shown on the login page for the reason. It is
// empty for reasons the login page does not know.
func (r LoginReason) Banner() string {
	switch r {
	case ReasonSessionExpired:
		return "Your session has expired. Please log in again."
	case ReasonUnauthorized:
		return "Please log in to continue."
	default:
		return ""
	}
}

// Outcome is the result of one guard evaluation.
type Outcome struct {
	Kind   OutcomeKind
	Reason LoginReason
}

var (
	Authorized                    = Outcome{Kind: OutcomeAuthorized}
	RedirectToVerificationPending = Outcome{Kind: OutcomeRedirectToVerificationPending}
	RedirectToDashboard           = Outcome{Kind: OutcomeRedirectToDashboard}
	DegradedStay                  = Outcome{Kind: OutcomeDegradedStay}
	Stay                          = Outcome{Kind: OutcomeStay}
)

// RedirectToLogin builds a login redirect carrying the given reason.
func RedirectToLogin(reason LoginReason) Outcome {
	return Outcome{Kind: OutcomeRedirectToLogin, Reason: reason}
}

// Proceed reports whether the page may render without navigating away.
func (o Outcome) Proceed() bool {
	switch o.Kind {
	case OutcomeAuthorized, OutcomeDegradedStay, OutcomeStay:
		return true
	default:
		return false
	}
}
