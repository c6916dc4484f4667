package domain

import "context"

// KV is the key-value storage the credential fields are persisted in.
// Delete removes every given key in one operation. SetAndTouch writes key
// and, in the same operation, renews the expiry of the touch keys that still
// exist; stores without expiry just write.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetAndTouch(ctx context.Context, key, value string, touch ...string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// VerificationFetcher fetches the verification flag of the department owning
// the access token.
type VerificationFetcher interface {
	FetchVerificationStatus(ctx context.Context, accessToken string) (bool, error)
}

// Authenticator obtains a fresh credential pair from department login details.
type Authenticator interface {
	ObtainToken(ctx context.Context, email, password string) (*TokenPair, error)
	RegisterDepartment(ctx context.Context, form SignupForm) (*Department, error)
}

// DepartmentPortal is the authenticated department API.
type DepartmentPortal interface {
	ListFeeItems(ctx context.Context, accessToken, departmentID string) ([]FeeItem, error)
	CreateFeeItem(ctx context.Context, accessToken, departmentID string, item FeeItemInput) (*FeeItem, error)
	UpdateFeeItem(ctx context.Context, accessToken, departmentID, itemID string, item FeeItemInput) (*FeeItem, error)
	DeleteFeeItem(ctx context.Context, accessToken, departmentID, itemID string) error
	DashboardStats(ctx context.Context, accessToken string) (*DashboardStats, error)
	UpdateProfile(ctx context.Context, accessToken string, profile ProfileUpdate) (*Department, error)
	ChangePassword(ctx context.Context, accessToken string, req PasswordChange) error
}

// PaymentDirectory is the public, unauthenticated API used by students.
type PaymentDirectory interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, departmentID string) (*Department, error)
	GetFeeItem(ctx context.Context, departmentID, itemID string) (*FeeItem, error)
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentInitiation, error)
	VerifyTransaction(ctx context.Context, reference string) (*TransactionVerification, error)
	VerifyReceipt(ctx context.Context, hash string) (*ReceiptVerification, error)
}

// CredentialStore holds the credential of one visitor.
type CredentialStore interface {
	IsAuthenticated(ctx context.Context) bool
	AccessToken(ctx context.Context) (string, bool)
	RefreshToken(ctx context.Context) (string, bool)
	DepartmentID(ctx context.Context) (string, bool)
	Credential(ctx context.Context) (Credential, bool)
	Generation() uint64
	Save(ctx context.Context, cred Credential) error
	SetAccessTokenIf(ctx context.Context, generation uint64, token string) (bool, error)
	ClearAll(ctx context.Context) error
	ClearIf(ctx context.Context, generation uint64) (bool, error)
}

// VerificationCache memoizes the verification status of one department.
type VerificationCache interface {
	Get() (VerificationStatus, bool)
	Epoch() uint64
	SetIf(epoch uint64, isVerified bool) bool
	Invalidate()
}
