package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studentpay/internal/domain"
)

// maxBodyBytes bounds how much of a backend response is read.
const maxBodyBytes = 1 << 20

// StudentPayAPI is the HTTP client of the StudentPay backend. It implements
// every backend port of the domain package.
type StudentPayAPI struct {
	baseURL    string
	httpClient *http.Client
}

// NewStudentPayAPI creates a backend client with a tuned HTTP transport.
func NewStudentPayAPI(baseURL string, timeout time.Duration) *StudentPayAPI {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return NewStudentPayAPIWithClient(baseURL, &http.Client{
		Timeout:   timeout,
		Transport: transport,
	})
}

// NewStudentPayAPIWithClient creates a backend client over an existing http.Client.
func NewStudentPayAPIWithClient(baseURL string, client *http.Client) *StudentPayAPI {
	return &StudentPayAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the backend root all calls are made against.
func (a *StudentPayAPI) BaseURL() string {
	return a.baseURL
}

// errorBody is the error shape the backend answers with.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// do performs one backend call. body is JSON encoded when non-nil and the
// response is decoded into out when non-nil.
func (a *StudentPayAPI) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		detail := eb.Detail
		if detail == "" {
			detail = eb.Message
		}
		return domain.NewBackendError(resp.StatusCode, detail)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return fmt.Errorf("%w: empty body", domain.ErrMalformedResponse)
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// RefreshAccessToken exchanges a refresh token for a new access token.
func (a *StudentPayAPI) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	var out refreshResponse
	if err := a.do(ctx, http.MethodPost, "/api/token/refresh/", "", refreshRequest{Refresh: refreshToken}, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("%w: refresh response without access token", domain.ErrMalformedResponse)
	}
	return out.Access, nil
}

// FetchVerificationStatus reads is_verified from the department record of
// the token owner. The backend may answer with the record or a list whose
// first element is the record.
func (a *StudentPayAPI) FetchVerificationStatus(ctx context.Context, accessToken string) (bool, error) {
	if accessToken == "" {
		return false, domain.ErrUnauthenticated
	}

	var raw json.RawMessage
	if err := a.do(ctx, http.MethodGet, "/accounts/department/", accessToken, nil, &raw); err != nil {
		return false, err
	}
	return parseVerification(raw)
}

func parseVerification(raw json.RawMessage) (bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return false, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
		}
		if len(list) == 0 {
			return false, fmt.Errorf("%w: empty department list", domain.ErrMalformedResponse)
		}
		trimmed = list[0]
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	field, ok := record["is_verified"]
	if !ok {
		return false, fmt.Errorf("%w: is_verified missing", domain.ErrMalformedResponse)
	}
	var verified *bool
	if err := json.Unmarshal(field, &verified); err != nil || verified == nil {
		return false, fmt.Errorf("%w: is_verified is not a boolean", domain.ErrMalformedResponse)
	}
	return *verified, nil
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ObtainToken logs a department in.
func (a *StudentPayAPI) ObtainToken(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	var out domain.TokenPair
	if err := a.do(ctx, http.MethodPost, "/api/token/", "", tokenRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.Access == "" || out.Refresh == "" {
		return nil, fmt.Errorf("%w: token response incomplete", domain.ErrMalformedResponse)
	}
	return &out, nil
}

// RegisterDepartment creates a department account.
func (a *StudentPayAPI) RegisterDepartment(ctx context.Context, form domain.SignupForm) (*domain.Department, error) {
	var out domain.Department
	if err := a.do(ctx, http.MethodPost, "/accounts/department/", "", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func feeItemsPath(departmentID string) string {
	return "/accounts/department/" + url.PathEscape(departmentID) + "/payment/"
}

func feeItemPath(departmentID, itemID string) string {
	return feeItemsPath(departmentID) + url.PathEscape(itemID) + "/"
}

// ListFeeItems lists the fee items of a department.
func (a *StudentPayAPI) ListFeeItems(ctx context.Context, accessToken, departmentID string) ([]domain.FeeItem, error) {
	var out []domain.FeeItem
	if err := a.do(ctx, http.MethodGet, feeItemsPath(departmentID), accessToken, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.FeeItem{}
	}
	return out, nil
}

// CreateFeeItem adds a fee item to a department.
func (a *StudentPayAPI) CreateFeeItem(ctx context.Context, accessToken, departmentID string, item domain.FeeItemInput) (*domain.FeeItem, error) {
	var out domain.FeeItem
	if err := a.do(ctx, http.MethodPost, feeItemsPath(departmentID), accessToken, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFeeItem replaces a fee item.
func (a *StudentPayAPI) UpdateFeeItem(ctx context.Context, accessToken, departmentID, itemID string, item domain.FeeItemInput) (*domain.FeeItem, error) {
	var out domain.FeeItem
	if err := a.do(ctx, http.MethodPut, feeItemPath(departmentID, itemID), accessToken, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFeeItem removes a fee item.
func (a *StudentPayAPI) DeleteFeeItem(ctx context.Context, accessToken, departmentID, itemID string) error {
	return a.do(ctx, http.MethodDelete, feeItemPath(departmentID, itemID), accessToken, nil, nil)
}

// DashboardStats fetches the payment aggregates of the token owner.
func (a *StudentPayAPI) DashboardStats(ctx context.Context, accessToken string) (*domain.DashboardStats, error) {
	var out domain.DashboardStats
	if err := a.do(ctx, http.MethodGet, "/pay/pay/stats/", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the department details.
func (a *StudentPayAPI) UpdateProfile(ctx context.Context, accessToken string, profile domain.ProfileUpdate) (*domain.Department, error) {
	var out domain.Department
	if err := a.do(ctx, http.MethodPost, "/api/department/update-profile", accessToken, profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the department password.
func (a *StudentPayAPI) ChangePassword(ctx context.Context, accessToken string, req domain.PasswordChange) error {
	return a.do(ctx, http.MethodPost, "/accounts/change-password/", accessToken, req, nil)
}

// ListDepartments lists every department students can pay.
func (a *StudentPayAPI) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	var out []domain.Department
	if err := a.do(ctx, http.MethodGet, "/accounts/department/", "", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Department{}
	}
	return out, nil
}

// GetDepartment fetches one department.
func (a *StudentPayAPI) GetDepartment(ctx context.Context, departmentID string) (*domain.Department, error) {
	var out domain.Department
	if err := a.do(ctx, http.MethodGet, "/accounts/department/"+url.PathEscape(departmentID)+"/", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFeeItem fetches one fee item of a department.
func (a *StudentPayAPI) GetFeeItem(ctx context.Context, departmentID, itemID string) (*domain.FeeItem, error) {
	var out domain.FeeItem
	if err := a.do(ctx, http.MethodGet, feeItemPath(departmentID, itemID), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitiatePayment starts a payment with the external processor.
func (a *StudentPayAPI) InitiatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentInitiation, error) {
	var out domain.PaymentInitiation
	if err := a.do(ctx, http.MethodPost, "/pay/pay/", "", req, &out); err != nil {
		return nil, err
	}
	if out.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: payment initiation without authorization url", domain.ErrMalformedResponse)
	}
	return &out, nil
}

// VerifyTransaction confirms a payment by its gateway reference.
func (a *StudentPayAPI) VerifyTransaction(ctx context.Context, reference string) (*domain.TransactionVerification, error) {
	var out domain.TransactionVerification
	path := "/pay/pay/verify/?trxref=" + url.QueryEscape(reference)
	if err := a.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		out.Reference = reference
	}
	return &out, nil
}

// VerifyReceipt checks a receipt hash. An unknown receipt is reported as an
// invalid verification rather than an error when the backend explains why.
func (a *StudentPayAPI) VerifyReceipt(ctx context.Context, hash string) (*domain.ReceiptVerification, error) {
	var out domain.ReceiptVerification
	err := a.do(ctx, http.MethodGet, "/pay/verify?hash="+url.QueryEscape(hash), "", nil, &out)
	if err != nil {
		var be *domain.BackendError
		if errors.As(err, &be) && be.StatusCode < 500 && be.Detail != "" {
			return &domain.ReceiptVerification{Status: "invalid", Detail: be.Detail}, nil
		}
		return nil, err
	}
	return &out, nil
}
