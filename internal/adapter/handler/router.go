package handler

import (
	"github.com/labstack/echo/v4"
)

// Routes holds everything the gateway routes are built from.
type Routes struct {
	Auth       *AuthHandler
	Department *DepartmentHandler
	Payment    *PaymentHandler
	Health     *HealthHandler
	Navigator  *Navigator
	Sessions   VisitorSessions
	Cookie     CookieConfig
	// Limit is applied to the credential endpoints. May be nil.
	Limit echo.MiddlewareFunc
}

// Register mounts the gateway routes on e.
func (r Routes) Register(e *echo.Echo) {
	e.GET("/health", r.Health.Handle)

	public := e.Group("")
	public.GET("/departments", r.Payment.Departments)
	public.GET("/departments/:id", r.Payment.Department)
	public.GET("/departments/:id/payments/:pid", r.Payment.FeeItem)
	public.POST("/pay", r.Payment.Pay)
	public.GET("/pay/verify", r.Payment.VerifyTransaction)
	public.GET("/receipts/verify", r.Payment.VerifyReceipt)

	dept := e.Group("/department", Visitors(r.Sessions, r.Cookie))

	var limited []echo.MiddlewareFunc
	if r.Limit != nil {
		limited = append(limited, r.Limit)
	}
	dept.GET("/login", r.Auth.LoginPage, r.Navigator.RedirectIfAuthenticated())
	dept.POST("/login", r.Auth.Login, limited...)
	dept.POST("/signup", r.Auth.Signup, limited...)
	dept.POST("/logout", r.Auth.Logout)
	dept.GET("/verification-pending", r.Auth.VerificationPending, r.Navigator.VerificationPending())

	protected := dept.Group("", r.Navigator.Protected())
	protected.GET("/dashboard", r.Department.Dashboard)
	protected.GET("/profile", r.Department.Profile)
	protected.POST("/profile", r.Department.UpdateProfile)
	protected.POST("/change-password", r.Department.ChangePassword)
	protected.GET("/payments", r.Department.Payments)
	protected.POST("/payments", r.Department.CreatePayment)
	protected.PUT("/payments/:id", r.Department.UpdatePayment)
	protected.DELETE("/payments/:id", r.Department.DeletePayment)
}
