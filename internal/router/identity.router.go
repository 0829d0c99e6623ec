package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"identity-service/internal/handler"
	"identity-service/pkg/jwtutil"
	"identity-service/pkg/middleware"
)

func SetupRoutes(r chi.Router, h *handler.AuthHandler, rdb *redis.Client, issuer *jwtutil.Issuer) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, time.Minute, "global_identity"))

	r.Route("/api/v1/auth", func(api chi.Router) {
		api.Get("/health", h.HandleHealth)
		api.Get("/check-email", h.HandleCheckEmail)
		api.Get("/check-mobile", h.HandleCheckMobile)

		// Credential and OTP endpoints get a tighter window.
		api.Group(func(g chi.Router) {
			g.Use(middleware.RateLimiter(rdb, 10, 30*time.Second, 30*time.Second, "identity_auth"))

			g.Post("/signup", h.HandleSignup)
			g.Post("/signup/email-otp", h.HandleSignupEmailOTP)
			g.Post("/signup/verify", h.HandleVerifySignup)

			g.Post("/login", h.HandleLogin)
			g.Post("/login/otp/start", h.HandleStartLoginOTP)
			g.Post("/login/otp/start-email", h.HandleStartLoginOTPEmail)
			g.Post("/login/otp/verify", h.HandleVerifyLoginOTP)

			g.Post("/password/forgot", h.HandleForgotPassword)
			g.Post("/password/forgot-email", h.HandleForgotPasswordEmail)
			g.Post("/password/verify-otp", h.HandleVerifyResetOTP)
			g.Post("/password/reset", h.HandleResetPassword)

			g.Post("/google", h.HandleGoogleSignIn)
			g.Post("/apple", h.HandleAppleSignIn)
		})

		// Signed-in account management.
		api.Group(func(g chi.Router) {
			g.Use(middleware.SessionAuth(issuer))

			g.Post("/password/change", h.HandleChangePassword)
			g.Get("/devices", h.HandleListDevices)
			g.Post("/devices/push-token", h.HandleRegisterPushToken)
			g.Delete("/account", h.HandleDeleteAccount)
		})
	})

	return r
}
