package handler

import (
	"net/http"

	"identity-service/internal/usecase"
	"identity-service/pkg/response"
)

func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req usecase.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"mobile":    req.Mobile,
		"email":     req.Email,
		"password":  req.Password,
	}) {
		return
	}

	if err := h.uc.StartSignup(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "OTP sent to mobile")
}

func (h *AuthHandler) HandleSignupEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req mobileReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile}) {
		return
	}

	if err := h.uc.SendSignupEmailOTP(r.Context(), req.Mobile); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "OTP sent to email")
}

func (h *AuthHandler) HandleVerifySignup(w http.ResponseWriter, r *http.Request) {
	var req otpReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile, "otp": req.OTP}) {
		return
	}

	result, err := h.uc.VerifySignup(r.Context(), req.Mobile, req.OTP, req.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *AuthHandler) HandleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if !require(w, map[string]string{"email": email}) {
		return
	}

	available, err := h.uc.CheckEmailAvailable(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (h *AuthHandler) HandleCheckMobile(w http.ResponseWriter, r *http.Request) {
	mobile := r.URL.Query().Get("mobile")
	if !require(w, map[string]string{"mobile": mobile}) {
		return
	}

	available, err := h.uc.CheckMobileAvailable(r.Context(), mobile)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"available": available})
}
