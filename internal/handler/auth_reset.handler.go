package handler

import (
	"net/http"

	"identity-service/pkg/response"
)

func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req mobileReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile}) {
		return
	}

	if err := h.uc.StartReset(r.Context(), req.Mobile, "sms"); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "OTP sent to mobile")
}

func (h *AuthHandler) HandleForgotPasswordEmail(w http.ResponseWriter, r *http.Request) {
	var req mobileReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile}) {
		return
	}

	if err := h.uc.StartReset(r.Context(), req.Mobile, "email"); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "OTP sent to email")
}

func (h *AuthHandler) HandleVerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req otpReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile, "otp": req.OTP}) {
		return
	}

	grant, err := h.uc.VerifyResetOTP(r.Context(), req.Mobile, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, grant)
}

func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"resetTicket": req.ResetTicket, "newPassword": req.NewPassword}) {
		return
	}

	if err := h.uc.ResetPassword(r.Context(), req.ResetTicket, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Password updated")
}
