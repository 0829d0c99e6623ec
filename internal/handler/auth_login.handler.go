package handler

import (
	"net/http"

	"identity-service/pkg/response"
)

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile, "password": req.Password}) {
		return
	}

	result, err := h.uc.LoginWithPassword(r.Context(), req.Mobile, req.Password, req.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *AuthHandler) HandleStartLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req mobileReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile}) {
		return
	}

	if err := h.uc.StartLoginOTP(r.Context(), req.Mobile); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "OTP sent to mobile")
}

func (h *AuthHandler) HandleStartLoginOTPEmail(w http.ResponseWriter, r *http.Request) {
	var req mobileReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile}) {
		return
	}

	if err := h.uc.StartLoginOTPEmail(r.Context(), req.Mobile); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "OTP sent to email")
}

func (h *AuthHandler) HandleVerifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req otpReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"mobile": req.Mobile, "otp": req.OTP}) {
		return
	}

	result, err := h.uc.VerifyLoginOTP(r.Context(), req.Mobile, req.OTP, req.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
