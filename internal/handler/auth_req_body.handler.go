package handler

import (
	"encoding/json"
	"net/http"

	"identity-service/pkg/response"
)

type mobileReq struct {
	Mobile string `json:"mobile"`
}

type otpReq struct {
	Mobile   string `json:"mobile"`
	OTP      string `json:"otp"`
	DeviceID string `json:"deviceId"`
}

type loginReq struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

type resetReq struct {
	ResetTicket string `json:"resetTicket"`
	NewPassword string `json:"newPassword"`
}

type googleReq struct {
	IDToken  string `json:"idToken"`
	DeviceID string `json:"deviceId"`
}

type appleReq struct {
	IdentityToken string `json:"identityToken"`
	RawNonce      string `json:"rawNonce"`
	DeviceID      string `json:"deviceId"`
}

// decode reads a JSON body into dst and writes the 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func require(w http.ResponseWriter, fields map[string]string) bool {
	for name, v := range fields {
		if v == "" {
			response.Error(w, http.StatusBadRequest, name+" is required")
			return false
		}
	}
	return true
}
