package handler

import (
	"net/http"

	"identity-service/pkg/middleware"
	"identity-service/pkg/response"
)

func accountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := r.Context().Value(middleware.ContextAccountID).(string)
	if !ok || id == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return id, true
}

func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"currentPassword": req.CurrentPassword, "newPassword": req.NewPassword}) {
		return
	}

	if err := h.uc.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Password updated")
}

func (h *AuthHandler) HandleRegisterPushToken(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req struct {
		DeviceID  string `json:"deviceId"`
		PushToken string `json:"pushToken"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"deviceId": req.DeviceID, "pushToken": req.PushToken}) {
		return
	}

	if err := h.uc.RegisterPushToken(r.Context(), id, req.DeviceID, req.PushToken); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Push token registered")
}

func (h *AuthHandler) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	devices, err := h.uc.ListDevices(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"devices": devices})
}

func (h *AuthHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	if err := h.uc.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Account deleted")
}
