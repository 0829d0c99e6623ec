package handler

import (
	"net/http"

	"identity-service/pkg/response"
)

func (h *AuthHandler) HandleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"idToken": req.IDToken}) {
		return
	}

	result, err := h.uc.SignInWithGoogle(r.Context(), req.IDToken, req.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *AuthHandler) HandleAppleSignIn(w http.ResponseWriter, r *http.Request) {
	var req appleReq
	if !decode(w, r, &req) {
		return
	}
	if !require(w, map[string]string{"identityToken": req.IdentityToken, "rawNonce": req.RawNonce}) {
		return
	}

	result, err := h.uc.SignInWithApple(r.Context(), req.IdentityToken, req.RawNonce, req.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
