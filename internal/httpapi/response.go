package httpapi

import (
	"encoding/json"
	"net/http"
)

// response is the uniform envelope every endpoint answers with. The HTTP
// status line always matches the embedded code.
type response struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    any    `json:"data"`
}

func writeSuccess(w http.ResponseWriter, data any, msg string) {
	writeJSON(w, http.StatusOK, response{
		Code:    http.StatusOK,
		Success: true,
		Msg:     msg,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, response{
		Code:    code,
		Success: false,
		Msg:     msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
