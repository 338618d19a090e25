package httpkit

import (
	"encoding/json"
	"net/http"

	"voxpress/internal/pkg/errors"
)

type ErrorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

func DecodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteErr(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var env ErrorEnvelope
	env.Error.Code = code
	env.Error.Message = msg
	env.Error.Details = details

	_ = json.NewEncoder(w).Encode(env)
}

// WriteError renders a coded error from internal/pkg/errors, mapping its code
// to an HTTP status. Non-coded errors become a 500 INTERNAL_ERROR.
func WriteError(w http.ResponseWriter, err error) {
	var e *errors.Error
	if errors.As(err, &e) {
		WriteErr(w, e.HTTPStatus(), string(e.Code), e.Message, e.Fields)
		return
	}
	WriteErr(w, 500, string(errors.CodeInternal), "internal server error", nil)
}
