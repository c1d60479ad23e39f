package backend

import (
	"encoding/json"
	"io"
)

// Profile is the user record returned by the profile endpoints.
type Profile struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	AvatarURL string `json:"image,omitempty"`
}

// ProfileUpdate is the multipart payload for the profile update endpoint.
// Avatar is optional; when nil only name and email are sent.
type ProfileUpdate struct {
	Name           string
	Email          string
	Avatar         io.Reader
	AvatarFilename string
}

// TokenGrant is the successful result of an OTP verification or a federated
// exchange: the opaque bearer credential plus the server message, if any.
type TokenGrant struct {
	Token   string
	Message string
}

// Ack is the successful result of a fire-and-forget call (send OTP).
type Ack struct {
	Message string
}

// apiEnvelope covers both response shapes the backend emits: some endpoints
// report "success", older ones report "status".
type apiEnvelope struct {
	Success *bool           `json:"success,omitempty"`
	Status  *bool           `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *apiEnvelope) ok() bool {
	if e.Success != nil {
		return *e.Success
	}
	if e.Status != nil {
		return *e.Status
	}
	return false
}
