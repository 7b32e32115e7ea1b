package sdamodels

import "encoding/json"

// Discriminator values carried in the code field of every console response
const (
	CodeSuccess = "success"
	CodeError   = "error"
)

// Envelope is the body of every /sdamanager response
type Envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
