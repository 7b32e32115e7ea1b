package accessor

import (
	"bytes"
	"encoding/json"
	"fmt"

	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
)

// Discriminator judges a 2xx response whose body is empty or valid JSON.
// It returns the payload handed to the caller, or an *ApplicationError.
type Discriminator func(status int, body []byte) (json.RawMessage, error)

// StatusDiscriminator treats every 2xx response as a success and passes the body through
func StatusDiscriminator(_ int, body []byte) (json.RawMessage, error) {
	return json.RawMessage(body), nil
}

// EnvelopeDiscriminator reads the console envelope: only the literal "success" code
// is a success, and its data field becomes the payload.
func EnvelopeDiscriminator(_ int, body []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty response envelope")
	}

	var env sdamodels.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("malformed response envelope: %w", err)
	}

	if env.Code != sdamodels.CodeSuccess {
		msg := env.Message
		if msg == "" {
			msg = "server return error"
		}
		return nil, &ApplicationError{Code: env.Code, Message: msg, Details: env.Data}
	}

	return env.Data, nil
}
