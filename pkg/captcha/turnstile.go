package captcha

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

type TurnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
	Action     string   `json:"action"`
}

// VerifyTurnstile checks a Cloudflare Turnstile token. Verification is
// skipped when no secret key is configured (local development).
func VerifyTurnstile(token string) (bool, error) {
	secretKey := os.Getenv("CF_TURNSTILE_SECRET_KEY")
	if secretKey == "" {
		return true, nil
	}

	if token == "" {
		return false, errors.New("missing turnstile token")
	}

	formData := url.Values{}
	formData.Add("secret", secretKey)
	formData.Add("response", token)

	resp, err := http.Post(
		"https://challenges.cloudflare.com/turnstile/v0/siteverify",
		"application/x-www-form-urlencoded",
		strings.NewReader(formData.Encode()),
	)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	var result TurnstileResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, err
	}

	return result.Success, nil
}
