package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient talks to the API channel of a running server
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type User struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	MobileNumber *string  `json:"mobile_number"`
	Roles        []string `json:"roles"`
}

type loginResponse struct {
	Data User `json:"data"`
}

// Login signs in with a mobile number and password and returns the session token
func (c *APIClient) Login(mobile, password string) (*User, string, error) {
	return c.login(map[string]interface{}{
		"mobile_number": mobile,
		"password":      password,
	})
}

// LoginWithFacebook signs in with a Facebook id
func (c *APIClient) LoginWithFacebook(facebookID int64) (*User, string, error) {
	return c.login(map[string]interface{}{"facebook_id": facebookID})
}

func (c *APIClient) login(body map[string]interface{}) (*User, string, error) {
	resp, err := c.post("/login", body, "")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", readError(resp)
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("decode failed: %w", err)
	}

	token := resp.Header.Get("X-Session-Token")
	if token == "" {
		return nil, "", fmt.Errorf("login response carried no X-Session-Token")
	}
	return &result.Data, token, nil
}

// Logout forgets the device for token
func (c *APIClient) Logout(token string) error {
	resp, err := c.post("/logout", nil, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	return nil
}

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode failed: %w", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func readError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("request failed (%d): %s", resp.StatusCode, string(bodyBytes))
}
