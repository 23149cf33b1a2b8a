package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRegister(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("register_%d@example.com", time.Now().UnixNano())
	reqBody := map[string]interface{}{
		"name":     "Register User",
		"email":    email,
		"password": "sevenchars",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest("POST", "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status %d but got %d", http.StatusCreated, resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Error decoding register response: %v", err)
	}

	if result["token"] == nil {
		t.Errorf("Expected token in register response")
	}
	user, ok := result["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected user field in register response")
	}
	// Password dan daftar token tidak boleh pernah bocor di response
	if _, exists := user["password"]; exists {
		t.Errorf("Password must not appear in register response")
	}
	if _, exists := user["tokens"]; exists {
		t.Errorf("Token list must not appear in register response")
	}
	if user["email"] != email {
		t.Errorf("Expected email %q but got %v", email, user["email"])
	}
	// Age tidak dikirim, harus default 0
	if user["age"].(float64) != 0 {
		t.Errorf("Expected default age 0 but got %v", user["age"])
	}
}

func TestRegisterLowercasesEmail(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("MiXeD_%d@Example.COM", time.Now().UnixNano())
	reqBody := map[string]interface{}{
		"name":     "Mixed Case",
		"email":    email,
		"password": "sevenchars",
	}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Register request failed: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	user := result["user"].(map[string]interface{})
	got, _ := user["email"].(string)
	for _, r := range got {
		if r >= 'A' && r <= 'Z' {
			t.Errorf("Expected lowercased email but got %q", got)
			break
		}
	}
}

func TestRegisterRejectsBadPasswords(t *testing.T) {
	app := CreateTestApp()

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "short"},
		{"contains password", "mypassword123"},
		{"contains password uppercase", "MyPASSWORD123"},
	}

	for _, tc := range cases {
		reqBody := map[string]interface{}{
			"name":     "Bad Password",
			"email":    fmt.Sprintf("badpass_%d@example.com", time.Now().UnixNano()),
			"password": tc.password,
		}
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest("POST", "/users", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Register request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Case %q: expected status 400 but got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := CreateTestApp()

	_, _, email := RegisterTestUser(app, t, "duplicate")

	reqBody := map[string]interface{}{
		"name":     "Second User",
		"email":    email,
		"password": "sevenchars",
	}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for duplicate email but got %d", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	app := CreateTestApp()

	_, _, email := RegisterTestUser(app, t, "login")

	loginBody := map[string]string{
		"email":    email,
		"password": "sevenchars",
	}
	body, _ := json.Marshal(loginBody)
	req := httptest.NewRequest("POST", "/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d but got %d", http.StatusOK, resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Error decoding login response: %v", err)
	}
	if result["token"] == nil {
		t.Errorf("Expected token in login response")
	}
}

// TestLoginFailsUniformly: email tidak terdaftar dan password salah harus
// menghasilkan respons yang sama persis
func TestLoginFailsUniformly(t *testing.T) {
	app := CreateTestApp()

	_, _, email := RegisterTestUser(app, t, "uniform")

	attempt := func(email, password string) (int, string) {
		loginBody := map[string]string{"email": email, "password": password}
		body, _ := json.Marshal(loginBody)
		req := httptest.NewRequest("POST", "/users/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Login request failed: %v", err)
		}
		defer resp.Body.Close()
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		msg, _ := result["error"].(string)
		return resp.StatusCode, msg
	}

	unknownStatus, unknownMsg := attempt("nosuchuser@example.com", "whatever123")
	wrongStatus, wrongMsg := attempt(email, "wrongpassword1")

	if unknownStatus != http.StatusBadRequest || wrongStatus != http.StatusBadRequest {
		t.Errorf("Expected 400 for both failures, got %d and %d", unknownStatus, wrongStatus)
	}
	if unknownMsg != wrongMsg {
		t.Errorf("Expected identical error messages, got %q and %q", unknownMsg, wrongMsg)
	}
}

func TestAuthRequired(t *testing.T) {
	app := CreateTestApp()

	cases := []struct {
		method string
		path   string
	}{
		{"GET", "/users/me"},
		{"GET", "/tasks"},
		{"POST", "/users/logout"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 but got %d", tc.method, tc.path, resp.StatusCode)
		}
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if result["error"] != "Please authenticate." {
			t.Errorf("%s %s: expected generic auth error, got %v", tc.method, tc.path, result["error"])
		}
	}
}

// TestLogout: token yang dicabut harus langsung ditolak,
// token lain milik user yang sama tetap berlaku
func TestLogout(t *testing.T) {
	app := CreateTestApp()

	token1, _, email := RegisterTestUser(app, t, "logout")

	// Login lagi untuk mendapat token kedua
	loginBody := map[string]string{"email": email, "password": "sevenchars"}
	body, _ := json.Marshal(loginBody)
	loginReq := httptest.NewRequest("POST", "/users/login", bytes.NewReader(body))
	loginReq.Header.Set("Content-Type", "application/json")
	loginResp, err := app.Test(loginReq)
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	var loginResult map[string]interface{}
	json.NewDecoder(loginResp.Body).Decode(&loginResult)
	loginResp.Body.Close()
	token2 := loginResult["token"].(string)

	// Logout dengan token pertama
	logoutReq := httptest.NewRequest("POST", "/users/logout", nil)
	logoutReq.Header.Set("Authorization", "Bearer "+token1)
	logoutResp, err := app.Test(logoutReq)
	if err != nil {
		t.Fatalf("Logout request failed: %v", err)
	}
	logoutResp.Body.Close()
	if logoutResp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for logout but got %d", logoutResp.StatusCode)
	}

	// Token pertama harus ditolak sekarang
	meReq := httptest.NewRequest("GET", "/users/me", nil)
	meReq.Header.Set("Authorization", "Bearer "+token1)
	meResp, err := app.Test(meReq)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	meResp.Body.Close()
	if meResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 with revoked token but got %d", meResp.StatusCode)
	}

	// Token kedua masih berlaku
	meReq2 := httptest.NewRequest("GET", "/users/me", nil)
	meReq2.Header.Set("Authorization", "Bearer "+token2)
	meResp2, err := app.Test(meReq2)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	meResp2.Body.Close()
	if meResp2.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with remaining token but got %d", meResp2.StatusCode)
	}
}

func TestLogoutAll(t *testing.T) {
	app := CreateTestApp()

	token1, _, email := RegisterTestUser(app, t, "logoutall")

	loginBody := map[string]string{"email": email, "password": "sevenchars"}
	body, _ := json.Marshal(loginBody)
	loginReq := httptest.NewRequest("POST", "/users/login", bytes.NewReader(body))
	loginReq.Header.Set("Content-Type", "application/json")
	loginResp, err := app.Test(loginReq)
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	var loginResult map[string]interface{}
	json.NewDecoder(loginResp.Body).Decode(&loginResult)
	loginResp.Body.Close()
	token2 := loginResult["token"].(string)

	logoutReq := httptest.NewRequest("POST", "/users/logoutAll", nil)
	logoutReq.Header.Set("Authorization", "Bearer "+token2)
	logoutResp, err := app.Test(logoutReq)
	if err != nil {
		t.Fatalf("LogoutAll request failed: %v", err)
	}
	logoutResp.Body.Close()
	if logoutResp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for logoutAll but got %d", logoutResp.StatusCode)
	}

	// Semua token harus ditolak
	for i, tokenString := range []string{token1, token2} {
		req := httptest.NewRequest("GET", "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Token %d: expected 401 after logoutAll but got %d", i+1, resp.StatusCode)
		}
	}
}
