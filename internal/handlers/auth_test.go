package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"lightsensord/internal/service"
)

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSignUp(t *testing.T) {
	cases := []struct {
		name     string
		auth     *mockAuth
		body     string
		wantCode int
		wantID   int
	}{
		{
			name:     "registers operator",
			auth:     &mockAuth{signUpID: 42},
			body:     `{"username":"night-shift","password":"p"}`,
			wantCode: http.StatusCreated,
			wantID:   42,
		},
		{
			name:     "taken username",
			auth:     &mockAuth{signUpErr: fmt.Errorf("insert operator: %w", service.ErrOperatorExists)},
			body:     `{"username":"night-shift","password":"p"}`,
			wantCode: http.StatusConflict,
		},
		{
			name:     "blank username",
			auth:     &mockAuth{signUpErr: service.ErrEmptyUsername},
			body:     `{"username":"  ","password":"p"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing password",
			auth:     &mockAuth{},
			body:     `{"username":"night-shift"}`,
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: tc.auth})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, postJSON("/auth/sign-up", tc.body))

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantID == 0 {
				return
			}
			var out struct {
				ID int `json:"id"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.ID != tc.wantID {
				t.Fatalf("id=%d (%v), want %d", out.ID, err, tc.wantID)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	cases := []struct {
		name      string
		auth      *mockAuth
		wantCode  int
		wantToken string
	}{
		{name: "valid credentials", auth: &mockAuth{genTokenToken: "tok-7"}, wantCode: http.StatusOK, wantToken: "tok-7"},
		{name: "unknown operator", auth: &mockAuth{genTokenErr: service.ErrUserNotFound}, wantCode: http.StatusUnauthorized},
		{name: "wrong password", auth: &mockAuth{genTokenErr: service.ErrInvalidPassword}, wantCode: http.StatusUnauthorized},
		{name: "store failure", auth: &mockAuth{genTokenErr: errors.New("db down")}, wantCode: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: tc.auth})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, postJSON("/auth/sign-in", `{"username":"night-shift","password":"p"}`))

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			var out map[string]string
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out["token"] != tc.wantToken {
				t.Fatalf("token=%q, want %q", out["token"], tc.wantToken)
			}
			if tc.auth.lastGenUsername != "night-shift" {
				t.Fatalf("service saw username %q", tc.auth.lastGenUsername)
			}
		})
	}
}

func TestSignedInOperatorDrivesSensor(t *testing.T) {
	auth := &mockAuth{genTokenToken: "tok-7", parseID: 7}
	sn := &mockSensor{}
	r := newTestRouter(&service.Service{
		Authorization: auth,
		Sensor:        sn,
		Monitoring:    &mockMonitoring{},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/auth/sign-in", `{"username":"night-shift","password":"p"}`))
	var signIn map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &signIn)

	for _, path := range []string{"/api/v1/sensor/enable", "/api/v1/sensor/calibrate", "/api/v1/sensor/disable"} {
		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer "+signIn["token"])
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", path, w.Code, w.Body.String())
		}
	}
	if auth.lastParseToken != "tok-7" {
		t.Fatalf("token checked = %q", auth.lastParseToken)
	}
	if !slices.Equal(sn.operators, []int{7, 7, 7}) {
		t.Fatalf("operators seen by the sensor service = %v", sn.operators)
	}
}
