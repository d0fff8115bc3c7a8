package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "batch@example.com",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestClient(url string) (*Client, *[]time.Duration) {
	c := NewClient(url)
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestLogin(t *testing.T) {
	t.Run("bearer carried on subsequent calls", func(t *testing.T) {
		token := signedToken(t, time.Now().Add(time.Hour))
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/login":
				var req loginRequest
				json.NewDecoder(r.Body).Decode(&req)
				if req.Email != "batch@example.com" || req.Password != "pw" {
					http.Error(w, "bad credentials", http.StatusUnauthorized)
					return
				}
				json.NewEncoder(w).Encode(loginResponse{AccessToken: token})
			case "/users":
				if got := r.Header.Get("Authorization"); got != "Bearer "+token {
					http.Error(w, "missing bearer", http.StatusUnauthorized)
					return
				}
				w.Write([]byte(`[{"id":"u1","name":"김철수","email":"kim@x.y"}]`))
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		c, _ := newTestClient(srv.URL)
		if err := c.Login(context.Background(), "batch@example.com", "pw"); err != nil {
			t.Fatalf("Login: %v", err)
		}
		users, err := c.ListUsers(context.Background())
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if len(users) != 1 || users[0].Name != "김철수" {
			t.Errorf("users = %+v", users)
		}
	})

	t.Run("session expiry read from token", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		token := signedToken(t, exp)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(loginResponse{AccessToken: token})
		}))
		defer srv.Close()

		c, _ := newTestClient(srv.URL)
		if err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
			t.Fatalf("Login: %v", err)
		}
		if got := c.SessionExpiresAt(); !got.Equal(exp) {
			t.Errorf("SessionExpiresAt = %s, want %s", got, exp)
		}
	})

	t.Run("expired token refused", func(t *testing.T) {
		token := signedToken(t, time.Now().Add(-time.Minute))
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(loginResponse{AccessToken: token})
		}))
		defer srv.Close()

		c, _ := newTestClient(srv.URL)
		if err := c.Login(context.Background(), "a@b.c", "pw"); err == nil {
			t.Fatal("expired token accepted")
		}
	})
}

func TestCreateAttendanceWithRetry(t *testing.T) {
	t.Run("exponential backoff on 429 then success", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls <= 2 {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"id":"att-1","userId":"u1","typeId":"t1","startDate":"2026-08-25","endDate":"2026-08-25"}`))
		}))
		defer srv.Close()

		c, slept := newTestClient(srv.URL)
		rec, err := c.CreateAttendanceWithRetry(context.Background(), CreateAttendanceRequest{UserID: "u1", TypeID: "t1"})
		if err != nil || rec == nil {
			t.Fatalf("rec = %v, err = %v", rec, err)
		}
		// 1초, 2초 (기하 증가) + 성공 후 속도 조절
		want := []time.Duration{1 * time.Second, 2 * time.Second, createPace}
		if len(*slept) != len(want) {
			t.Fatalf("slept = %v, want %v", *slept, want)
		}
		for i := range want {
			if (*slept)[i] != want[i] {
				t.Errorf("slept[%d] = %v, want %v", i, (*slept)[i], want[i])
			}
		}
	})

	t.Run("three 429s then success", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls <= 3 {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"id":"att-2","userId":"u1","typeId":"t1","startDate":"2026-08-25","endDate":"2026-08-25"}`))
		}))
		defer srv.Close()

		c, slept := newTestClient(srv.URL)
		rec, err := c.CreateAttendanceWithRetry(context.Background(), CreateAttendanceRequest{UserID: "u1", TypeID: "t1"})
		if err != nil || rec == nil {
			t.Fatalf("rec = %v, err = %v", rec, err)
		}
		// 요청 제한은 일반 실패 예산과 별개로 1+2+4초 물러난다
		want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, createPace}
		if len(*slept) != len(want) {
			t.Fatalf("slept = %v, want %v", *slept, want)
		}
		for i := range want {
			if (*slept)[i] != want[i] {
				t.Errorf("slept[%d] = %v, want %v", i, (*slept)[i], want[i])
			}
		}
	})

	t.Run("rate limit exhaustion returns last error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c, slept := newTestClient(srv.URL)
		rec, err := c.CreateAttendanceWithRetry(context.Background(), CreateAttendanceRequest{})
		if rec != nil || err == nil {
			t.Fatalf("rec = %v, err = %v", rec, err)
		}
		if !IsRateLimited(err) {
			t.Errorf("err = %v, want rate-limited", err)
		}
		// 1 + 2 + 4초 — 고정 간격이 아니라 기하 증가
		want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
		if len(*slept) != len(want) {
			t.Fatalf("slept = %v", *slept)
		}
		for i := range want {
			if (*slept)[i] != want[i] {
				t.Errorf("slept[%d] = %v, want %v", i, (*slept)[i], want[i])
			}
		}
	})

	t.Run("other errors wait fixed 1s and fail on last attempt", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c, slept := newTestClient(srv.URL)
		rec, err := c.CreateAttendanceWithRetry(context.Background(), CreateAttendanceRequest{})
		if rec != nil || err == nil {
			t.Fatalf("rec = %v, err = %v", rec, err)
		}
		if calls != createMaxRetries {
			t.Errorf("calls = %d", calls)
		}
		// 마지막 시도 후에는 대기 없이 바로 실패를 돌려준다
		want := []time.Duration{1 * time.Second, 1 * time.Second}
		if len(*slept) != len(want) || (*slept)[0] != time.Second || (*slept)[1] != time.Second {
			t.Errorf("slept = %v, want %v", *slept, want)
		}
	})
}

func TestDeleteAttendance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/attendances/att-9" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	if err := c.DeleteAttendance(context.Background(), "att-9"); err != nil {
		t.Fatalf("DeleteAttendance: %v", err)
	}
}

func TestListAttendancesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("startDate") != "2026-08-24" || r.URL.Query().Get("endDate") != "2026-09-06" {
			t.Errorf("query = %v", r.URL.Query())
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	rows, err := c.ListAttendances(context.Background(), "2026-08-24", "2026-09-06")
	if err != nil {
		t.Fatalf("ListAttendances: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v", rows)
	}
}
