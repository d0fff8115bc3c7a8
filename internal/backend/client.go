package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	requestTimeout   = 10 * time.Second
	createMaxRetries = 3
	// 생성 성공 후 고정 대기 — 백엔드 요청 제한을 건드리지 않기 위한 속도 조절
	createPace = 100 * time.Millisecond
)

// Client: 근태 백엔드 API 클라이언트. Login 이후의 모든 호출은
// Bearer 토큰을 싣는다. 세션 상태(토큰, 만료)는 이 객체가 들고 다닌다.
type Client struct {
	baseURL string
	http    *http.Client

	token     string
	expiresAt time.Time

	sleep func(time.Duration)
	now   func() time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Login: POST /auth/login → accessToken. 토큰의 exp 클레임을 해석해
// 이미 만료된 토큰이면 어떤 단계도 시작하기 전에 거부한다.
func (c *Client) Login(ctx context.Context, email, password string) error {
	log.Printf("[api] %s 로그인 중...", email)
	var res loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &res); err != nil {
		return err
	}
	if res.AccessToken == "" {
		return fmt.Errorf("로그인 응답에 accessToken이 없습니다")
	}
	c.token = res.AccessToken

	if exp, err := tokenExpiry(res.AccessToken); err != nil {
		// exp가 없는 토큰도 동작은 한다 — 만료 감시만 포기
		log.Printf("[api] 토큰 만료 시각 확인 불가: %v", err)
	} else {
		c.expiresAt = exp
		if !exp.After(c.now()) {
			return fmt.Errorf("발급받은 토큰이 이미 만료됨 (exp=%s)", exp.Format(time.RFC3339))
		}
		log.Printf("[api] 로그인 성공 (세션 만료 %s)", exp.Format(time.RFC3339))
		return nil
	}
	log.Printf("[api] 로그인 성공")
	return nil
}

// SessionExpiresAt: 현재 세션 토큰의 만료 시각 (확인 불가면 zero).
func (c *Client) SessionExpiresAt() time.Time { return c.expiresAt }

// ListUsers: GET /users
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	log.Printf("[api] 사용자 %d명 조회", len(users))
	return users, nil
}

// ListAttendanceTypes: GET /attendance-types
func (c *Client) ListAttendanceTypes(ctx context.Context) ([]AttendanceType, error) {
	var types []AttendanceType
	if err := c.do(ctx, http.MethodGet, "/attendance-types", nil, nil, &types); err != nil {
		return nil, err
	}
	log.Printf("[api] 근태 유형 %d건 조회", len(types))
	return types, nil
}

// ListAttendances: GET /attendances?startDate&endDate
func (c *Client) ListAttendances(ctx context.Context, startDate, endDate string) ([]Attendance, error) {
	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)
	var rows []Attendance
	if err := c.do(ctx, http.MethodGet, "/attendances", query, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteAttendance: DELETE /attendances/{id}
func (c *Client) DeleteAttendance(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/attendances/"+id, nil, nil, nil)
}

// CreateAttendance: POST /attendances
func (c *Client) CreateAttendance(ctx context.Context, req CreateAttendanceRequest) (*Attendance, error) {
	var created Attendance
	if err := c.do(ctx, http.MethodPost, "/attendances", nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateAttendanceWithRetry: 2단 백오프 재시도.
//   - 429: 전역 처리량 규칙 → 2^n초 기하 대기. 일반 실패 예산을
//     소모하지 않고 별도로 같은 한도(3회 대기)까지 물러난다
//   - 그 외 오류: 일시적 장애 → 1초 고정 대기, 한도 소진 시 오류 반환
//
// 성공 시에도 createPace만큼 쉰다.
func (c *Client) CreateAttendanceWithRetry(ctx context.Context, req CreateAttendanceRequest) (*Attendance, error) {
	var lastErr error
	attempt := 0     // 429 이외의 실패 횟수
	rateLimited := 0 // 429로 물러난 횟수
	for {
		created, err := c.CreateAttendance(ctx, req)
		if err == nil {
			c.sleep(createPace)
			return created, nil
		}
		lastErr = err

		if IsRateLimited(err) {
			if rateLimited >= createMaxRetries {
				break
			}
			wait := time.Duration(1<<rateLimited) * time.Second
			log.Printf("[api] 요청 제한, %s 대기...", wait)
			c.sleep(wait)
			rateLimited++
			continue
		}
		attempt++
		if attempt >= createMaxRetries {
			break
		}
		log.Printf("[api] 생성 실패 (%d/%d), 재시도: %v", attempt, createMaxRetries, err)
		c.sleep(time.Second)
	}
	log.Printf("[api] 재시도 후 생성 실패: %v", lastErr)
	return nil, lastErr
}

// ===== helpers =====

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			Status: resp.StatusCode,
			Method: method,
			Path:   path,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// tokenExpiry: 서명 검증 없이 exp 클레임만 읽는다. 검증은 백엔드 몫이고
// 여기서는 세션 수명 파악이 목적이다.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("exp 클레임 없음")
	}
	return exp.Time, nil
}
