package portal

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Driver: 브라우저 자동화 협력자의 경계. 이 파이프라인은 UI 조작을
// 전혀 모르고, "인증 메일을 방금 요청했다"는 시각과 로그인 완료 후의
// 쿠키만 받는다.
type Driver interface {
	// RequestOTP: 포털 로그인 절차를 진행해 2차 인증 메일을 요청하고,
	// 요청 직후 시각(UTC)을 반환한다 — OTP 워터마크의 기준점.
	RequestOTP(ctx context.Context) (time.Time, error)

	// SubmitOTP: 확인된 인증 코드를 입력하고 캘린더 SSO 전환까지 마친다.
	SubmitOTP(ctx context.Context, code string) error

	// Cookies: 캘린더 도메인에서 유효한 인증 쿠키.
	Cookies(ctx context.Context) ([]*http.Cookie, error)
}

// ParseCookieHeader: "k1=v1; k2=v2" 형태의 Cookie 헤더 문자열을 푼다.
// 브라우저에서 복사한 세션을 설정 파일로 주입할 때 쓴다.
func ParseCookieHeader(s string) []*http.Cookie {
	var out []*http.Cookie
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		if !found || name == "" {
			continue
		}
		out = append(out, &http.Cookie{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return out
}
