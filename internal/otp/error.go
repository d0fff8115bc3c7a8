package otp

import "fmt"

// 인증 오류 코드 (필요에 따라 추가)
const (
	ErrCodeConnect = "CONNECT_FAILED"
	ErrCodeNoMail  = "MAIL_NOT_FOUND"
	ErrCodeParse   = "SUBJECT_PARSE"
)

// AuthError: 메일함 연결/검색/제목 파싱 단계의 오류.
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

func newAuthError(code, msg string, err error) error {
	return &AuthError{Code: code, Message: msg, Err: err}
}

// AuthTimeoutError: 폴링 한도 안에 유효한 인증 코드를 받지 못함.
// 로그인 자체가 불가능하므로 호출자에게는 치명적 오류로 전파된다.
type AuthTimeoutError struct {
	Retries int
	Err     error // 마지막 하위 오류 (없을 수 있음)
}

func (e *AuthTimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("새로운 2차 인증 메일을 확인하지 못했습니다 (재시도 %d회): %v", e.Retries, e.Err)
	}
	return fmt.Sprintf("새로운 2차 인증 메일을 확인하지 못했습니다 (재시도 %d회)", e.Retries)
}

func (e *AuthTimeoutError) Unwrap() error { return e.Err }
