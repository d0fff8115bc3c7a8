package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError: 백엔드가 2xx가 아닌 응답을 돌려줌. 상태 코드를 보존해
// 쓰기 재시도 정책(429 vs 그 외)이 분기할 수 있게 한다.
type APIError struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsRateLimited: 요청 제한(429) 여부.
func IsRateLimited(err error) bool {
	var api *APIError
	return errors.As(err, &api) && api.Status == http.StatusTooManyRequests
}
