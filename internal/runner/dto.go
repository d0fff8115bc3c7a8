package runner

import (
	"time"

	"iris-attendance-sync/internal/reconcile"
)

// Report: 한 번의 실행 요약. serve 모드에서 그대로 응답으로 나간다.
type Report struct {
	RunID      string          `json:"runId"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
	Events     int             `json:"events"`     // 조회한 일정 수
	Candidates int             `json:"candidates"` // 파싱을 통과한 생성 후보 수
	Stats      reconcile.Stats `json:"stats"`
	Error      string          `json:"error,omitempty"` // 치명적 오류 (비어 있으면 정상 종료)
}
