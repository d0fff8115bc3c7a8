package reconcile

import (
	"context"
	"fmt"
	"log"
	"strings"

	"iris-attendance-sync/internal/backend"
	"iris-attendance-sync/internal/calendar"
	"iris-attendance-sync/internal/summary"
)

// Stats: 한 번의 동기화 결과 집계.
type Stats struct {
	Deleted int `json:"deleted"` // 1단계에서 삭제를 시도한 기존 기록 수
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

func (s Stats) String() string {
	return fmt.Sprintf("삭제 %d, 성공 %d, 실패 %d, 건너뜀 %d", s.Deleted, s.Success, s.Failed, s.Skipped)
}

// Candidate: 일정 제목에서 추출해 생성 대상으로 올라온 항목.
type Candidate struct {
	Summary   string // 원본 제목 (로그 식별용)
	Tag       string
	Author    string
	Content   *string
	StartDate string // 시각이 붙어 있을 수 있음 — 생성 시 날짜만 남긴다
	EndDate   string
}

// BuildCandidates: 일정 목록을 파서에 통과시켜 생성 후보로 바꾼다.
// 캘린더가 돌려준 순서를 유지한다.
func BuildCandidates(events []calendar.Event, p *summary.Parser) []Candidate {
	var out []Candidate
	for _, ev := range events {
		entry, ok := p.Parse(ev.Summary)
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Summary:   ev.Summary,
			Tag:       entry.Tag,
			Author:    entry.Author,
			Content:   entry.Content,
			StartDate: ev.StartDate,
			EndDate:   ev.EndDate,
		})
	}
	return out
}

// Backend: 엔진이 필요로 하는 쓰기 가능 백엔드 (로그인 완료 상태).
type Backend interface {
	ListAttendances(ctx context.Context, startDate, endDate string) ([]backend.Attendance, error)
	DeleteAttendance(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]backend.User, error)
	ListAttendanceTypes(ctx context.Context) ([]backend.AttendanceType, error)
	CreateAttendanceWithRetry(ctx context.Context, req backend.CreateAttendanceRequest) (*backend.Attendance, error)
}

// Engine: 구간 삭제 → 재생성 2단계 동기화.
//
// 1단계가 구간을 무조건 비우고 3단계가 다시 만들기 때문에, 같은 캘린더
// 상태에 대해 전체 파이프라인을 다시 돌려도 구간의 최종 기록 집합은
// 동일하다 (원자적이지는 않다 — 동시 실행은 호출자가 막아야 한다).
type Engine struct {
	api Backend
}

func NewEngine(api Backend) *Engine {
	return &Engine{api: api}
}

// Run: 후보 전체를 [startDate, endDate] 구간에 반영하고 집계를 낸다.
//
// 단계 순서는 고정이다:
//  1. 구간 내 기존 기록 전부 삭제 (개별 실패는 기록만 하고 계속)
//  2. 사용자/근태 유형 메타데이터 조회 — 실패 시 이후 단계 포기 (치명적)
//  3. 후보별 사용자·유형 해석 후 재시도 포함 생성
func (e *Engine) Run(ctx context.Context, candidates []Candidate, startDate, endDate string) (Stats, error) {
	var st Stats

	// ===== 1단계: 구간 정리 =====
	deleted, err := e.purge(ctx, startDate, endDate)
	if err != nil {
		// 구간 조회 자체가 실패하면 생성도 시작하지 않는다 —
		// 이전 실행의 기록이 남은 채 생성하면 멱등성이 깨진다
		return st, err
	}
	st.Deleted = deleted

	// ===== 2단계: 메타데이터 =====
	users, err := e.api.ListUsers(ctx)
	if err != nil {
		return st, fmt.Errorf("사용자 목록 조회 실패: %w", err)
	}
	types, err := e.api.ListAttendanceTypes(ctx)
	if err != nil {
		return st, fmt.Errorf("근태 유형 조회 실패: %w", err)
	}

	userByName := make(map[string]string, len(users))
	for _, u := range users {
		userByName[u.Name] = u.ID
	}
	typeByCode := make(map[string]string, len(types))
	for _, t := range types {
		typeByCode[t.Code] = t.ID
	}

	// ===== 3단계: 개별 생성 =====
	for _, cand := range candidates {
		userID, ok := userByName[cand.Author]
		if !ok {
			// 이름 불일치는 영구적 — 재시도하지 않는다
			st.Skipped++
			log.Printf("[sync] 사용자 미등록, 건너뜀: %s (작성자 %q)", cand.Summary, cand.Author)
			continue
		}
		code, ok := summary.TypeCode(cand.Tag)
		if !ok {
			st.Skipped++
			log.Printf("[sync] 매핑되지 않는 태그, 건너뜀: %s (태그 %q)", cand.Summary, cand.Tag)
			continue
		}
		typeID, ok := typeByCode[code]
		if !ok {
			st.Skipped++
			log.Printf("[sync] 백엔드에 %s 유형 없음, 건너뜀: %s", code, cand.Summary)
			continue
		}

		req := backend.CreateAttendanceRequest{
			UserID:    userID,
			TypeID:    typeID,
			StartDate: dateOnly(cand.StartDate),
			EndDate:   dateOnly(cand.EndDate),
			Content:   cand.Content,
		}
		rec, err := e.api.CreateAttendanceWithRetry(ctx, req)
		if err != nil || rec == nil {
			st.Failed++
			log.Printf("[sync] 생성 실패: %s: %v", cand.Summary, err)
			continue
		}
		st.Success++
		log.Printf("[sync] 생성 완료: %s (%s ~ %s)", cand.Summary, req.StartDate, req.EndDate)
	}

	log.Printf("[sync] 동기화 완료: %s", st)
	return st, nil
}

// purge: 구간 내 기존 기록을 모두 삭제한다. 개별 삭제 실패는
// 로그만 남기고 진행한다 (최선 노력, 재시도 없음).
// 반환값은 삭제를 시도한 건수.
func (e *Engine) purge(ctx context.Context, startDate, endDate string) (int, error) {
	log.Printf("[api] %s ~ %s 기존 근태 조회...", startDate, endDate)
	rows, err := e.api.ListAttendances(ctx, startDate, endDate)
	if err != nil {
		return 0, fmt.Errorf("기존 근태 조회 실패: %w", err)
	}
	if len(rows) == 0 {
		log.Printf("[api] 삭제할 기존 근태 없음")
		return 0, nil
	}

	log.Printf("[api] 기존 근태 %d건 삭제 중...", len(rows))
	for i, row := range rows {
		if err := e.api.DeleteAttendance(ctx, row.ID); err != nil {
			log.Printf("[api] 삭제 실패 (계속 진행): %s: %v", row.ID, err)
		}
		if (i+1)%10 == 0 {
			log.Printf("[api] 삭제 진행 %d/%d...", i+1, len(rows))
		}
	}
	return len(rows), nil
}

// dateOnly: "2026-08-25 00:00" / "2026-08-25T00:00:00" → "2026-08-25"
func dateOnly(s string) string {
	if i := strings.IndexAny(s, " T"); i >= 0 {
		return s[:i]
	}
	return s
}
