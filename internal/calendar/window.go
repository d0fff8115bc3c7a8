package calendar

import "time"

const dateLayout = "2006-01-02"

// Window: 조회 구간. 업무 규칙상 이번 주 월요일부터 13일 뒤
// 일요일까지 — 현재 주에 닻을 내린 2주 선행 구간이다.
type Window struct {
	From  time.Time // 월요일 00:00
	Until time.Time // 13일 뒤 일요일
}

// CurrentWindow: now가 속한 주의 월요일을 기준으로 구간을 만든다.
// 일요일은 직전 월요일에서 시작한 주에 속한다.
func CurrentWindow(now time.Time) Window {
	// time.Weekday는 일요일이 0 — 월요일 기준 오프셋으로 바꾼다
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
	return Window{From: monday, Until: monday.AddDate(0, 0, 13)}
}

// 캘린더 API용 경계 (시각 포함)
func (w Window) ViewFrom() string  { return w.From.Format(dateLayout) + " 00:00" }
func (w Window) ViewUntil() string { return w.Until.Format(dateLayout) + " 23:59" }

// 백엔드 정리/생성용 경계 (날짜만)
func (w Window) StartDate() string { return w.From.Format(dateLayout) }
func (w Window) EndDate() string   { return w.Until.Format(dateLayout) }
