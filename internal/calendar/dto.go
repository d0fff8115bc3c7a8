package calendar

import "encoding/json"

// Member: 팀원 목록 조회 결과 한 건.
// 일정 조회 요청의 memberList에 원본 그대로 되돌려 보내야 하므로
// (서버가 요구하는 필드를 전부 알 수 없다) 원본 JSON을 보관한다.
type Member struct {
	MemberID json.Number `json:"memberId"`
	Name     string      `json:"name"`

	raw json.RawMessage
}

func (m *Member) UnmarshalJSON(b []byte) error {
	type alias Member
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*m = Member(a)
	m.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (m Member) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	type alias Member
	return json.Marshal(alias(m))
}

// ScheduleView: 일정 한 건. scheduleType은 캘린더 내부 분류라
// 해석하지 않고 그대로 들고 다닌다 (근태 유형과 무관).
type ScheduleView struct {
	Summary      string          `json:"summary"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	ScheduleType json.RawMessage `json:"scheduleType,omitempty"`
}

// MemberSchedule: 팀원별 일정 목록 (일정 조회 응답의 한 요소).
type MemberSchedule struct {
	MemberID         json.Number    `json:"memberId"`
	ScheduleViewList []ScheduleView `json:"scheduleViewList"`
}

// Event: 파이프라인 내부에서 쓰는 평탄화된 일정.
type Event struct {
	MemberID     string
	Summary      string
	StartDate    string
	EndDate      string
	ScheduleType json.RawMessage
}

// FlattenEvents: 팀원별 응답을 일정 단위로 평탄화한다.
// 캘린더가 돌려준 순서를 그대로 유지한다.
func FlattenEvents(schedules []MemberSchedule) []Event {
	var out []Event
	for _, ms := range schedules {
		for _, sv := range ms.ScheduleViewList {
			out = append(out, Event{
				MemberID:     ms.MemberID.String(),
				Summary:      sv.Summary,
				StartDate:    sv.StartDate,
				EndDate:      sv.EndDate,
				ScheduleType: sv.ScheduleType,
			})
		}
	}
	return out
}
