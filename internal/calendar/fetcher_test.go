package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testWindow() Window {
	return CurrentWindow(time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC))
}

func TestFetchTeamEvents(t *testing.T) {
	var scheduleReq struct {
		MemberList []map[string]any `json:"memberList"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/individualUserList":
			if c, err := r.Cookie("WORKS_SES"); err != nil || c.Value != "abc" {
				http.Error(w, "no session", http.StatusUnauthorized)
				return
			}
			// 알 수 없는 확장 필드 포함 — 그대로 되돌아와야 한다
			w.Write([]byte(`{"userInfoList":[
				{"memberId":1001,"name":"김철수","photoHash":"zz","domainId":7},
				{"memberId":1002,"name":"이경봉"}
			]}`))
		case "/api/memberScheduleViewList":
			if got := r.URL.Query().Get("viewFrom"); got != "2026-08-24 00:00" {
				t.Errorf("viewFrom = %q", got)
			}
			if got := r.URL.Query().Get("viewUntil"); got != "2026-09-06 23:59" {
				t.Errorf("viewUntil = %q", got)
			}
			if got := r.URL.Query().Get("rl"); got != "24101" {
				t.Errorf("rl = %q", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&scheduleReq); err != nil {
				t.Errorf("decode schedule request: %v", err)
			}
			w.Write([]byte(`[
				{"memberId":1001,"scheduleViewList":[
					{"summary":"[출장]시스템 점검-김철수","startDate":"2026-08-25 00:00","endDate":"2026-08-26 23:59","scheduleType":3}
				]},
				{"memberId":1002,"scheduleViewList":[]}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, []*http.Cookie{{Name: "WORKS_SES", Value: "abc"}})
	schedules, err := f.FetchTeamEvents(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("FetchTeamEvents: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("schedules = %d", len(schedules))
	}

	// 팀원 원본 필드가 일정 요청으로 그대로 전달되는지
	if len(scheduleReq.MemberList) != 2 {
		t.Fatalf("memberList = %d", len(scheduleReq.MemberList))
	}
	if scheduleReq.MemberList[0]["photoHash"] != "zz" {
		t.Errorf("extension field dropped: %v", scheduleReq.MemberList[0])
	}

	events := FlattenEvents(schedules)
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	ev := events[0]
	if ev.Summary != "[출장]시스템 점검-김철수" || ev.MemberID != "1001" {
		t.Errorf("event = %+v", ev)
	}
	if ev.StartDate != "2026-08-25 00:00" {
		t.Errorf("startDate = %q", ev.StartDate)
	}
}

func TestFetchErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, nil)
	_, err := f.FetchMembers(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %T (%v), want *FetchError", err, err)
	}
	if fe.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", fe.Status)
	}
}
