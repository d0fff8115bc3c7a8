package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// FetchError: 캘린더 API가 2xx가 아닌 응답을 돌려줌.
// 읽기 전용 호출이라 이 계층에서는 재시도하지 않는다.
type FetchError struct {
	Status int
	Path   string
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("캘린더 조회 실패: %s → HTTP %d: %s", e.Path, e.Status, e.Body)
}

// Fetcher: 브라우저 협력자에게서 받은 인증 쿠키로 캘린더 API를 읽는다.
// 조회 2회(팀원 목록, 일정) 외의 부수 효과는 없다.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

func NewFetcher(baseURL string, cookies []*http.Cookie) *Fetcher {
	jar, _ := cookiejar.New(nil)
	base := strings.TrimRight(baseURL, "/")
	if u, err := url.Parse(base); err == nil {
		jar.SetCookies(u, cookies)
	}
	return &Fetcher{
		baseURL: base,
		client:  &http.Client{Jar: jar, Timeout: requestTimeout},
	}
}

// FetchMembers: 팀원 목록 동적 조회.
func (f *Fetcher) FetchMembers(ctx context.Context) ([]Member, error) {
	payload := map[string]any{
		"memberList":            []any{},
		"includeSubMember":      false,
		"includeDefaultGroup":   true,
		"includeDomainCalendar": false,
	}
	var res struct {
		UserInfoList []Member `json:"userInfoList"`
	}
	if err := f.post(ctx, "/api/individualUserList", nil, payload, &res); err != nil {
		return nil, err
	}
	log.Printf("[calendar] 팀원 %d명 조회 완료", len(res.UserInfoList))
	return res.UserInfoList, nil
}

// FetchSchedules: 구간 내 팀원 일정 조회.
func (f *Fetcher) FetchSchedules(ctx context.Context, members []Member, w Window) ([]MemberSchedule, error) {
	query := url.Values{}
	query.Set("viewFrom", w.ViewFrom())
	query.Set("viewUntil", w.ViewUntil())
	query.Set("rl", "24101")

	payload := map[string]any{"memberList": members}
	var res []MemberSchedule
	if err := f.post(ctx, "/api/memberScheduleViewList", query, payload, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// FetchTeamEvents: 팀원 목록 → 일정 조회를 이어서 수행한다.
func (f *Fetcher) FetchTeamEvents(ctx context.Context, w Window) ([]MemberSchedule, error) {
	members, err := f.FetchMembers(ctx)
	if err != nil {
		return nil, err
	}
	return f.FetchSchedules(ctx, members, w)
}

func (f *Fetcher) post(ctx context.Context, path string, query url.Values, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	reqURL := f.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &FetchError{Status: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(snippet))}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// 웹 캘린더가 보내는 것과 같은 헤더 — 없으면 API가 요청을 거부한다.
func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", f.baseURL)
	req.Header.Set("Referer", f.baseURL+"/web/calendar/main")
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36")
}
