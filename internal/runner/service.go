package runner

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"iris-attendance-sync/internal/backend"
	"iris-attendance-sync/internal/calendar"
	"iris-attendance-sync/internal/otp"
	"iris-attendance-sync/internal/platform/config"
	"iris-attendance-sync/internal/portal"
	"iris-attendance-sync/internal/reconcile"
	"iris-attendance-sync/internal/summary"
)

// ErrRunActive: 이미 실행 중인 동기화가 있음. 겹치는 구간에 대한 동시
// 실행은 잠금 없이 안전하지 않으므로 슬롯은 하나뿐이다.
var ErrRunActive = errors.New("동기화가 이미 실행 중입니다")

// Service: 파이프라인 전체(포털 인증 → 캘린더 조회 → 파싱 → 정합화)를
// 한 번의 실행 단위로 묶는다.
type Service struct {
	cfg    *config.Config
	driver portal.Driver // nil이면 설정의 세션 쿠키를 사용

	mu      sync.Mutex
	running bool
	last    *Report
}

func NewService(cfg *config.Config, driver portal.Driver) *Service {
	return &Service{cfg: cfg, driver: driver}
}

// RunOnce: run 모드용 동기 실행.
func (s *Service) RunOnce(ctx context.Context) (*Report, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()
	return s.execute(ctx, ulid.Make().String())
}

// Start: serve 모드용 비동기 트리거. 실행 중이면 ErrRunActive.
func (s *Service) Start() (string, error) {
	if err := s.acquire(); err != nil {
		return "", err
	}
	runID := ulid.Make().String()
	go func() {
		defer s.release()
		// 요청 수명과 분리 — 트리거 응답 후에도 실행은 계속된다
		if _, err := s.execute(context.Background(), runID); err != nil {
			log.Printf("[run] %s 실패: %v", runID, err)
		}
	}()
	return runID, nil
}

// Latest: 마지막 실행 보고 (없으면 nil).
func (s *Service) Latest() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Service) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunActive
	}
	s.running = true
	return nil
}

func (s *Service) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Service) execute(ctx context.Context, runID string) (*Report, error) {
	report := &Report{RunID: runID, StartedAt: time.Now().UTC()}
	log.Printf("[run] %s 동기화 시작", runID)

	err := s.doRun(ctx, report)
	if err != nil {
		report.Error = err.Error()
		log.Printf("[run] %s 중단: %v", runID, err)
	} else {
		log.Printf("[run] %s 완료: %s", runID, report.Stats)
	}
	report.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report, err
}

func (s *Service) doRun(ctx context.Context, report *Report) error {
	// 1. 캘린더 세션 확보 (드라이버 경유 2차 인증 또는 설정 쿠키)
	cookies, err := s.authenticate(ctx)
	if err != nil {
		return err
	}

	// 2. 조회 구간 및 일정 수집
	w := calendar.CurrentWindow(time.Now())
	report.StartDate = w.StartDate()
	report.EndDate = w.EndDate()

	fetcher := calendar.NewFetcher(s.cfg.Calendar.BaseURL, cookies)
	schedules, err := fetcher.FetchTeamEvents(ctx, w)
	if err != nil {
		return err
	}
	events := calendar.FlattenEvents(schedules)
	report.Events = len(events)
	log.Printf("[calendar] %s ~ %s 일정 %d건 조회 완료", w.StartDate(), w.EndDate(), len(events))

	// 3. 제목 파싱 → 생성 후보
	parser := summary.NewParser(s.cfg.Sync.ExcludeTags...)
	candidates := reconcile.BuildCandidates(events, parser)
	report.Candidates = len(candidates)
	log.Printf("[sync] 휴가/출장 등 후보 %d건", len(candidates))

	// 4. 백엔드 로그인 후 구간 정합화
	api := backend.NewClient(s.cfg.Backend.BaseURL)
	if err := api.Login(ctx, s.cfg.Backend.Email, s.cfg.Backend.Password); err != nil {
		return err
	}
	if exp := api.SessionExpiresAt(); !exp.IsZero() && exp.Before(time.Now().Add(time.Minute)) {
		// 만료 직전 세션으로 생성 단계에 들어가면 중간에 401이 난다
		log.Printf("[run] 백엔드 세션 만료 임박 (%s)", exp.Format(time.RFC3339))
	}
	stats, err := reconcile.NewEngine(api).Run(ctx, candidates, w.StartDate(), w.EndDate())
	report.Stats = stats
	return err
}

// authenticate: 드라이버가 있으면 2차 인증 메일 폴링을 거쳐 로그인을
// 완성하고, 없으면 설정에 주입된 세션 쿠키를 그대로 쓴다.
func (s *Service) authenticate(ctx context.Context) ([]*http.Cookie, error) {
	if s.driver == nil {
		if s.cfg.Calendar.Cookie == "" {
			return nil, errors.New("포털 드라이버도 calendar.cookie 설정도 없습니다")
		}
		log.Printf("[run] 설정 쿠키 사용 (2차 인증 생략)")
		return portal.ParseCookieHeader(s.cfg.Calendar.Cookie), nil
	}

	// 인증 메일 요청 직후 시각이 워터마크가 된다 — 메일함에 남아 있는
	// 이전 세션의 코드를 걸러내는 기준점
	notBefore, err := s.driver.RequestOTP(ctx)
	if err != nil {
		return nil, err
	}

	auth := s.cfg.Auth
	resolver := otp.NewResolver(auth.IMAPAddr, auth.Email, auth.AppPassword, auth.FromEmail)
	poller := otp.NewPoller(resolver.Resolve,
		time.Duration(auth.InitialDelay)*time.Second,
		time.Duration(auth.PollDelay)*time.Second,
		auth.PollRetries)

	code, err := poller.Await(notBefore)
	if err != nil {
		return nil, err
	}
	if err := s.driver.SubmitOTP(ctx, code); err != nil {
		return nil, err
	}
	log.Printf("[run] 2차 인증 완료, 캘린더 세션 확보 중")
	return s.driver.Cookies(ctx)
}
