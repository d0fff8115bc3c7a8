package otp

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

const defaultConnectRetries = 3

// Message: 메일함에서 확인한 인증 코드와 서버 기준 수신 시각.
// ReceivedAt은 헤더(Date)가 아니라 IMAP INTERNALDATE를 쓴다 —
// 발신측 시계가 틀어져 있어도 워터마크 비교가 깨지지 않도록.
type Message struct {
	Code       string
	ReceivedAt time.Time // UTC
}

// Resolver: 발신자 필터에 맞는 가장 최근 검색 결과에서 인증 코드를 추출한다.
type Resolver struct {
	Addr        string // 예: imap.gmail.com:993
	Email       string
	AppPassword string
	From        string // 발신자 필터
	MaxRetries  int    // 연결 재시도 횟수 (기본 3)

	sleep func(time.Duration)
}

func NewResolver(addr, email, appPassword, from string) *Resolver {
	return &Resolver{
		Addr:        addr,
		Email:       email,
		AppPassword: appPassword,
		From:        from,
		MaxRetries:  defaultConnectRetries,
		sleep:       time.Sleep,
	}
}

// Resolve: 메일함에 접속해 (코드, 수신 시각)을 반환한다.
// 성공/실패와 무관하게 세션은 항상 정리한다 (서버 세션 슬롯 누수 방지).
func (r *Resolver) Resolve() (Message, error) {
	c, err := r.connect()
	if err != nil {
		return Message{}, err
	}
	defer func() {
		if err := c.Logout().Wait(); err != nil {
			log.Printf("[auth] 메일 세션 종료 실패: %v", err)
		}
		c.Close()
	}()

	criteria := &imap.SearchCriteria{
		Header: []imap.SearchCriteriaHeaderField{{Key: "From", Value: r.From}},
	}
	data, err := c.Search(criteria, nil).Wait()
	if err != nil {
		return Message{}, newAuthError(ErrCodeConnect, "메일 검색 실패", err)
	}

	nums := data.AllSeqNums()
	if len(nums) == 0 {
		return Message{}, newAuthError(ErrCodeNoMail, "인증 메일을 찾을 수 없습니다", nil)
	}
	// 검색 결과 순서상 마지막 항목 (시간순 최신과 다를 수 있음)
	latest := nums[len(nums)-1]

	msgs, err := c.Fetch(imap.SeqSetNum(latest), &imap.FetchOptions{
		Envelope:     true,
		InternalDate: true,
	}).Collect()
	if err != nil || len(msgs) == 0 {
		return Message{}, newAuthError(ErrCodeConnect, "메일 조회 실패", err)
	}

	msg := msgs[0]
	if msg.Envelope == nil {
		return Message{}, newAuthError(ErrCodeConnect, "메일 응답에 Envelope 없음", nil)
	}
	code, err := extractCode(msg.Envelope.Subject)
	if err != nil {
		return Message{}, err
	}

	received := msg.InternalDate.UTC()
	if msg.InternalDate.IsZero() {
		received = time.Now().UTC()
	}
	return Message{Code: code, ReceivedAt: received}, nil
}

// connect: 연결 단계만 지수 백오프로 재시도한다 (1초, 2초, 4초).
// "메일 없음"은 연결 오류가 아니므로 여기서 다루지 않는다.
func (r *Resolver) connect() (*imapclient.Client, error) {
	retries := r.MaxRetries
	if retries <= 0 {
		retries = defaultConnectRetries
	}

	var last error
	for attempt := 0; attempt < retries; attempt++ {
		c, err := r.dial()
		if err == nil {
			return c, nil
		}
		last = err
		if attempt < retries-1 {
			r.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}
	return nil, newAuthError(ErrCodeConnect,
		fmt.Sprintf("메일 서버 연결 실패 (%d회 시도)", retries), last)
}

func (r *Resolver) dial() (*imapclient.Client, error) {
	c, err := imapclient.DialTLS(r.Addr, nil)
	if err != nil {
		return nil, err
	}
	if err := c.Login(r.Email, r.AppPassword).Wait(); err != nil {
		c.Close()
		return nil, err
	}
	if _, err := c.Select("INBOX", nil).Wait(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// extractCode: "...[123456]..." 형태의 제목에서 숫자 코드를 잘라낸다.
func extractCode(subject string) (string, error) {
	open := strings.Index(subject, "[")
	if open < 0 {
		return "", newAuthError(ErrCodeParse, fmt.Sprintf("제목에서 인증 코드를 찾을 수 없습니다: %q", subject), nil)
	}
	rest := subject[open+1:]
	end := strings.Index(rest, "]")
	if end < 0 {
		return "", newAuthError(ErrCodeParse, fmt.Sprintf("제목에서 인증 코드를 찾을 수 없습니다: %q", subject), nil)
	}
	code := rest[:end]
	if code == "" || !isDigits(code) {
		return "", newAuthError(ErrCodeParse, fmt.Sprintf("인증 코드 형식이 아닙니다: %q", code), nil)
	}
	return code, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
