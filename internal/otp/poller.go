package otp

import (
	"log"
	"time"
)

// ResolveFunc: 한 번의 메일함 확인. Resolver.Resolve를 그대로 넘긴다.
type ResolveFunc func() (Message, error)

// Poller: 새 인증 메일이 도착할 때까지 Resolver를 반복 호출한다.
//
// 메일함에는 이전 로그인 시도의 코드가 남아 있을 수 있다. 메일 순서를
// 믿는 대신 호출자가 기록한 "요청 시각" 워터마크와 수신 시각을 비교해
// 오래된 코드의 재사용을 막는다.
type Poller struct {
	Resolve      ResolveFunc
	InitialDelay time.Duration // 메일 배달 지연 대비 초기 대기
	Delay        time.Duration // 시도 간격
	Retries      int

	sleep func(time.Duration)
}

func NewPoller(resolve ResolveFunc, initialDelay, delay time.Duration, retries int) *Poller {
	return &Poller{
		Resolve:      resolve,
		InitialDelay: initialDelay,
		Delay:        delay,
		Retries:      retries,
		sleep:        time.Sleep,
	}
}

// Await: notBefore 이후에 수신된 첫 코드를 반환한다 (먼저 통과한 코드 우선 —
// 더 새 메일을 기다리지 않는다). 한도 소진 시 *AuthTimeoutError.
func (p *Poller) Await(notBefore time.Time) (string, error) {
	log.Printf("[auth] 새 인증 메일 대기 시작 (초기 대기 %s, 재시도 %d회, 간격 %s)",
		p.InitialDelay, p.Retries, p.Delay)
	p.sleep(p.InitialDelay)

	var last error
	for attempt := 0; attempt < p.Retries; attempt++ {
		msg, err := p.Resolve()
		if err != nil {
			last = err
			log.Printf("[auth] 메일 확인 실패(%d/%d): %v", attempt+1, p.Retries, err)
		} else {
			received := msg.ReceivedAt.UTC()
			if !received.Before(notBefore) {
				log.Printf("[auth] 새 메일 감지 (%s)", received.Format(time.RFC3339))
				return msg.Code, nil
			}
			log.Printf("[auth] 이전 코드 무시 (%s < %s) - 재시도 %d/%d",
				received.Format(time.RFC3339), notBefore.UTC().Format(time.RFC3339),
				attempt+1, p.Retries)
		}
		if attempt < p.Retries-1 {
			p.sleep(p.Delay)
		}
	}
	return "", &AuthTimeoutError{Retries: p.Retries, Err: last}
}
