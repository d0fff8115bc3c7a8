package summary

import "golang.org/x/text/unicode/norm"

// 백엔드 근태 유형 코드. 이 파이프라인이 인식하는 두 계열만 다룬다.
const (
	CodeAnnual       = "ANNUAL"
	CodeBusinessTrip = "BUSINESS_TRIP"
)

// 태그 → 근태 유형 코드. NFC 정규화 후 정확히 일치해야 한다 (부분 일치 없음)
var typeCodeByTag = map[string]string{
	"휴가":  CodeAnnual,
	"반차":  CodeAnnual,
	"반반차": CodeAnnual,
	"출장":  CodeBusinessTrip,
	"외근":  CodeBusinessTrip,
}

// TypeCode: 태그를 근태 유형 코드로 변환한다. 미등록 태그는 ok=false.
// 미등록은 오류가 아니라 "매핑 불가" — 상위에서 skipped로 집계한다.
func TypeCode(tag string) (string, bool) {
	code, ok := typeCodeByTag[norm.NFC.String(tag)]
	return code, ok
}
