package summary

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// 캘린더 일정 제목에서 추출한 근태 항목.
// "[출장]스틸샵 협의-이경봉" → Tag="출장", Content="스틸샵 협의", Author="이경봉"
type Entry struct {
	Tag     string  // 첫 대괄호 안의 분류 태그
	Content *string // ']' 와 마지막 '-' 사이. 비어 있으면 nil (백엔드는 nil을 "내용 없음"으로 취급)
	Author  string  // 마지막 '-' 뒤의 작성자명
}

type Parser struct {
	exclude map[string]struct{}
}

// NewParser: excludeTags에 해당하는 태그는 대괄호 형식이어도 동기화 대상에서 제외한다.
// (예: "교육" — 근태가 아닌 사내 일정)
func NewParser(excludeTags ...string) *Parser {
	ex := make(map[string]struct{}, len(excludeTags))
	for _, t := range excludeTags {
		if t == "" {
			continue
		}
		ex[norm.NFC.String(t)] = struct{}{}
	}
	return &Parser{exclude: ex}
}

// Parse: 일정 제목을 Entry로 분해한다. 두 번째 반환값이 false면 동기화 대상이 아니다.
//
// 규칙:
//   - '['로 시작하지 않으면 대상 아님 (앞에 공백이 있어도 대상 아님)
//   - 제외 태그면 대상 아님
//   - 구분자가 빠져 있어도 실패하지 않고 빈 필드로 수렴한다 (총함수)
//
// macOS 캘린더가 한글을 NFD로 보내는 경우가 있어 먼저 NFC로 정규화한다.
func (p *Parser) Parse(raw string) (Entry, bool) {
	s := norm.NFC.String(raw)
	if !strings.HasPrefix(s, "[") {
		return Entry{}, false
	}

	var tag, rest string
	if end := strings.Index(s, "]"); end >= 0 {
		tag = s[1:end]
		rest = s[end+1:]
	} else {
		// 닫는 대괄호 없음 → 전체를 태그로 취급
		tag = s[1:]
	}

	if _, excluded := p.exclude[tag]; excluded {
		return Entry{}, false
	}

	entry := Entry{Tag: tag}
	if dash := strings.LastIndex(rest, "-"); dash >= 0 {
		entry.Author = strings.TrimSpace(rest[dash+1:])
		if content := strings.TrimSpace(rest[:dash]); content != "" {
			entry.Content = &content
		}
	} else if content := strings.TrimSpace(rest); content != "" {
		entry.Content = &content
	}
	return entry, true
}
