package application

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pension720/domain/entities"
)

// Report formats
const (
	FormatPlain    = "plain"
	FormatMarkdown = "markdown"
)

// ErrUnknownFormat is returned for a report format other than plain or markdown
var ErrUnknownFormat = errors.New("unknown report format")

// Disclaimer is appended to every report
const Disclaimer = "추천 번호는 과거 당첨 통계를 결정적 규칙으로 정리한 참고 자료이며 당첨을 보장하지 않습니다. " +
	"Recommendations are a deterministic summary of past results and do not improve the odds of winning."

// topDigitsShown is how many ranked digits a report lists per position
const topDigitsShown = 5

// ValidFormat returns true if RenderReport understands the format
func ValidFormat(format string) bool {
	return format == FormatPlain || format == FormatMarkdown
}

// RenderReport writes a human readable summary of a run
func RenderReport(w io.Writer, format string, result *RunResult) error {
	var b strings.Builder
	switch format {
	case FormatPlain:
		renderPlain(&b, result)
	case FormatMarkdown:
		renderMarkdown(&b, result)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderPlain(b *strings.Builder, r *RunResult) {
	b.WriteString("연금복권720+ 통계 리포트\n")
	b.WriteString(strings.Repeat("=", 28) + "\n")

	t := r.Table
	if t.IsEmpty() {
		b.WriteString("저장된 회차가 없습니다.\n")
	} else {
		fmt.Fprintf(b, "회차 범위: %d-%d (%d회, 보너스 %d회)\n", t.MinRound, t.MaxRound, t.TotalRounds, t.BonusRounds)
		fmt.Fprintf(b, "집계 시각: %s\n", t.GeneratedAt.Format("2006-01-02 15:04 MST"))
	}
	if latest := r.Latest(); latest != nil {
		fmt.Fprintf(b, "최근 회차: %s\n", describeRecord(latest))
	}

	if !t.IsEmpty() {
		b.WriteString("\n조 순위: " + joinInts(t.Groups.Ranking, " ") + "\n")
		for p := 0; p < entities.DigitCount; p++ {
			fmt.Fprintf(b, "%d번째 자리: %s\n", p+1, joinInts(headInts(t.Positions[p].Ranking, topDigitsShown), " "))
		}
		if len(t.TopSuffixes) > 0 {
			b.WriteString("자주 나온 끝자리: " + joinSuffixes(t.TopSuffixes, 5) + "\n")
		}
	}

	if len(r.Tickets) > 0 {
		fmt.Fprintf(b, "\n추천 번호 (cycle %d)\n", r.Cycle)
		for i, tk := range r.Tickets {
			fmt.Fprintf(b, "%2d. %d조 %s  (다른 조: %s)\n", i+1, tk.Group, tk.DerivedNumber, joinInts(tk.AlternateGroups, ","))
		}
	}

	b.WriteString("\n" + Disclaimer + "\n")
}

func renderMarkdown(b *strings.Builder, r *RunResult) {
	b.WriteString("# 연금복권720+ 통계 리포트\n\n")

	t := r.Table
	if t.IsEmpty() {
		b.WriteString("저장된 회차가 없습니다.\n\n")
	} else {
		fmt.Fprintf(b, "- 회차 범위: **%d-%d** (%d회, 보너스 %d회)\n", t.MinRound, t.MaxRound, t.TotalRounds, t.BonusRounds)
		fmt.Fprintf(b, "- 집계 시각: %s\n", t.GeneratedAt.Format("2006-01-02 15:04 MST"))
	}
	if latest := r.Latest(); latest != nil {
		fmt.Fprintf(b, "- 최근 회차: %s\n", describeRecord(latest))
	}
	b.WriteString("\n")

	if !t.IsEmpty() {
		b.WriteString("## 순위\n\n")
		b.WriteString("| 구분 | 순위 |\n|---|---|\n")
		fmt.Fprintf(b, "| 조 | %s |\n", joinInts(t.Groups.Ranking, " "))
		for p := 0; p < entities.DigitCount; p++ {
			fmt.Fprintf(b, "| %d번째 자리 | %s |\n", p+1, joinInts(headInts(t.Positions[p].Ranking, topDigitsShown), " "))
		}
		b.WriteString("\n")

		if len(t.TopSuffixes) > 0 {
			b.WriteString("## 자주 나온 끝자리\n\n| 끝자리 | 횟수 |\n|---|---|\n")
			for _, s := range t.TopSuffixes {
				fmt.Fprintf(b, "| `%s` | %d |\n", s.Suffix, s.Count)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Tickets) > 0 {
		fmt.Fprintf(b, "## 추천 번호 (cycle %d)\n\n", r.Cycle)
		b.WriteString("| # | 조 | 번호 | 다른 조 |\n|---|---|---|---|\n")
		for i, tk := range r.Tickets {
			fmt.Fprintf(b, "| %d | %d조 | `%s` | %s |\n", i+1, tk.Group, tk.DerivedNumber, joinInts(tk.AlternateGroups, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("> " + Disclaimer + "\n")
}

func describeRecord(r *entities.DrawRecord) string {
	s := fmt.Sprintf("%d회 %s 1등 %d조 %s", r.Round, r.FormatDate(), r.Primary.Group, r.Primary.Digits.String())
	if r.Bonus != nil {
		s += " / 보너스 " + r.Bonus.Digits.String()
	}
	return s
}

func headInts(values []int, n int) []int {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

func joinSuffixes(values []entities.SuffixCount, n int) string {
	if len(values) > n {
		values = values[:n]
	}
	parts := make([]string, len(values))
	for i, s := range values {
		parts[i] = fmt.Sprintf("%s(%d)", s.Suffix, s.Count)
	}
	return strings.Join(parts, " ")
}
