package results

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bnema/reaction-tally/internal/application"
	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const defaultBarWidth = 20

var ErrPageOutOfRange = errors.New("results page out of range")

type RenderOptions struct {
	// Page is 1-based; zero means the first page.
	Page         int
	ShowVoterLog bool
	BarWidth     int
}

func (o RenderOptions) validate(report application.TallyReport) error {
	if o.Page < 0 {
		return fmt.Errorf("%w: %d", ErrPageOutOfRange, o.Page)
	}
	if o.Page > 1 && o.Page > len(report.Results) {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, o.Page, len(report.Results))
	}
	return nil
}

func (o RenderOptions) pageIndex() int {
	if o.Page <= 1 {
		return 0
	}
	return o.Page - 1
}

func (o RenderOptions) barWidth() int {
	if o.BarWidth <= 0 {
		return defaultBarWidth
	}
	return o.BarWidth
}

func renderView(report application.TallyReport, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Top %d Winners", report.Rules.NumberOfWinners)),
		s.header.Render(fmt.Sprintf("channel: %s  run: %s", report.ChannelID, report.RunID)),
	}

	maxCount := topCount(report)

	if len(report.Winners) == 0 {
		lines = append(lines, s.empty.Render("No votes were cast."))
	} else {
		winners := make([]string, 0, len(report.Winners))
		for _, standing := range report.Winners {
			winners = append(winners, winnerLine(standing, maxCount, opts.barWidth(), s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, winners...)))
	}

	if len(report.Results) > 0 {
		lines = append(lines, s.section.Render(resultsPage(report.Results[opts.pageIndex()], maxCount, opts.barWidth(), s)))
	}

	if opts.ShowVoterLog && len(report.VoterLog) > 0 {
		lines = append(lines, s.section.Render(voterLog(report.VoterLog, s)))
	}

	if report.Partial() {
		lines = append(lines, s.section.Render(s.warning.Render(partialNotice(report.Stats))))
	}

	lines = append(lines, s.section.Render(s.footer.Render(report.Stats.Footer())))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func winnerLine(standing domain.Standing, maxCount, width int, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.winner.Render(fmt.Sprintf("#%d %s", standing.Rank, standing.Label)),
		" ",
		renderBar(standing.Count, maxCount, width, s),
		" ",
		s.count.Render(votesLabel(standing.Count)),
	)
}

func resultsPage(page domain.Page[domain.Standing], maxCount, width int, s styles) string {
	labelWidth := 0
	for _, standing := range page.Items {
		labelWidth = max(labelWidth, lipgloss.Width(string(standing.Label)))
	}

	lines := []string{s.header.Render(fmt.Sprintf("Results page %d of %d", page.Number, page.Total))}
	for _, standing := range page.Items {
		label := string(standing.Label) + strings.Repeat(" ", labelWidth-lipgloss.Width(string(standing.Label)))
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.count.Render(fmt.Sprintf("%3d. ", standing.Rank)),
			s.label.Render(label),
			" ",
			renderBar(standing.Count, maxCount, width, s),
			" ",
			s.count.Render(fmt.Sprintf("%d", standing.Count)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func voterLog(pages []domain.Page[domain.VoterLogEntry], s styles) string {
	lines := []string{s.header.Render("Voter log")}
	for _, page := range pages {
		for _, entry := range page.Items {
			name := entry.Name
			if name == "" {
				name = string(entry.Voter)
			}
			lines = append(lines, s.label.Render(name+": ")+s.count.Render(entry.Line()))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func partialNotice(stats application.TallyStats) string {
	return fmt.Sprintf("[partial] %d reaction fetches failed, %d options skipped", stats.FailedFetches, stats.SkippedOptions)
}

func topCount(report application.TallyReport) int {
	top := 0
	for _, standing := range report.Winners {
		top = max(top, standing.Count)
	}
	for _, page := range report.Results {
		for _, standing := range page.Items {
			top = max(top, standing.Count)
		}
	}
	return top
}

func votesLabel(count int) string {
	if count == 1 {
		return "1 vote"
	}
	return fmt.Sprintf("%d votes", count)
}

func renderBar(count, maxCount, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := 0
	if maxCount > 0 {
		filled = int(math.Round(float64(width) * float64(count) / float64(maxCount)))
	}
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}
