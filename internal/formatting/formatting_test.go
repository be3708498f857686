package formatting

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 23: "23rd", 31: "31st"}
	for n, want := range cases {
		assert.Equal(t, want, Ordinal(n))
	}
}

func TestDayTitle(t *testing.T) {
	date := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Monday 12th January (EET)", DayTitle(date, "EET"))
	assert.Equal(t, "Monday 12th January", DayTitle(date, ""))
}

func TestRelative(t *testing.T) {
	now := time.Date(2026, time.January, 12, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(30 * time.Second), "in less than a minute"},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(time.Minute), "in 1 minute"},
		{now.Add(45 * time.Minute), "in 45 minutes"},
		{now.Add(3 * time.Hour), "in 3 hours"},
		{now.Add(-1 * time.Hour), "1 hour ago"},
		{now.Add(72 * time.Hour), "in 3 days"},
		{now.Add(-50 * time.Hour), "2 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Relative(now, tt.at))
	}
}

func TestFormatDaySection(t *testing.T) {
	empty := model.DaySection{Title: "Saturday 17th January (EET)", Empty: true}
	assert.Contains(t, FormatDaySection(empty), EmptyDayNotice)

	day := model.DaySection{
		Title: "Monday 12th January (EET)",
		Slots: []model.SlotLine{
			{Label: "10AM EET", Glyph: model.GlyphUnclaimed, LocalTime: "10:00", Relative: "in 2 hours"},
			{Label: "1PM EET", Glyph: model.GlyphClaimed, Relative: "in 5 hours", Claims: []model.ClaimLine{
				{Role: model.RoleHost, ClaimantID: 7, ClaimantName: "Ann <3"},
				{Role: model.RoleAssistant, ClaimantID: 9},
			}},
		},
	}

	text := FormatDaySection(day)
	assert.Contains(t, text, "🔴 <b>10AM EET</b>")
	assert.Contains(t, text, "Starting 10:00 (in 2 hours)")
	assert.Contains(t, text, "Starting in 5 hours")
	assert.Contains(t, text, NoClaimsLine)
	assert.Contains(t, text, `<a href="tg://user?id=7">Ann &lt;3</a> (Host)`)
	assert.Contains(t, text, `<a href="tg://user?id=9">9</a> (Assistant)`)
	assert.Less(t, strings.Index(text, "(Host)"), strings.Index(text, "(Assistant)"))
}

func TestFormatMyClaims(t *testing.T) {
	assert.Equal(t, "You have no claimed sessions this week.", FormatMyClaims(nil, time.UTC))

	claim := model.NewClaim(model.SlotKey{
		TimeLabel: "1PM EET",
		StartsAt:  time.Date(2026, time.January, 13, 11, 0, 0, 0, time.UTC),
	}, model.RoleTrainer, 42)

	text := FormatMyClaims([]*model.Session{claim}, time.UTC)
	assert.Contains(t, text, "Tuesday 13th · 1PM EET (Trainer)")
}

// fullWeek окно из days дней, в каждом слоте заняты все роли
func fullWeek(days, slotsPerDay int, name string) *model.WeekView {
	monday := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	view := &model.WeekView{GeneratedAt: monday}

	var claimant int64 = 100000000
	for d := 0; d < days; d++ {
		date := monday.AddDate(0, 0, d)
		section := model.DaySection{Date: date, Title: DayTitle(date, "EET")}
		for s := 0; s < slotsPerDay; s++ {
			startsAt := date.Add(time.Duration(s) * time.Hour)
			line := model.SlotLine{
				Label:     fmt.Sprintf("%dH EET", s),
				StartsAt:  startsAt,
				LocalTime: FormatTime(startsAt),
				Glyph:     model.GlyphClaimed,
				Relative:  "in 3 days",
			}
			for _, role := range model.Roles() {
				claimant++
				line.Claims = append(line.Claims, model.ClaimLine{Role: role, ClaimantID: claimant, ClaimantName: name})
			}
			section.Slots = append(section.Slots, line)
		}
		view.Days = append(view.Days, section)
	}
	return view
}

func TestVisibleLength(t *testing.T) {
	assert.Equal(t, 5, VisibleLength("<b>a&lt;b</b> c"))
	assert.Equal(t, 2, VisibleLength("🟢"))
	assert.Equal(t, 3, VisibleLength(`<a href="tg://user?id=1">Ann</a>`))
}

func TestFormatWeekViewSmallWeekKeepsFullLayout(t *testing.T) {
	view := fullWeek(2, 5, "Ann")

	text := FormatWeekView(view)
	assert.Equal(t, strings.Join([]string{FormatDaySection(view.Days[0]), FormatDaySection(view.Days[1])}, "\n\n"), text)
}

func TestFormatWeekViewFullyBookedWeekFits(t *testing.T) {
	view := fullWeek(7, 5, "Bartholomew Maximilian Featherstonehaugh")
	require.Greater(t, VisibleLength(formatDays(view.Days, styleFull)), MessageLimit)

	text := FormatWeekView(view)

	assert.LessOrEqual(t, VisibleLength(text), MessageLimit)
	for _, day := range view.Days {
		assert.Contains(t, text, day.Title)
	}
	assert.Contains(t, text, "Bartholomew…")
	assert.NotContains(t, text, "Featherstonehaugh")
}

func TestFormatWeekViewDropsTrailingDays(t *testing.T) {
	view := fullWeek(7, 24, "Ann")
	require.Greater(t, VisibleLength(formatDays(view.Days, styleCounts)), MessageLimit)

	text := FormatWeekView(view)

	assert.LessOrEqual(t, VisibleLength(text), MessageLimit)
	assert.Contains(t, text, view.Days[0].Title)
	assert.NotContains(t, text, view.Days[6].Title)
	assert.Contains(t, text, "more not shown")
	assert.Contains(t, text, "3/3 claimed")
}
