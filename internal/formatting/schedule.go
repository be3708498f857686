package formatting

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/Freeeeeet/sessions_bot/internal/model"
)

const (
	NoClaimsLine     = "No claims yet"
	EmptyDayNotice   = "No sessions scheduled for this day."
	HiddenDaysFormat = "<i>%s more not shown. Use /board for the whole week.</i>"

	// MessageLimit предел длины сообщения Telegram после разбора разметки
	MessageLimit = 4096

	compactNameLimit = 12
)

type slotStyle int

const (
	styleFull slotStyle = iota
	styleCompact
	styleCounts
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Mention форматирует упоминание участника в HTML-разметке Telegram
func Mention(claimantID int64, name string) string {
	if name == "" {
		name = fmt.Sprintf("%d", claimantID)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, claimantID, html.EscapeString(name))
}

// FormatWeekView форматирует всё окно недели в один HTML-текст сообщения.
// Если текст не влезает в MessageLimit, слоты пишутся короче, а в крайнем
// случае последние дни отрезаются.
func FormatWeekView(view *model.WeekView) string {
	for _, style := range []slotStyle{styleFull, styleCompact, styleCounts} {
		text := formatDays(view.Days, style)
		if VisibleLength(text) <= MessageLimit {
			return text
		}
	}

	days := view.Days
	for len(days) > 1 {
		days = days[:len(days)-1]
		hidden := Pluralize(len(view.Days)-len(days), "day", "days")
		text := formatDays(days, styleCounts) + "\n\n" + fmt.Sprintf(HiddenDaysFormat, hidden)
		if VisibleLength(text) <= MessageLimit {
			return text
		}
	}
	return formatDays(days, styleCounts)
}

// VisibleLength длина текста так, как её считает Telegram: без тегов, после
// разбора сущностей, в единицах UTF-16
func VisibleLength(text string) int {
	plain := html.UnescapeString(tagPattern.ReplaceAllString(text, ""))
	n := 0
	for _, r := range plain {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

func formatDays(days []model.DaySection, style slotStyle) string {
	sections := make([]string, 0, len(days))
	for _, day := range days {
		sections = append(sections, formatDay(day, style))
	}
	return strings.Join(sections, "\n\n")
}

// FormatDaySection форматирует секцию одного дня
func FormatDaySection(day model.DaySection) string {
	return formatDay(day, styleFull)
}

func formatDay(day model.DaySection, style slotStyle) string {
	var sb strings.Builder
	sb.WriteString("📅 <b>" + html.EscapeString(day.Title) + "</b>\n")

	if day.Empty {
		sb.WriteString("<i>" + EmptyDayNotice + "</i>")
		return sb.String()
	}

	for i, slot := range day.Slots {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch style {
		case styleCompact:
			sb.WriteString(compactSlotLine(slot))
		case styleCounts:
			sb.WriteString(countSlotLine(slot))
		default:
			sb.WriteString(FormatSlotLine(slot))
		}
	}
	return sb.String()
}

// FormatSlotLine форматирует слот: заголовок, время начала и занятые роли
func FormatSlotLine(slot model.SlotLine) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%s</b>\n", slot.Glyph, html.EscapeString(slot.Label))
	sb.WriteString("  • Starting " + startsAt(slot))

	if len(slot.Claims) == 0 {
		sb.WriteString("\n  • " + NoClaimsLine)
		return sb.String()
	}
	for _, claim := range slot.Claims {
		fmt.Fprintf(&sb, "\n  • %s (%s)", Mention(claim.ClaimantID, claim.ClaimantName), claim.Role)
	}
	return sb.String()
}

// compactSlotLine слот в две строки, роли через запятую, имена укорочены
func compactSlotLine(slot model.SlotLine) string {
	line := fmt.Sprintf("%s <b>%s</b> · %s", slot.Glyph, html.EscapeString(slot.Label), startsAt(slot))
	if len(slot.Claims) == 0 {
		return line
	}

	claims := make([]string, 0, len(slot.Claims))
	for _, claim := range slot.Claims {
		name := claim.ClaimantName
		if name == "" {
			name = fmt.Sprintf("%d", claim.ClaimantID)
		}
		claims = append(claims, fmt.Sprintf("%s %s", RoleEmoji(claim.Role), Mention(claim.ClaimantID, truncateName(name))))
	}
	return line + "\n  • " + strings.Join(claims, ", ")
}

// countSlotLine слот одной строкой без имён
func countSlotLine(slot model.SlotLine) string {
	return fmt.Sprintf("%s <b>%s</b> · %s · %d/%d claimed",
		slot.Glyph, html.EscapeString(slot.Label), slotTime(slot), len(slot.Claims), len(model.Roles()))
}

// startsAt "13:00 (in 3 hours)"
func startsAt(slot model.SlotLine) string {
	if slot.LocalTime == "" {
		return html.EscapeString(slot.Relative)
	}
	return fmt.Sprintf("%s (%s)", slot.LocalTime, html.EscapeString(slot.Relative))
}

func slotTime(slot model.SlotLine) string {
	if slot.LocalTime != "" {
		return slot.LocalTime
	}
	return html.EscapeString(slot.Relative)
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= compactNameLimit {
		return name
	}
	return string(runes[:compactNameLimit-1]) + "…"
}

// FormatMyClaims форматирует список ролей участника в окне недели
func FormatMyClaims(claims []*model.Session, loc *time.Location) string {
	if len(claims) == 0 {
		return "You have no claimed sessions this week."
	}

	var sb strings.Builder
	sb.WriteString("🗓 <b>Your sessions</b>\n")
	for _, c := range claims {
		if c.Role == nil {
			continue
		}
		day := c.StartsAt.In(loc)
		fmt.Fprintf(&sb, "\n%s %s %s · %s (%s)",
			RoleEmoji(*c.Role),
			day.Weekday(),
			Ordinal(day.Day()),
			html.EscapeString(c.TimeLabel),
			*c.Role,
		)
	}
	return sb.String()
}
