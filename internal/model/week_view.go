package model

import "time"

const (
	GlyphClaimed   = "🟢"
	GlyphUnclaimed = "🔴"
)

// WeekView структурированное представление недели, которое рисует внешний рендерер
type WeekView struct {
	Days        []DaySection `json:"days"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// DaySection секция одного дня окна
type DaySection struct {
	Date  time.Time  `json:"date"`
	Title string     `json:"title"`
	Empty bool       `json:"empty"`
	Slots []SlotLine `json:"slots"`
}

// SlotLine строка слота внутри дня
type SlotLine struct {
	Label     string      `json:"label"`
	StartsAt  time.Time   `json:"starts_at"`
	LocalTime string      `json:"local_time"` // "13:00" в опорном поясе
	Glyph     string      `json:"glyph"`
	Relative  string      `json:"relative"`
	Claims    []ClaimLine `json:"claims"`
}

// ClaimLine занятая роль в слоте
type ClaimLine struct {
	Role         Role   `json:"role"`
	ClaimantID   int64  `json:"claimant_id"`
	ClaimantName string `json:"claimant_name"`
}

// ClaimCount возвращает количество занятых ролей во всём окне
func (v *WeekView) ClaimCount() int {
	total := 0
	for _, day := range v.Days {
		for _, slot := range day.Slots {
			total += len(slot.Claims)
		}
	}
	return total
}
