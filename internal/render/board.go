// Package render рисует окно недели картинкой PNG
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"sync"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = "" // Regular
	FontStyleMedium  FontStyle = "medium"
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 120
	dayPaddingX      = 8
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
	hourPaddingTop   = 1
	hourPaddingBot   = 1
	defaultMinHour   = 8
	defaultMaxHour   = 22
	maxNameLen       = 18
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 22.0
	hourLabelFontSize  = 16.0
	slotTimeFontSize   = 15.0
	claimFontSize      = 12.0
	emptyDayFontSize   = 14.0
	legendItemFontSize = 12.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 60}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	slotUnclaimedColor  = color.RGBA{255, 182, 193, 255} // никто не занял
	slotClaimedColor    = color.RGBA{133, 193, 85, 220}  // есть хотя бы одна роль
	slotStartedColor    = color.RGBA{158, 158, 158, 200}
	slotTextColor       = color.RGBA{20, 24, 28, 230}
	slotShadowColor     = color.RGBA{0, 0, 0, 20}
	emptyDayTextColor   = color.RGBA{120, 125, 130, 220}
	legendItemTextColor = color.RGBA{70, 74, 78, 220}
)

// hourRange содержит диапазон часов для отображения
type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont загружает шрифт указанного стиля или использует basicfont как fallback
func loadFont(dc *gg.Context, size float64, style ...FontStyle) {
	fontStyle := FontStyleDefault
	if len(style) > 0 {
		fontStyle = style[0]
	}

	var fontData []byte
	switch fontStyle {
	case FontStyleMedium:
		fontData = gomedium.TTF
	case FontStyleBold:
		fontData = gobold.TTF
	default:
		fontData = goregular.TTF
	}

	fontsMu.Lock()
	parsed, ok := cachedFonts[fontStyle]
	if !ok {
		var err error
		parsed, err = opentype.Parse(fontData)
		if err == nil {
			cachedFonts[fontStyle] = parsed
		}
	}
	fontsMu.Unlock()

	if parsed == nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// WeekBoard рисует окно недели: колонка на каждый день, блок на каждый слот с занятыми ролями
func WeekBoard(view *model.WeekView, loc *time.Location) ([]byte, error) {
	if view == nil || len(view.Days) == 0 {
		return nil, fmt.Errorf("render week board: empty view")
	}

	now := view.GeneratedAt.In(loc)
	hours := calculateHourRange(view, loc)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / len(view.Days)
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, view, loc)
	drawHourLabels(dc, hours, cellHeight)

	todayIndex := -1
	for i, day := range view.Days {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)
		date := day.Date.In(loc)

		isToday := isSameDay(date, now)
		if isToday {
			todayIndex = i
		}

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, isToday)
		drawDayHeader(dc, date, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)

		if day.Empty {
			loadFont(dc, emptyDayFontSize)
			dc.SetColor(emptyDayTextColor)
			dc.DrawStringWrapped("No sessions scheduled", x+float64(dayWidth)/2, y+float64(dayHeight)/2,
				0.5, 0.5, float64(dayWidth-2*dayPaddingX), 1.3, gg.AlignCenter)
			continue
		}

		for _, slot := range day.Slots {
			drawSlot(dc, slot, now, loc, x, y, dayWidth, hours, cellHeight)
		}
	}

	if todayIndex >= 0 {
		drawCurrentTimeLine(dc, now, hours, cellHeight, todayIndex, dayWidth)
	}
	drawLegend(dc, dayWidth*len(view.Days))

	return encodeImage(dc)
}

// calculateHourRange определяет диапазон часов по слотам окна
func calculateHourRange(view *model.WeekView, loc *time.Location) hourRange {
	minHour := 24
	maxHour := 0

	for _, day := range view.Days {
		for _, slot := range day.Slots {
			h := slot.StartsAt.In(loc).Hour()
			if h < minHour {
				minHour = h
			}
			// Слот рисуется блоком в один час
			if h+1 > maxHour {
				maxHour = h + 1
			}
		}
	}

	if minHour == 24 {
		minHour = defaultMinHour
		maxHour = defaultMaxHour
	}

	startHour := minHour - hourPaddingTop
	endHour := maxHour + hourPaddingBot
	if startHour < 0 {
		startHour = 0
	}
	if endHour > 24 {
		endHour = 24
	}

	return hourRange{
		start: startHour,
		end:   endHour,
		total: endHour - startHour,
	}
}

// createCanvas создает новый контекст рисования с фоном
func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader рисует заголовок с диапазоном дат окна
func drawHeader(dc *gg.Context, view *model.WeekView, loc *time.Location) {
	first := view.Days[0].Date.In(loc)
	last := view.Days[len(view.Days)-1].Date.In(loc)

	title := "Sessions · " + first.Format("2 January")
	if !isSameDay(first, last) {
		title += " - " + last.Format("2 January")
	}

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, 20, float64(headerHeight)/8+h/2, 0, 0)
}

// drawHourLabels рисует колонку с часами слева
func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleMedium)
	dc.SetColor(hourLabelColor)

	for hIdx := 0; hIdx < hours.total; hIdx++ {
		y := float64(headerHeight) + float64(hIdx)*cellHeight
		dc.DrawStringAnchored(formatHourLabel(hours.start+hIdx), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

// isSameDay проверяет, являются ли две даты одним днем
func isSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// drawDayBackground рисует фон дня
func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	if isToday {
		dc.SetColor(todayBgColor)
	} else if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует день недели и дату
func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(date.Format("Mon"), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

// drawHourLines рисует горизонтальные линии часов
func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for hIdx := 0; hIdx <= hours.total; hIdx++ {
		hy := y + float64(hIdx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// drawSlot рисует один слот с метками занятых ролей
func drawSlot(dc *gg.Context, slot model.SlotLine, now time.Time, loc *time.Location,
	x, y float64, dayWidth int, hours hourRange, cellHeight float64) {

	start := slot.StartsAt.In(loc)
	startHour := float64(start.Hour()) + float64(start.Minute())/60.0

	slotY := y + (startHour-float64(hours.start))*cellHeight
	slotHeight := cellHeight
	slotWidth := float64(dayWidth) - float64(dayPaddingX*2)

	fillColor := slotColor(slot, now)

	// Тень
	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, slotY+2+shadowOffset, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fillColor)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fillColor, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Stroke()

	txtX := x + float64(dayPaddingX) + 8
	txtY := slotY + 18

	loadFont(dc, slotTimeFontSize, FontStyleMedium)
	dc.SetColor(slotTextColor)
	dc.DrawStringAnchored(fmt.Sprintf("%s (%d/%d)", slot.Label, len(slot.Claims), len(model.Roles())), txtX, txtY, 0, 0)

	loadFont(dc, claimFontSize)
	for i, claim := range slot.Claims {
		lineY := txtY + float64(i+1)*14
		if lineY > slotY+slotHeight-6 {
			break
		}
		dc.DrawStringAnchored(claimText(claim), txtX, lineY, 0, 0)
	}
}

// slotColor цвет слота: начавшийся, свободный или с занятыми ролями
func slotColor(slot model.SlotLine, now time.Time) color.RGBA {
	switch {
	case !slot.StartsAt.After(now):
		return slotStartedColor
	case len(slot.Claims) > 0:
		return slotClaimedColor
	default:
		return slotUnclaimedColor
	}
}

func claimText(claim model.ClaimLine) string {
	name := claim.ClaimantName
	if name == "" {
		name = strconv.FormatInt(claim.ClaimantID, 10)
	}
	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen-3]) + "..."
	}
	return string(claim.Role)[:1] + ": " + name
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени в колонке сегодняшнего дня
func drawCurrentTimeLine(dc *gg.Context, now time.Time, hours hourRange, cellHeight float64, dayIndex, dayWidth int) {
	currentHour := float64(now.Hour()) + float64(now.Minute())/60.0
	if currentHour < float64(hours.start) || currentHour > float64(hours.end) {
		return
	}

	y := float64(headerHeight) + (currentHour-float64(hours.start))*cellHeight
	x := float64(leftLabelsWidth + dayIndex*dayWidth)
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(x, y, x+float64(dayWidth), y)
	dc.Stroke()
}

// drawLegend рисует легенду справа
func drawLegend(dc *gg.Context, daysWidth int) {
	legendX := float64(leftLabelsWidth + daysWidth + 10)
	legendY := float64(imageHeight) - 100.0

	legendItems := []struct {
		Label string
		Clr   color.Color
	}{
		{"Unclaimed", slotUnclaimedColor},
		{"Claimed", slotClaimedColor},
		{"Started", slotStartedColor},
	}

	boxW := 20.0
	boxH := 14.0
	liY := legendY + 22

	for _, item := range legendItems {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(legendX, liY, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize)
		dc.SetColor(legendItemTextColor)
		dc.DrawStringAnchored(item.Label, legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func formatHourLabel(h int) string {
	if h < 10 {
		return "0" + strconv.Itoa(h) + ":00"
	}
	return strconv.Itoa(h) + ":00"
}
