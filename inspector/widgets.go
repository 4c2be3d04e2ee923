package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/systems"
)

// Widget colors
var (
	ColorBarBg       = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorText        = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorAngleBg     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, options map[string]string) int32 {
	text := FormatValue(value, options["fmt"])
	rl.DrawText(name, x, y, 14, ColorTextDim)
	rl.DrawText(text, x+90, y, 14, ColorText)
	return 18
}

// DrawBar renders a horizontal bar. Options with ramp:true color the fill
// with the wind speed ramp instead of a fixed color.
func DrawBar(x, y int32, name string, value float32, options map[string]string) int32 {
	maxVal := GetMax(options)
	ratio := min(max(value/maxVal, 0), 1)

	barWidth := int32(120)
	barHeight := int32(14)

	rl.DrawText(name, x, y, 14, ColorTextDim)

	barX := x + 90
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)

	fill := rl.Color{R: 100, G: 180, B: 100, A: 255}
	if options["ramp"] == "true" {
		fill = rl.Color(systems.WindColor(float64(value)))
	}
	rl.DrawRectangle(barX, y, int32(float32(barWidth)*ratio), barHeight, fill)

	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barWidth+5, y, 14, ColorTextDim)

	return 18
}

// DrawAngle renders a compass-style direction indicator. Angles are
// counter-clockwise from east, so the needle's screen y is inverted.
func DrawAngle(x, y int32, name string, radians float32) int32 {
	size := int32(40)
	centerX := x + 90 + size/2
	centerY := y + size/2

	rl.DrawText(name, x, y+size/2-7, 14, ColorTextDim)

	rl.DrawCircle(centerX, centerY, float32(size/2), ColorAngleBg)
	rl.DrawCircleLines(centerX, centerY, float32(size/2), ColorTextDim)

	needleLen := float32(size/2 - 4)
	endX := float32(centerX) + needleLen*float32(math.Cos(float64(radians)))
	endY := float32(centerY) - needleLen*float32(math.Sin(float64(radians)))
	rl.DrawLineEx(
		rl.Vector2{X: float32(centerX), Y: float32(centerY)},
		rl.Vector2{X: endX, Y: endY},
		2,
		ColorAngleNeedle,
	)

	rl.DrawText(CompassLabel(float64(radians)), x+90+size+5, y+size/2-7, 14, ColorTextDim)

	return size + 4
}

// CompassLabel formats a direction as degrees plus the nearest of eight
// compass points, e.g. "45 deg NE".
func CompassLabel(radians float64) string {
	deg := math.Mod(radians*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	points := [...]string{"E", "NE", "N", "NW", "W", "SW", "S", "SE"}
	i := int(math.Round(deg/45)) % len(points)
	return fmt.Sprintf("%.0f deg %s", deg, points[i])
}

// DrawField renders a field using its widget type.
func DrawField(x, y int32, field Field) int32 {
	switch field.Widget {
	case WidgetBar:
		if v, ok := GetFloatValue(field.Value); ok {
			return DrawBar(x, y, field.Name, v, field.Options)
		}
	case WidgetAngle:
		if v, ok := GetFloatValue(field.Value); ok {
			return DrawAngle(x, y, field.Name, v)
		}
	}
	return DrawLabel(x, y, field.Name, field.Value, field.Options)
}

// FieldHeight returns the height DrawField uses for field.
func FieldHeight(field Field) int32 {
	if field.Widget == WidgetAngle {
		if _, ok := GetFloatValue(field.Value); ok {
			return 44
		}
	}
	return 18
}
