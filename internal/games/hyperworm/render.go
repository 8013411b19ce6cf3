package hyperworm

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/cancode/hyperworm/internal/core"
	"github.com/cancode/hyperworm/internal/vecmath"
)

const (
	hudRows    = 2 // status line + separator
	footerRows = 1
	minZoom    = 1.0  // rows per world unit before the view starts scrolling
	eggRadius  = 0.55 // world units at scale 1
)

// shadeRamp runs from dark to bright.
const shadeRamp = ".:-=+*#%@"

// lightDir shines from the upper left of the screen, above the floor.
var lightDir = vecmath.V3(-0.5, 1, -0.5).Normalize()

var headGlyphs = [8]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// view maps world XZ coordinates to screen cells. A cell is twice as tall
// as it is wide, so X uses twice the zoom of Z. World -Z is screen up.
type view struct {
	rect   core.Rect
	center vecmath.Vec3
	zoom   float64 // rows per world unit
}

func (g *Game) makeView(dst *core.Screen) view {
	rect := core.NewRect(0, hudRows, dst.Width(), dst.Height()-hudRows-footerRows)
	size := g.room.Size + 1
	zoom := math.Min(float64(rect.H-1)/size, float64(rect.W-1)/(2*size))
	zoom = math.Max(zoom, minZoom)

	v := view{rect: rect, zoom: zoom}
	// Centre the room on any axis it fits on, otherwise follow the camera
	// without showing much beyond the walls.
	halfW := float64(rect.W) / (4 * zoom)
	halfH := float64(rect.H) / (2 * zoom)
	v.center.X = followAxis(g.camera.Pos.X, g.room.Half+0.5, halfW)
	v.center.Z = followAxis(g.camera.Pos.Z, g.room.Half+0.5, halfH)
	return v
}

func followAxis(cam, roomHalf, viewHalf float64) float64 {
	if viewHalf >= roomHalf {
		return 0
	}
	lim := roomHalf - viewHalf
	return vecmath.ClampF(cam, -lim, lim)
}

func (v view) project(p vecmath.Vec3) (int, int) {
	cx, cy := v.rect.Center()
	col := cx + int(math.Round((p.X-v.center.X)*v.zoom*2))
	row := cy + int(math.Round((p.Z-v.center.Z)*v.zoom))
	return col, row
}

// unproject returns the world XZ point at the centre of a cell.
func (v view) unproject(col, row int) (float64, float64) {
	cx, cy := v.rect.Center()
	x := v.center.X + float64(col-cx)/(v.zoom*2)
	z := v.center.Z + float64(row-cy)/v.zoom
	return x, z
}

func (v view) set(dst *core.Screen, col, row int, r rune, c core.Color) {
	if v.rect.Contains(col, row) {
		dst.SetColored(col, row, r, c)
	}
}

// disc calls plot for every cell whose centre lies within radius of centre.
// Discs smaller than a cell still cover the cell under their centre.
func (v view) disc(dst *core.Screen, centre vecmath.Vec3, radius float64, plot func(dx, dz float64) (rune, core.Color)) {
	c0, r0 := v.project(centre.Add(vecmath.V3(-radius, 0, -radius)))
	c1, r1 := v.project(centre.Add(vecmath.V3(radius, 0, radius)))
	hit := false
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			x, z := v.unproject(col, row)
			dx, dz := x-centre.X, z-centre.Z
			if dx*dx+dz*dz > radius*radius {
				continue
			}
			hit = true
			r, c := plot(dx, dz)
			v.set(dst, col, row, r, c)
		}
	}
	if !hit {
		col, row := v.project(centre)
		r, c := plot(0, 0)
		v.set(dst, col, row, r, c)
	}
}

func shade(n vecmath.Vec3) rune {
	l := vecmath.ClampF(n.Dot(lightDir), 0.15, 1)
	idx := int(math.Round(l * float64(len(shadeRamp)-1)))
	return rune(shadeRamp[idx])
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall || g.room == nil {
		g.renderOverlay(dst, "Window too small", fmt.Sprintf("Need at least %dx%d", minScreenW, minScreenH))
		return
	}

	v := g.makeView(dst)
	g.renderRoom(dst, v)
	g.renderDoor(dst, v)
	g.renderFood(dst, v)
	if g.phase == PhaseHatching {
		g.renderEgg(dst, v)
	}
	g.renderWorm(dst, v)
	g.renderMinimap(dst, v)
	g.renderHUD(dst)
	g.renderFooter(dst)

	switch {
	case g.phase == PhaseWon:
		g.renderOverlay(dst, "You Win!", fmt.Sprintf("Final score: %d", g.state.Bites))
	case g.phase == PhaseGameOver:
		g.renderOverlay(dst, "Game Over: "+g.cause, "Press R to restart")
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

func (g *Game) renderRoom(dst *core.Screen, v view) {
	h := g.room.Half

	for z := math.Ceil(-h + 1); z < h; z += 2 {
		for x := math.Ceil(-h + 1); x < h; x += 2 {
			col, row := v.project(vecmath.V3(x, 0, z))
			v.set(dst, col, row, '·', core.ColorDarkGray)
		}
	}

	left, top := v.project(vecmath.V3(-h, 0, -h))
	right, bottom := v.project(vecmath.V3(h, 0, h))
	for col := left + 1; col < right; col++ {
		v.set(dst, col, top, '═', core.ColorBlue)
		v.set(dst, col, bottom, '═', core.ColorBlue)
	}
	for row := top + 1; row < bottom; row++ {
		v.set(dst, left, row, '║', core.ColorBlue)
		v.set(dst, right, row, '║', core.ColorBlue)
	}
	v.set(dst, left, top, '╔', core.ColorBlue)
	v.set(dst, right, top, '╗', core.ColorBlue)
	v.set(dst, left, bottom, '╚', core.ColorBlue)
	v.set(dst, right, bottom, '╝', core.ColorBlue)

	for _, p := range g.room.Pillars {
		v.disc(dst, p.Pos, p.Radius, func(dx, dz float64) (rune, core.Color) {
			return '█', core.ColorCyan
		})
	}
}

func (g *Game) renderDoor(dst *core.Screen, v view) {
	if !g.state.DoorOpen {
		return
	}
	scale := g.doorAnim.Progress()
	color := core.ColorGreen
	if g.doorAnim.Done() && math.Sin(g.doorTime*g.cfg.Door.PulseRate) > 0 {
		color = core.ColorBrightGreen
	}

	door := g.room.DoorPos()
	w := doorHalfWidth * scale
	c0, row := v.project(door.Add(vecmath.V3(-w, 0, 0)))
	c1, _ := v.project(door.Add(vecmath.V3(w, 0, 0)))
	_, wallRow := v.project(vecmath.V3(0, 0, g.room.Half))
	for col := c0; col <= c1; col++ {
		v.set(dst, col, wallRow, '▓', color)
		if row != wallRow {
			v.set(dst, col, row, '░', color)
		}
	}
}

func (g *Game) renderFood(dst *core.Screen, v view) {
	if !g.hasFood {
		return
	}
	glyph := '*'
	if (g.tick/15)%2 == 1 {
		glyph = '+'
	}
	col, row := v.project(g.food)
	v.set(dst, col, row, glyph, core.ColorBrightRed)
}

// renderEgg draws the egg shrinking as the intro progresses.
func (g *Game) renderEgg(dst *core.Screen, v view) {
	t := g.intro.Progress()
	radius := eggRadius * (1 - t)
	if radius <= 0 {
		return
	}
	color := core.ColorBrightYellow
	if t > 0.6 {
		color = core.ColorBrightWhite
	}
	v.disc(dst, g.egg, radius, func(dx, dz float64) (rune, core.Color) {
		d2 := (dx*dx + dz*dz) / (radius * radius)
		n := vecmath.V3(dx/radius, math.Sqrt(math.Max(0, 1-d2)), dz/radius)
		return shade(n), color
	})
}

// renderWorm rasterizes the tube rings from tail to head, shading each
// covered cell by the tube normal under it.
func (g *Game) renderWorm(dst *core.Screen, v view) {
	if g.worm == nil {
		return
	}
	mesh := g.worm.Mesh()
	if mesh == nil {
		return
	}

	rings := mesh.Rings
	for i := len(rings) - 1; i >= 0; i-- {
		ring := rings[i]
		t := float64(i) / float64(max(len(rings)-1, 1))
		color := core.ColorPink
		switch {
		case t < 0.12:
			color = core.ColorHotPink
		case t > 0.7:
			color = core.ColorMagenta
		}

		side := vecmath.V3(-ring.Tangent.Z, 0, ring.Tangent.X).Normalize()
		r := ring.Radius
		v.disc(dst, ring.Center, r, func(dx, dz float64) (rune, core.Color) {
			s := vecmath.ClampF(dx*side.X+dz*side.Z, -r, r)
			h := math.Sqrt(r*r - s*s)
			n := side.Scale(s / r).Add(vecmath.V3(0, h/r, 0))
			return shade(n), color
		})
	}

	f := g.worm.Forward()
	angle := math.Atan2(f.X, -f.Z) // 0 = screen up, clockwise positive
	idx := int(math.Round(angle/(math.Pi/4))+8) % 8
	col, row := v.project(g.worm.Head())
	v.set(dst, col, row, headGlyphs[idx], core.ColorBrightWhite)
}

// renderMinimap draws a scaled overview in the top-right corner.
func (g *Game) renderMinimap(dst *core.Screen, v view) {
	const w, h = 14, 7
	if v.rect.W < 60 || v.rect.H < h+2 {
		return
	}
	box := core.NewRect(v.rect.Right()-w-1, v.rect.Y, w, h)
	inner := box.Inset(1)
	dst.FillRect(inner, ' ', core.ColorDefault)
	dst.DrawBox(box, core.ColorGreen)

	plot := func(p vecmath.Vec3, r rune, c core.Color) {
		fx := (p.X + g.room.Half) / g.room.Size
		fz := (p.Z + g.room.Half) / g.room.Size
		col := inner.X + core.Clamp(int(fx*float64(inner.W)), 0, inner.W-1)
		row := inner.Y + core.Clamp(int(fz*float64(inner.H)), 0, inner.H-1)
		dst.SetColored(col, row, r, c)
	}

	for _, p := range g.room.Pillars {
		plot(p.Pos, 'o', core.ColorCyan)
	}
	if g.state.DoorOpen {
		plot(g.room.DoorPos(), 'D', core.ColorBrightGreen)
	}
	if g.hasFood {
		plot(g.food, '*', core.ColorBrightRed)
	}
	if g.worm != nil {
		plot(g.worm.Head(), '@', core.ColorHotPink)
	} else {
		plot(g.egg, 'O', core.ColorBrightYellow)
	}
}

func (g *Game) renderHUD(dst *core.Screen) {
	title := " HYPER-WORM "
	if g.mode == ModeEndless {
		title = " HYPER-WORM ENDLESS "
	}
	dst.DrawTextColored(0, 0, title, core.ColorHotPink)

	length := 0.0
	if g.worm != nil {
		length = g.worm.Length()
	}
	var stats string
	if g.mode == ModeEndless {
		stats = fmt.Sprintf(" Room %d  Bites %d (%d/%d)  Length %.1f  Speed %.1f  Best %d",
			g.state.Room, g.state.Bites, g.state.RoomBites, g.state.BitesPerRoom, length, g.state.Speed, g.highScore)
	} else {
		stats = fmt.Sprintf(" Room %d/%d  Bites %d (%d/%d)  Length %.1f  Speed %.1f  Best %d",
			g.state.Room, g.cfg.Room.CampaignRooms, g.state.Bites, g.state.RoomBites, g.state.BitesPerRoom,
			length, g.state.Speed, g.highScore)
	}
	dst.DrawText(utf8.RuneCountInString(title), 0, stats)

	for x := 0; x < dst.Width(); x++ {
		dst.SetColored(x, 1, '─', core.ColorDarkGray)
	}
}

func (g *Game) renderFooter(dst *core.Screen) {
	hint := " arrows/wasd steer · z/x turn · p pause · q quit"
	switch {
	case g.phase == PhaseHatching:
		hint = " The egg is hatching... press Enter to skip"
	case g.state.DoorOpen:
		hint = " The door is open! Head for the bottom wall"
	}
	dst.DrawTextColored(0, dst.Height()-1, hint, core.ColorGray)
}

// renderOverlay draws a centred two-line message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	width := max(utf8.RuneCountInString(line1), utf8.RuneCountInString(line2)) + 4
	box := core.NewRect((dst.Width()-width)/2, (dst.Height()-5)/2, width, 5)
	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, core.ColorBrightWhite)
	dst.DrawTextCentered(box.Y+1, line1, core.ColorBrightWhite)
	dst.DrawTextCentered(box.Y+3, line2, core.ColorGray)
}
