package render

import (
	"strings"

	"github.com/lixenwraith/invaders/engine"
)

// Glyphs used by every view
const (
	GlyphAlive      = 'I'
	GlyphDead       = '.'
	GlyphProjectile = '*'
	GlyphDefender   = 'P'
	GlyphEmpty      = ' '
)

// Cells lays a snapshot out as rows+1 lines of glyphs, the last being the defender row
// Projectiles overlay grid cells; the defender overlays projectiles on its own row
func Cells(s engine.Snapshot) [][]rune {
	out := make([][]rune, s.Rows+1)
	for r := 0; r < s.Rows; r++ {
		line := make([]rune, s.Cols)
		for c := range line {
			if s.Alive(r, c) {
				line[c] = GlyphAlive
			} else {
				line[c] = GlyphDead
			}
		}
		out[r] = line
	}
	def := make([]rune, s.Cols)
	for c := range def {
		def[c] = GlyphEmpty
	}
	out[s.Rows] = def

	for _, p := range s.Projectiles {
		if p.Row < 0 || p.Row > s.Rows || p.Column < 0 || p.Column >= s.Cols {
			continue
		}
		out[p.Row][p.Column] = GlyphProjectile
	}
	if s.DefenderCol >= 0 && s.DefenderCol < s.Cols {
		out[s.Rows][s.DefenderCol] = GlyphDefender
	}
	return out
}

// Frame renders Cells as newline-terminated text
func Frame(s engine.Snapshot) string {
	var sb strings.Builder
	for _, line := range Cells(s) {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}
