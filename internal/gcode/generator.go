package gcode

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/piwi3910/LaserNest/internal/engine"
	"github.com/piwi3910/LaserNest/internal/model"
	"github.com/piwi3910/LaserNest/internal/numeric"
)

// Settings controls how a laser program is generated.
type Settings struct {
	FeedRate        float64 `json:"feed_rate" toml:"feed_rate"`                 // cutting speed, mm/min
	Power           int     `json:"power" toml:"power"`                         // spindle S value while the beam is on
	KerfWidth       float64 `json:"kerf_width" toml:"kerf_width"`               // mm, cut outside the part by half of it
	PierceDelay     float64 `json:"pierce_delay" toml:"pierce_delay"`           // seconds dwelled after each beam-on
	LeadIn          float64 `json:"lead_in" toml:"lead_in"`                     // mm, straight approach below the first corner
	MicroJoints     int     `json:"micro_joints" toml:"micro_joints"`           // uncut bridges per side
	MicroJointWidth float64 `json:"micro_joint_width" toml:"micro_joint_width"` // mm
	Dialect         string  `json:"dialect" toml:"dialect"`
}

// DefaultSettings returns generator settings for a typical fiber laser.
func DefaultSettings() Settings {
	return Settings{
		FeedRate:        3000,
		Power:           1000,
		KerfWidth:       0.2,
		PierceDelay:     0.5,
		MicroJointWidth: 0.5,
		Dialect:         "Generic",
	}
}

// Sanitized replaces invalid values with their defaults.
func (s Settings) Sanitized() Settings {
	d := DefaultSettings()
	out := s
	out.FeedRate = numeric.ValidOrDefault(s.FeedRate, numeric.Positive, d.FeedRate)
	out.KerfWidth = numeric.ValidOrDefault(s.KerfWidth, numeric.NonNegative, d.KerfWidth)
	out.PierceDelay = numeric.ValidOrDefault(s.PierceDelay, numeric.NonNegative, d.PierceDelay)
	out.LeadIn = numeric.ValidOrDefault(s.LeadIn, numeric.NonNegative, 0)
	out.MicroJointWidth = numeric.ValidOrDefault(s.MicroJointWidth, numeric.Positive, d.MicroJointWidth)
	if out.Power <= 0 {
		out.Power = d.Power
	}
	if out.MicroJoints < 0 {
		out.MicroJoints = 0
	}
	if out.Dialect == "" {
		out.Dialect = d.Dialect
	}
	return out
}

// Generator produces laser programs from nesting layouts.
type Generator struct {
	Settings Settings
	dialect  Dialect
}

func New(settings Settings) *Generator {
	s := settings.Sanitized()
	return &Generator{
		Settings: s,
		dialect:  GetDialect(s.Dialect),
	}
}

// GenerateLayout produces the program for one sheet of a layout. Every sheet
// of the layout is cut with the same program, which traces every grid
// position rather than only the sampled ones.
func (g *Generator) GenerateLayout(layout model.SheetLayout, layoutIndex int) string {
	var b strings.Builder

	positions := engine.LayoutPositions(layout)
	if positions == nil {
		positions = layout.Positions
	}
	g.writeHeader(&b, layout, layoutIndex, len(positions))

	for i, pos := range positions {
		g.writePart(&b, layout, pos, i+1)
	}

	g.writeFooter(&b)
	return b.String()
}

// GenerateAll produces one program per layout that fits its sheet. Layouts
// that do not fit are skipped.
func (g *Generator) GenerateAll(result model.NestingResult) []string {
	var codes []string
	for i, l := range result.Layouts {
		if !l.Fits() {
			continue
		}
		codes = append(codes, g.GenerateLayout(l, i+1))
	}
	return codes
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// WriteAll writes one .nc file per fitting layout into dir and returns the
// written paths.
func (g *Generator) WriteAll(dir string, result model.NestingResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for i, l := range result.Layouts {
		if !l.Fits() {
			continue
		}
		name := strings.Trim(unsafeFileChars.ReplaceAllString(l.PartName, "_"), "_")
		if name == "" {
			name = "part"
		}
		path := filepath.Join(dir, fmt.Sprintf("sheet-%02d-%s.nc", i+1, name))
		if err := os.WriteFile(path, []byte(g.GenerateLayout(l, i+1)), 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (g *Generator) writeHeader(b *strings.Builder, l model.SheetLayout, idx, traced int) {
	d := g.dialect

	b.WriteString(g.comment(fmt.Sprintf("LaserNest program - Layout %d (%s)", idx, l.PartName)))
	b.WriteString(g.comment(fmt.Sprintf("Sheet: %.1f x %.1f mm, %d sheet(s)", l.SheetWidth, l.SheetHeight, l.TotalSheets)))
	b.WriteString(g.comment(fmt.Sprintf("Part: %.1f x %.1f mm, %d per sheet, utilization %.1f%%",
		l.PartWidth, l.PartHeight, l.PartsPerSheet, l.Utilization)))
	b.WriteString(g.comment(fmt.Sprintf("Feed: %.0f mm/min, Power: S%d, Kerf: %.2f mm",
		g.Settings.FeedRate, g.Settings.Power, g.Settings.KerfWidth)))
	if traced < l.PartsPerSheet {
		b.WriteString(g.comment(fmt.Sprintf("NOTE: program traces %d of %d positions",
			traced, l.PartsPerSheet)))
	}
	b.WriteString(g.comment("Dialect: " + d.Name))
	b.WriteString("\n")

	for _, code := range d.StartCode {
		b.WriteString(code + "\n")
	}
	b.WriteString(d.BeamOff + "\n")
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", d.RapidMove, g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	d := g.dialect

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))
	b.WriteString(d.BeamOff + "\n")
	for _, code := range d.EndCode {
		b.WriteString(code + "\n")
	}
}

// writePart traces one placed part clockwise from its lower-left corner,
// offset outward by half the kerf.
func (g *Generator) writePart(b *strings.Builder, l model.SheetLayout, pos model.Position, partNum int) {
	kerfR := g.Settings.KerfWidth / 2.0
	pw, ph := l.PlacedSize(pos)

	x0 := pos.X - kerfR
	y0 := pos.Y - kerfR
	x1 := pos.X + pw + kerfR
	y1 := pos.Y + ph + kerfR

	b.WriteString(g.comment(fmt.Sprintf("--- Part %d: %s (%.1f x %.1f)%s ---",
		partNum, l.PartName, l.PartWidth, l.PartHeight, rotatedStr(pos.Rotated()))))

	if g.Settings.LeadIn > 0 {
		b.WriteString(g.comment("Lead-in"))
		g.rapidTo(b, x0, y0-g.Settings.LeadIn)
		g.beamOn(b)
		g.feedTo(b, x0, y0, true)
	} else {
		g.rapidTo(b, x0, y0)
		g.beamOn(b)
	}

	corners := [][2]float64{{x0, y1}, {x1, y1}, {x1, y0}, {x0, y0}}
	from := [2]float64{x0, y0}
	for i, to := range corners {
		g.writeSide(b, from, to, i == 0 && g.Settings.LeadIn <= 0)
		from = to
	}

	b.WriteString(g.dialect.BeamOff + "\n")
	b.WriteString("\n")
}

// writeSide cuts one side of the rectangle, leaving micro joints uncut by
// switching the beam off across them.
func (g *Generator) writeSide(b *strings.Builder, from, to [2]float64, withFeed bool) {
	joints := g.jointsForSide(from, to)
	if len(joints) == 0 {
		g.feedTo(b, to[0], to[1], withFeed)
		return
	}

	dx := to[0] - from[0]
	dy := to[1] - from[1]
	length := math.Hypot(dx, dy)
	nx, ny := dx/length, dy/length
	half := g.Settings.MicroJointWidth / 2

	for _, center := range joints {
		g.feedTo(b, from[0]+nx*(center-half), from[1]+ny*(center-half), withFeed)
		withFeed = false
		b.WriteString(g.dialect.BeamOff + "\n")
		g.rapidTo(b, from[0]+nx*(center+half), from[1]+ny*(center+half))
		g.beamOn(b)
	}
	g.feedTo(b, to[0], to[1], true)
}

// jointsForSide returns the distances along a side at which joints are centered.
func (g *Generator) jointsForSide(from, to [2]float64) []float64 {
	n := g.Settings.MicroJoints
	if n <= 0 {
		return nil
	}
	length := math.Hypot(to[0]-from[0], to[1]-from[1])
	if length <= float64(n+1)*g.Settings.MicroJointWidth {
		return nil
	}
	spacing := length / float64(n+1)
	joints := make([]float64, n)
	for i := range joints {
		joints[i] = spacing * float64(i+1)
	}
	return joints
}

func (g *Generator) beamOn(b *strings.Builder) {
	b.WriteString(fmt.Sprintf(g.dialect.BeamOn+"\n", g.Settings.Power))
	if g.Settings.PierceDelay > 0 && g.dialect.Dwell != "" {
		b.WriteString(fmt.Sprintf(g.dialect.Dwell+"\n", g.Settings.PierceDelay))
	}
}

func (g *Generator) rapidTo(b *strings.Builder, x, y float64) {
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.dialect.RapidMove, g.format(x), g.format(y)))
}

func (g *Generator) feedTo(b *strings.Builder, x, y float64, withFeed bool) {
	if withFeed {
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.dialect.FeedMove,
			g.format(x), g.format(y), g.format(g.Settings.FeedRate)))
		return
	}
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.dialect.FeedMove, g.format(x), g.format(y)))
}

// comment wraps text in the dialect's comment syntax.
func (g *Generator) comment(text string) string {
	return g.dialect.CommentPrefix + " " + text + g.dialect.CommentSuffix + "\n"
}

// format formats a coordinate according to the dialect's decimal places.
func (g *Generator) format(v float64) string {
	return fmt.Sprintf("%.*f", g.dialect.DecimalPlaces, v)
}

func rotatedStr(r bool) string {
	if r {
		return " [rotated]"
	}
	return ""
}
