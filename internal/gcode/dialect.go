package gcode

// Dialect describes the controller-specific syntax of a laser program.
type Dialect struct {
	Name          string
	CommentPrefix string
	CommentSuffix string
	StartCode     []string
	EndCode       []string
	BeamOn        string // format string taking the power value
	BeamOff       string
	RapidMove     string
	FeedMove      string
	Dwell         string // format string taking seconds, empty when unsupported
	DecimalPlaces int
}

var dialects = []Dialect{
	{
		Name:          "Generic",
		CommentPrefix: ";",
		StartCode:     []string{"G90", "G21", "G17"},
		EndCode:       []string{"G0 X0 Y0", "M2"},
		BeamOn:        "M3 S%d",
		BeamOff:       "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		Dwell:         "G4 P%.2f",
		DecimalPlaces: 3,
	},
	{
		// Grbl laser mode: M4 scales power with speed, so corners do not over-burn.
		Name:          "Grbl",
		CommentPrefix: ";",
		StartCode:     []string{"G90", "G21", "$32=1"},
		EndCode:       []string{"G0 X0 Y0", "M2"},
		BeamOn:        "M4 S%d",
		BeamOff:       "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		Dwell:         "G4 P%.2f",
		DecimalPlaces: 3,
	},
	{
		Name:          "LinuxCNC",
		CommentPrefix: "(",
		CommentSuffix: ")",
		StartCode:     []string{"G90", "G21", "G17", "G64 P0.05"},
		EndCode:       []string{"G0 X0 Y0", "M2"},
		BeamOn:        "M3 S%d",
		BeamOff:       "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		Dwell:         "G4 P%.2f",
		DecimalPlaces: 4,
	},
}

// GetDialect returns the dialect with the given name, falling back to Generic.
func GetDialect(name string) Dialect {
	for _, d := range dialects {
		if d.Name == name {
			return d
		}
	}
	return dialects[0]
}

// DialectNames lists the supported controller dialects.
func DialectNames() []string {
	names := make([]string, len(dialects))
	for i, d := range dialects {
		names[i] = d.Name
	}
	return names
}
