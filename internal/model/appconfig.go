package model

import "github.com/piwi3910/LaserNest/internal/numeric"

// Default sheet and run parameters.
const (
	DefaultSheetWidth  = 1220.0 // mm
	DefaultSheetHeight = 2440.0 // mm
	DefaultScale       = 1.0
	DefaultQuantity    = 1
)

// OperatingSettings are the running costs of the cutting machine.
type OperatingSettings struct {
	LaborCostPerMinute float64 `json:"labor_cost_per_minute" toml:"labor_cost_per_minute"`
	GasPricePerVolume  float64 `json:"gas_price_per_volume" toml:"gas_price_per_volume"` // per m3
	GasTankVolume      float64 `json:"gas_tank_volume" toml:"gas_tank_volume"`           // m3
	GasFlowRate        float64 `json:"gas_flow_rate" toml:"gas_flow_rate"`               // L/min
	SheetPricePerM2    float64 `json:"sheet_price_per_m2" toml:"sheet_price_per_m2"`
}

// DefaultOperatingSettings returns the shop's standard running costs.
func DefaultOperatingSettings() OperatingSettings {
	return OperatingSettings{
		LaborCostPerMinute: 1500,
		GasPricePerVolume:  50000,
		GasTankVolume:      6,
		GasFlowRate:        20,
		SheetPricePerM2:    150000,
	}
}

// Sanitized replaces any negative or non-finite value with its default.
func (o OperatingSettings) Sanitized() OperatingSettings {
	d := DefaultOperatingSettings()
	return OperatingSettings{
		LaborCostPerMinute: numeric.ValidOrDefault(o.LaborCostPerMinute, numeric.NonNegative, d.LaborCostPerMinute),
		GasPricePerVolume:  numeric.ValidOrDefault(o.GasPricePerVolume, numeric.NonNegative, d.GasPricePerVolume),
		GasTankVolume:      numeric.ValidOrDefault(o.GasTankVolume, numeric.Positive, d.GasTankVolume),
		GasFlowRate:        numeric.ValidOrDefault(o.GasFlowRate, numeric.NonNegative, d.GasFlowRate),
		SheetPricePerM2:    numeric.ValidOrDefault(o.SheetPricePerM2, numeric.NonNegative, d.SheetPricePerM2),
	}
}

// LoggingSettings configures structured logging.
type LoggingSettings struct {
	Level  string `json:"level" toml:"level"`
	Format string `json:"format" toml:"format"` // "console" or "json"
	Output string `json:"output" toml:"output"` // "stderr", "stdout" or a file path
}

// Settings holds the estimator configuration persisted between runs.
type Settings struct {
	MachineType        string            `json:"machine_type" toml:"machine_type"`
	DefaultSheetWidth  float64           `json:"default_sheet_width" toml:"default_sheet_width"`
	DefaultSheetHeight float64           `json:"default_sheet_height" toml:"default_sheet_height"`
	DefaultUnit        Unit              `json:"default_unit" toml:"default_unit"`
	DefaultScale       float64           `json:"default_scale" toml:"default_scale"`
	Currency           string            `json:"currency" toml:"currency"`
	CurrencyDecimals   int32             `json:"currency_decimals" toml:"currency_decimals"`
	Operating          OperatingSettings `json:"operating" toml:"operating"`
	Materials          []Material        `json:"materials" toml:"materials"`
	SpeedTable         []SpeedEntry      `json:"speed_table" toml:"speed_table"`
	Logging            LoggingSettings   `json:"logging" toml:"logging"`
	HistoryPath        string            `json:"history_path,omitempty" toml:"history_path"`
}

// DefaultSettings returns the configuration of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		MachineType:        "Fiber Laser 1500W",
		DefaultSheetWidth:  DefaultSheetWidth,
		DefaultSheetHeight: DefaultSheetHeight,
		DefaultUnit:        UnitMM,
		DefaultScale:       DefaultScale,
		Currency:           "IDR",
		CurrencyDecimals:   0,
		Operating:          DefaultOperatingSettings(),
		Materials:          DefaultMaterials(),
		SpeedTable:         DefaultSpeedTable(),
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Sanitized validates every numeric field at the configuration boundary,
// replacing invalid values with defaults, so the engines never see them.
func (s Settings) Sanitized() Settings {
	d := DefaultSettings()
	out := s
	out.DefaultSheetWidth = numeric.ValidOrDefault(s.DefaultSheetWidth, numeric.Positive, d.DefaultSheetWidth)
	out.DefaultSheetHeight = numeric.ValidOrDefault(s.DefaultSheetHeight, numeric.Positive, d.DefaultSheetHeight)
	out.DefaultScale = numeric.ValidOrDefault(s.DefaultScale, numeric.Positive, d.DefaultScale)
	out.DefaultUnit = ParseUnit(string(s.DefaultUnit))
	out.Operating = s.Operating.Sanitized()
	if out.MachineType == "" {
		out.MachineType = d.MachineType
	}
	if out.Currency == "" {
		out.Currency = d.Currency
	}
	if out.CurrencyDecimals < 0 {
		out.CurrencyDecimals = d.CurrencyDecimals
	}
	if len(out.Materials) == 0 {
		out.Materials = d.Materials
	}
	if out.SpeedTable == nil {
		out.SpeedTable = d.SpeedTable
	}
	if out.Logging.Level == "" {
		out.Logging = d.Logging
	}
	return out
}

// Catalog returns the configured materials as a Catalog.
func (s Settings) Catalog() Catalog {
	return Catalog(s.Materials)
}
