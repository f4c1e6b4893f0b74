package gas

import "fmt"

// GasState holds the display-only thermodynamic fields.
type GasState struct {
	Volume      float64 `json:"volume" yaml:"volume"`           // liters
	Temperature float64 `json:"temperature" yaml:"temperature"` // kelvin
	Pressure    float64 `json:"pressure" yaml:"pressure"`       // atmospheres
	Moles       float64 `json:"moles" yaml:"moles"`
}

func DefaultGasState() GasState {
	return GasState{Volume: 1, Temperature: 1, Pressure: 1}
}

func (s *System) Volume() float64      { return s.state.Volume }
func (s *System) Temperature() float64 { return s.state.Temperature }
func (s *System) Pressure() float64    { return s.state.Pressure }
func (s *System) Moles() float64       { return s.state.Moles }

func (s *System) SetVolume(v float64)      { s.state.Volume = v }
func (s *System) SetTemperature(v float64) { s.state.Temperature = v }
func (s *System) SetPressure(v float64)    { s.state.Pressure = v }
func (s *System) SetMoles(v float64)       { s.state.Moles = v }

func (s *System) State() GasState     { return s.state }
func (s *System) SetState(g GasState) { s.state = g }

// GetParams exposes the gas-state fields by name for generic tuning UIs.
func (s *System) GetParams() map[string]float64 {
	return map[string]float64{
		"volume":      s.state.Volume,
		"temperature": s.state.Temperature,
		"pressure":    s.state.Pressure,
		"moles":       s.state.Moles,
	}
}

// SetParam sets one gas-state field by name.
func (s *System) SetParam(name string, value float64) error {
	switch name {
	case "volume":
		s.state.Volume = value
	case "temperature":
		s.state.Temperature = value
	case "pressure":
		s.state.Pressure = value
	case "moles":
		s.state.Moles = value
	default:
		return fmt.Errorf("unknown gas-state field: %s", name)
	}
	return nil
}
