package config

import "sort"

var Presets = map[string]*Scene{
	"drop": {
		Name: "drop", Gravity: [2]float64{0, -9.81}, Dt: DefaultDt, Duration: 10.0, Pairing: "all",
		Bodies: []BodyConfig{
			{Position: [2]float64{0, 50}, Mass: 1.0, Color: "#00ff00"},
		},
	},
	"demo": {
		Name: "demo", Gravity: [2]float64{0, -9.81}, Dt: 0.1, Duration: 1.0, Pairing: "none",
		Bodies: []BodyConfig{
			{Position: [2]float64{0, 10}, Mass: 1.0},
		},
	},
	"pair": {
		Name: "pair", Gravity: [2]float64{0, -9.81}, Dt: 0.05, Duration: 5.0, Pairing: "all",
		Bodies: []BodyConfig{
			{Position: [2]float64{0, 10}, Velocity: [2]float64{1, 0}, Mass: 1.0, Restitution: Float(0.8), Color: "#ff0000"},
			{Position: [2]float64{2, 5}, Velocity: [2]float64{-0.5, 0}, Mass: 2.0, Restitution: Float(0.5), Color: "#0000ff"},
		},
	},
	"showcase": {
		Name: "showcase", Gravity: [2]float64{0, -9.81}, Dt: DefaultDt, Duration: 20.0, Pairing: "all",
		Bodies: []BodyConfig{
			{Position: [2]float64{0, 0}, Mass: 1.0, Restitution: Float(0.8), Color: "#ff0000"},
			{Position: [2]float64{0, 200}, Mass: 1.0, Restitution: Float(0.8), Color: "#00ff00"},
			{Position: [2]float64{-100, 100}, Velocity: [2]float64{50, 0}, Mass: 2.0, Restitution: Float(0.5), Color: "#0000ff"},
		},
	},
	"bounce": {
		Name: "bounce", Gravity: [2]float64{0, -9.81}, Dt: 0.01, Duration: 8.0, Pairing: "none",
		Bodies: []BodyConfig{
			{Position: [2]float64{-6, 20}, Mass: 1.0, Restitution: Float(1.0), Color: "#ffffff"},
			{Position: [2]float64{-2, 20}, Mass: 1.0, Restitution: Float(0.8), Color: "#00ccff"},
			{Position: [2]float64{2, 20}, Mass: 1.0, Restitution: Float(0.5), Color: "#ffaa00"},
			{Position: [2]float64{6, 20}, Mass: 1.0, Restitution: Float(0.0), Color: "#ff4444"},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scene {
	sc, ok := Presets[name]
	if !ok {
		return nil
	}
	return sc.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
