package regions

import "math"

// Thresholds decide which circles count as significant and regulated.
type Thresholds struct {
	SigPValue      float64
	FoldChangeUp   float64
	FoldChangeDown float64
}

// Class is the classification of one circle.
type Class struct {
	Significant bool
	Up          bool
	Down        bool
	// Undefined is set when the circle has no fold change.
	Undefined bool
}

// Classify classifies c. A circle is up when its fold change is at least
// FoldChangeUp and down when it is at most FoldChangeDown.
func Classify(c Circle, t Thresholds) Class {
	cl := Class{Significant: c.PValue <= t.SigPValue}
	if math.IsNaN(c.Reg) {
		cl.Undefined = true
		return cl
	}
	cl.Up = c.Reg >= t.FoldChangeUp
	cl.Down = c.Reg <= t.FoldChangeDown
	return cl
}

// Summary counts circles per class.
type Summary struct {
	Total           int `yaml:"total"`
	Significant     int `yaml:"significant"`
	Up              int `yaml:"up"`
	Down            int `yaml:"down"`
	SignificantUp   int `yaml:"significant_up"`
	SignificantDown int `yaml:"significant_down"`
	Undefined       int `yaml:"undefined"`
}

// Summarize classifies every circle and counts the results.
func Summarize(circles []Circle, t Thresholds) Summary {
	s := Summary{Total: len(circles)}
	for _, c := range circles {
		cl := Classify(c, t)
		if cl.Significant {
			s.Significant++
		}
		if cl.Undefined {
			s.Undefined++
		}
		if cl.Up {
			s.Up++
			if cl.Significant {
				s.SignificantUp++
			}
		}
		if cl.Down {
			s.Down++
			if cl.Significant {
				s.SignificantDown++
			}
		}
	}
	return s
}

// Counts returns the summary keyed by class name, for metrics and logs.
func (s Summary) Counts() map[string]int {
	return map[string]int{
		"total":            s.Total,
		"significant":      s.Significant,
		"up":               s.Up,
		"down":             s.Down,
		"significant_up":   s.SignificantUp,
		"significant_down": s.SignificantDown,
		"undefined":        s.Undefined,
	}
}
