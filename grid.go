package svmgo

import (
	"fmt"

	"github.com/hupe1980/svmgo/internal/solver"
)

// ParamID identifies a searchable hyperparameter.
type ParamID int

const (
	ParamC ParamID = iota
	ParamGamma
	ParamP
	ParamNu
	ParamCoef0
	ParamDegree
)

func (id ParamID) String() string {
	switch id {
	case ParamC:
		return "C"
	case ParamGamma:
		return "Gamma"
	case ParamP:
		return "P"
	case ParamNu:
		return "Nu"
	case ParamCoef0:
		return "Coef0"
	case ParamDegree:
		return "Degree"
	default:
		return fmt.Sprintf("Unknown(%d)", int(id))
	}
}

// ParamGrid is a logarithmic range: Min, Min*LogStep, Min*LogStep², ...
// while below Max. A LogStep of at most 1 disables the search for the
// parameter and keeps the base value.
type ParamGrid struct {
	Min     float64
	Max     float64
	LogStep float64
}

// DefaultGrid returns the default search range of a parameter.
func DefaultGrid(id ParamID) ParamGrid {
	switch id {
	case ParamC:
		return ParamGrid{Min: 0.1, Max: 500, LogStep: 5}
	case ParamGamma:
		return ParamGrid{Min: 1e-5, Max: 0.6, LogStep: 15}
	case ParamP:
		return ParamGrid{Min: 0.01, Max: 100, LogStep: 7}
	case ParamNu:
		return ParamGrid{Min: 0.01, Max: 0.2, LogStep: 3}
	case ParamCoef0:
		return ParamGrid{Min: 0.1, Max: 300, LogStep: 14}
	case ParamDegree:
		return ParamGrid{Min: 0.01, Max: 4, LogStep: 7}
	default:
		return ParamGrid{}
	}
}

// Varies reports whether the grid holds more than the base value.
func (g ParamGrid) Varies() bool { return g.LogStep > 1 }

// validate checks a varying grid. minPositive rejects a zero minimum.
func (g ParamGrid) validate(id ParamID, minPositive bool) error {
	field := "Grids." + id.String()
	switch {
	case !(g.Min <= g.Max):
		return configError(field, "min %v exceeds max %v", g.Min, g.Max)
	case minPositive && g.Min < doubleEpsilon:
		return configError(field, "min must be positive, got %v", g.Min)
	case !minPositive && g.Min < 0:
		return configError(field, "min must be non-negative, got %v", g.Min)
	case g.LogStep < 1+solver.FloatEpsilon:
		return configError(field, "log step must exceed 1, got %v", g.LogStep)
	}
	return nil
}

// values returns the grid points, or base when the grid does not vary.
func (g ParamGrid) values(base float64) []float64 {
	if !g.Varies() {
		return []float64{base}
	}
	out := []float64{g.Min}
	// A zero minimum (coef0 only) cannot be stepped geometrically.
	if g.Min == g.Max || g.Min == 0 {
		return out
	}
	for v := g.Min * g.LogStep; v < g.Max; v *= g.LogStep {
		out = append(out, v)
	}
	return out
}

// Grids holds one search range per hyperparameter. The zero value searches
// nothing and trains the base parameters.
type Grids struct {
	C      ParamGrid
	Gamma  ParamGrid
	P      ParamGrid
	Nu     ParamGrid
	Coef0  ParamGrid
	Degree ParamGrid
}

// DefaultGrids returns DefaultGrid for every parameter.
func DefaultGrids() Grids {
	return Grids{
		C:      DefaultGrid(ParamC),
		Gamma:  DefaultGrid(ParamGamma),
		P:      DefaultGrid(ParamP),
		Nu:     DefaultGrid(ParamNu),
		Coef0:  DefaultGrid(ParamCoef0),
		Degree: DefaultGrid(ParamDegree),
	}
}

// Grid returns the range of one parameter.
func (g Grids) Grid(id ParamID) ParamGrid {
	switch id {
	case ParamC:
		return g.C
	case ParamGamma:
		return g.Gamma
	case ParamP:
		return g.P
	case ParamNu:
		return g.Nu
	case ParamCoef0:
		return g.Coef0
	case ParamDegree:
		return g.Degree
	default:
		return ParamGrid{}
	}
}

// gridAxis is the list of values searched for one parameter.
type gridAxis struct {
	id     ParamID
	values []float64
}

// axes pins every grid that does not apply to the base parameters, validates
// the rest and expands them in search order C, gamma, p, nu, coef0, degree.
func (g Grids) axes(base Params) ([]gridAxis, error) {
	applies := [...]bool{
		ParamC:      base.Type.usesC(),
		ParamGamma:  base.KernelType.UsesGamma(),
		ParamP:      base.Type.usesP(),
		ParamNu:     base.Type.usesNu(),
		ParamCoef0:  base.KernelType.UsesCoef0(),
		ParamDegree: base.KernelType.UsesDegree(),
	}

	axes := make([]gridAxis, 0, len(applies))
	for id := ParamC; id <= ParamDegree; id++ {
		grid := g.Grid(id)
		if !applies[id] {
			grid = ParamGrid{}
		}
		if grid.Varies() {
			if err := grid.validate(id, id != ParamCoef0); err != nil {
				return nil, err
			}
		}
		axes = append(axes, gridAxis{id: id, values: grid.values(paramValue(base, id))})
	}
	return axes, nil
}

func paramValue(p Params, id ParamID) float64 {
	switch id {
	case ParamC:
		return p.C
	case ParamGamma:
		return p.Gamma
	case ParamP:
		return p.P
	case ParamNu:
		return p.Nu
	case ParamCoef0:
		return p.Coef0
	default:
		return p.Degree
	}
}

func setParamValue(p *Params, id ParamID, v float64) {
	switch id {
	case ParamC:
		p.C = v
	case ParamGamma:
		p.Gamma = v
	case ParamP:
		p.P = v
	case ParamNu:
		p.Nu = v
	case ParamCoef0:
		p.Coef0 = v
	default:
		p.Degree = v
	}
}

// forEachPoint calls fn for every combination of axis values, the last axis
// varying fastest. It stops at the first error fn returns.
func forEachPoint(base Params, axes []gridAxis, fn func(Params) error) error {
	var walk func(level int, p Params) error
	walk = func(level int, p Params) error {
		if level == len(axes) {
			return fn(p)
		}
		for _, v := range axes[level].values {
			setParamValue(&p, axes[level].id, v)
			if err := walk(level+1, p); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(0, base)
}
