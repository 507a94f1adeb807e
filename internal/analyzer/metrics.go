package analyzer

import (
	"math"

	"github.com/ludo-technologies/jsreport/domain"
)

// Precision is the number of decimal places every reported figure is rounded to
const Precision = 3

// MaxMaintainability is the upper bound of the classic maintainability index
const MaxMaintainability = 171.0

// halsteadCounter tallies operator and operand occurrences by token text
type halsteadCounter struct {
	operators map[string]int
	operands  map[string]int
}

func newHalsteadCounter() *halsteadCounter {
	return &halsteadCounter{
		operators: make(map[string]int),
		operands:  make(map[string]int),
	}
}

func (c *halsteadCounter) addOperator(token string) {
	c.operators[token]++
}

func (c *halsteadCounter) addOperand(token string) {
	c.operands[token]++
}

func total(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// metrics derives the Halstead measures from the tallies
func (c *halsteadCounter) metrics() domain.HalsteadMetrics {
	n1, n2 := len(c.operators), len(c.operands)
	N1, N2 := total(c.operators), total(c.operands)

	h := domain.HalsteadMetrics{
		Operators: domain.HalsteadCount{Distinct: n1, Total: N1},
		Operands:  domain.HalsteadCount{Distinct: n2, Total: N2},
	}
	h.Length = float64(N1 + N2)
	h.Vocabulary = float64(n1 + n2)
	if n2 > 0 {
		h.Difficulty = (float64(n1) / 2) * (float64(N2) / float64(n2))
	}
	if h.Vocabulary > 0 {
		h.Volume = h.Length * math.Log2(h.Vocabulary)
	}
	h.Effort = h.Difficulty * h.Volume
	h.Bugs = h.Volume / 3000
	h.Time = h.Effort / 18
	return h
}

// maintainabilityIndex computes the index from per-function averages.
// Logarithms of values below 1 are taken as zero.
func maintainabilityIndex(averageEffort, averageCyclomatic, averageLogicalSloc float64, rescale bool) float64 {
	mi := MaxMaintainability -
		3.42*safeLog(averageEffort) -
		0.23*safeLog(averageCyclomatic) -
		16.2*safeLog(averageLogicalSloc)
	if mi > MaxMaintainability {
		mi = MaxMaintainability
	}
	if rescale {
		mi = math.Max(0, mi*100/MaxMaintainability)
	}
	return mi
}

func safeLog(v float64) float64 {
	if v < 1 {
		return 0
	}
	return math.Log(v)
}

// sumMetrics adds b into a
func sumMetrics(a *domain.Metrics, b domain.Metrics) {
	a.Cyclomatic += b.Cyclomatic
	a.CyclomaticDensity += b.CyclomaticDensity
	a.ParamCount += b.ParamCount
	a.Sloc.Physical += b.Sloc.Physical
	a.Sloc.Logical += b.Sloc.Logical

	h := &a.Halstead
	h.Bugs += b.Halstead.Bugs
	h.Difficulty += b.Halstead.Difficulty
	h.Effort += b.Halstead.Effort
	h.Length += b.Halstead.Length
	h.Time += b.Halstead.Time
	h.Vocabulary += b.Halstead.Vocabulary
	h.Volume += b.Halstead.Volume
	h.Operators.Distinct += b.Halstead.Operators.Distinct
	h.Operators.Total += b.Halstead.Operators.Total
	h.Operands.Distinct += b.Halstead.Operands.Distinct
	h.Operands.Total += b.Halstead.Operands.Total
}

// divideMetrics returns m with every real-valued figure divided by n.
// Halstead counts stay integral and are truncated.
func divideMetrics(m domain.Metrics, n int) domain.Metrics {
	if n == 0 {
		return domain.Metrics{}
	}
	d := float64(n)
	out := domain.Metrics{
		Cyclomatic:        m.Cyclomatic / d,
		CyclomaticDensity: m.CyclomaticDensity / d,
		ParamCount:        m.ParamCount / d,
		Sloc: domain.SlocMetrics{
			Physical: m.Sloc.Physical / d,
			Logical:  m.Sloc.Logical / d,
		},
		Halstead: domain.HalsteadMetrics{
			Bugs:       m.Halstead.Bugs / d,
			Difficulty: m.Halstead.Difficulty / d,
			Effort:     m.Halstead.Effort / d,
			Length:     m.Halstead.Length / d,
			Time:       m.Halstead.Time / d,
			Vocabulary: m.Halstead.Vocabulary / d,
			Volume:     m.Halstead.Volume / d,
			Operators: domain.HalsteadCount{
				Distinct: m.Halstead.Operators.Distinct / n,
				Total:    m.Halstead.Operators.Total / n,
			},
			Operands: domain.HalsteadCount{
				Distinct: m.Halstead.Operands.Distinct / n,
				Total:    m.Halstead.Operands.Total / n,
			},
		},
	}
	return out
}

// aggregateMethods returns the sum and the mean of methods' metrics
func aggregateMethods(methods []domain.MethodReport) (sum, mean domain.Metrics) {
	for _, m := range methods {
		sumMetrics(&sum, m.Metrics)
	}
	return sum, divideMetrics(sum, len(methods))
}

func round(v float64) float64 {
	scale := math.Pow(10, Precision)
	return math.Round(v*scale) / scale
}

// roundMetrics rounds every real-valued figure of m
func roundMetrics(m domain.Metrics) domain.Metrics {
	m.Cyclomatic = round(m.Cyclomatic)
	m.CyclomaticDensity = round(m.CyclomaticDensity)
	m.ParamCount = round(m.ParamCount)
	m.Sloc.Physical = round(m.Sloc.Physical)
	m.Sloc.Logical = round(m.Sloc.Logical)

	h := &m.Halstead
	h.Bugs = round(h.Bugs)
	h.Difficulty = round(h.Difficulty)
	h.Effort = round(h.Effort)
	h.Length = round(h.Length)
	h.Time = round(h.Time)
	h.Vocabulary = round(h.Vocabulary)
	h.Volume = round(h.Volume)
	return m
}

func roundMethods(methods []domain.MethodReport) {
	for i := range methods {
		methods[i].Metrics = roundMetrics(methods[i].Metrics)
	}
}

// roundModule rounds every figure of a module report in place
func roundModule(m *domain.ModuleReport) {
	m.Maintainability = round(m.Maintainability)
	m.Aggregate = roundMetrics(m.Aggregate)
	m.MethodAggregate = roundMetrics(m.MethodAggregate)
	m.MethodAverage = roundMetrics(m.MethodAverage)
	roundMethods(m.Methods)
	for i := range m.Classes {
		c := &m.Classes[i]
		c.MethodAggregate = roundMetrics(c.MethodAggregate)
		c.MethodAverage = roundMetrics(c.MethodAverage)
		roundMethods(c.Methods)
	}
}

// projectAverage is the mean over modules of maintainability and of each module's method average
func projectAverage(modules []domain.ModuleReport) domain.ModuleAverage {
	if len(modules) == 0 {
		return domain.ModuleAverage{}
	}
	var maintainability float64
	var sum domain.Metrics
	for _, m := range modules {
		maintainability += m.Maintainability
		sumMetrics(&sum, m.MethodAverage)
	}
	return domain.ModuleAverage{
		Maintainability: round(maintainability / float64(len(modules))),
		MethodAverage:   roundMetrics(divideMetrics(sum, len(modules))),
	}
}
