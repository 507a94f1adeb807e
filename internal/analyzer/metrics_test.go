package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ludo-technologies/jsreport/domain"
)

func TestHalsteadMetrics(t *testing.T) {
	c := newHalsteadCounter()
	c.addOperator("+")
	c.addOperator("+")
	c.addOperator("=")
	c.addOperand("a")
	c.addOperand("a")
	c.addOperand("b")
	c.addOperand("c")

	h := c.metrics()
	assert.Equal(t, domain.HalsteadCount{Distinct: 2, Total: 3}, h.Operators)
	assert.Equal(t, domain.HalsteadCount{Distinct: 3, Total: 4}, h.Operands)
	assert.Equal(t, 7.0, h.Length)
	assert.Equal(t, 5.0, h.Vocabulary)
	assert.InDelta(t, 4.0/3.0, h.Difficulty, 1e-9)
	assert.InDelta(t, 7*math.Log2(5), h.Volume, 1e-9)
	assert.InDelta(t, h.Difficulty*h.Volume, h.Effort, 1e-9)
	assert.InDelta(t, h.Volume/3000, h.Bugs, 1e-9)
	assert.InDelta(t, h.Effort/18, h.Time, 1e-9)
}

func TestHalsteadMetricsEmpty(t *testing.T) {
	h := newHalsteadCounter().metrics()
	assert.Equal(t, domain.HalsteadMetrics{}, h)
}

func TestMaintainabilityIndex(t *testing.T) {
	tests := []struct {
		name     string
		effort   float64
		cyclo    float64
		logical  float64
		rescale  bool
		expected float64
	}{
		{"trivial", 0, 1, 1, false, 171},
		{"trivial rescaled", 0, 1, 1, true, 100},
		{"typical", 1000, 2, 10, false, 171 - 3.42*math.Log(1000) - 0.23*math.Log(2) - 16.2*math.Log(10)},
		{"huge rescaled floors at zero", 1e30, 100, 1e6, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maintainabilityIndex(tt.effort, tt.cyclo, tt.logical, tt.rescale)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestAggregateMethods(t *testing.T) {
	methods := []domain.MethodReport{
		{Metrics: domain.Metrics{Cyclomatic: 1, Sloc: domain.SlocMetrics{Physical: 3, Logical: 2}, ParamCount: 1}},
		{Metrics: domain.Metrics{Cyclomatic: 4, Sloc: domain.SlocMetrics{Physical: 9, Logical: 5}, ParamCount: 2}},
	}

	sum, mean := aggregateMethods(methods)
	assert.Equal(t, 5.0, sum.Cyclomatic)
	assert.Equal(t, 12.0, sum.Sloc.Physical)
	assert.Equal(t, 2.5, mean.Cyclomatic)
	assert.Equal(t, 3.5, mean.Sloc.Logical)
	assert.Equal(t, 1.5, mean.ParamCount)

	sum, mean = aggregateMethods(nil)
	assert.Equal(t, domain.Metrics{}, sum)
	assert.Equal(t, domain.Metrics{}, mean)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 108.362, round(108.36151))
	assert.Equal(t, 0.057, round(0.05651))
	assert.Equal(t, -1.235, round(-1.23451))
	assert.Equal(t, 2.0, round(2))
}

func TestProjectAverage(t *testing.T) {
	modules := []domain.ModuleReport{
		{Maintainability: 100, MethodAverage: domain.Metrics{Cyclomatic: 2}},
		{Maintainability: 50, MethodAverage: domain.Metrics{Cyclomatic: 5}},
	}
	avg := projectAverage(modules)
	assert.Equal(t, 75.0, avg.Maintainability)
	assert.Equal(t, 3.5, avg.MethodAverage.Cyclomatic)

	assert.Equal(t, domain.ModuleAverage{}, projectAverage(nil))
}
