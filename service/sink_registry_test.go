package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/jsreport/domain"
)

func TestSinkRegistryNames(t *testing.T) {
	r := NewSinkRegistry(nil)
	assert.Equal(t, []string{"console", "json", "msgpack", "s3", "yaml"}, r.Names())
}

func TestSinkRegistryResolveNamed(t *testing.T) {
	r := NewSinkRegistry(&bytes.Buffer{})

	tests := []struct {
		name     string
		expected string
	}{
		{"console", SinkConsole},
		{"CONSOLE", SinkConsole},
		{" Json ", SinkJSON},
		{"yaml", SinkYAML},
		{"msgpack", SinkMsgpack},
		{"s3", SinkS3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := r.Resolve(domain.Named(tt.name))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sink.Name())
		})
	}
}

func TestSinkRegistryResolveUnknown(t *testing.T) {
	r := NewSinkRegistry(nil)

	_, err := r.Resolve(domain.Named("html"))
	var configErr *domain.ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "reporter", configErr.Field)
	assert.Equal(t, r.Names(), configErr.Accepted)
	assert.Contains(t, err.Error(), "html")
}

func TestSinkRegistryResolveInvokable(t *testing.T) {
	called := 0
	fn := func(context.Context, *domain.LeveledReport, domain.Configuration) error {
		called++
		return nil
	}

	sink, err := NewSinkRegistry(nil).Resolve(domain.Invokable(fn))
	require.NoError(t, err)
	assert.Equal(t, "function", sink.Name())

	require.NoError(t, sink.Emit(context.Background(), &domain.LeveledReport{}, domain.Configuration{}))
	assert.Equal(t, 1, called)
}

func TestSinkRegistryResolveAll(t *testing.T) {
	r := NewSinkRegistry(&bytes.Buffer{})

	sinks, err := r.ResolveAll([]domain.Reporter{domain.Named("console"), domain.Named("json")})
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	assert.Equal(t, SinkConsole, sinks[0].Name())
	assert.Equal(t, SinkJSON, sinks[1].Name())

	// Each resolution builds a fresh sink
	again, err := r.ResolveAll([]domain.Reporter{domain.Named("json")})
	require.NoError(t, err)
	assert.NotSame(t, sinks[1], again[0])

	_, err = r.ResolveAll([]domain.Reporter{domain.Named("json"), domain.Named("nope")})
	assert.Error(t, err)
}

func TestSinkRegistryResolveAllNamesFunctionsByPosition(t *testing.T) {
	fail := func(msg string) domain.SinkFunc {
		return func(context.Context, *domain.LeveledReport, domain.Configuration) error {
			return errors.New(msg)
		}
	}

	sinks, err := NewSinkRegistry(&bytes.Buffer{}).ResolveAll([]domain.Reporter{
		domain.Named("console"),
		domain.Invokable(fail("first")),
		domain.Invokable(fail("second")),
	})
	require.NoError(t, err)
	require.Len(t, sinks, 3)
	assert.Equal(t, "function#2", sinks[1].Name())
	assert.Equal(t, "function#3", sinks[2].Name())

	err = NewDispatcher().Dispatch(context.Background(), sinks, &domain.LeveledReport{Level: domain.LevelRaw, Raw: &domain.ProjectReport{}}, domain.Configuration{})
	var dispatchErr *domain.DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, []string{"function#2", "function#3"}, dispatchErr.FailedSinks())
}
