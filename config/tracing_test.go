package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOTLPEndpoint(t *testing.T) {
	tests := []struct {
		raw  string
		want otlpEndpoint
	}{
		{"http://collector:4318", otlpEndpoint{hostPort: "collector:4318", path: "/v1/traces", insecure: true}},
		{"https://otel.example.com/custom/traces", otlpEndpoint{hostPort: "otel.example.com", path: "/custom/traces"}},
		{"collector:4318", otlpEndpoint{hostPort: "collector:4318", path: "/v1/traces", insecure: true}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseOTLPEndpoint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOTLPEndpoint_Rejects(t *testing.T) {
	for _, raw := range []string{"", "  ", "grpc://collector:4317", "collector:4318/v1/traces", "http://"} {
		_, err := parseOTLPEndpoint(raw)
		assert.Error(t, err, raw)
	}
}

func TestSamplerRatio(t *testing.T) {
	assert.Equal(t, 1.0, samplerRatio(""))
	assert.Equal(t, 0.25, samplerRatio("0.25"))
	assert.Equal(t, 1.0, samplerRatio("1.5"))
	assert.Equal(t, 1.0, samplerRatio("abc"))
}

func TestSetupTracing_DisabledReturnsNil(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "false")

	shutdown, err := SetupTracing(nil)
	assert.NoError(t, err)
	assert.Nil(t, shutdown)
}
