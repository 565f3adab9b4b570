package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "imsse-test", "")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
