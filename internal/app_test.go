package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestOptions_GraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(options()...))
}
