package resources

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIcons_Embedded(t *testing.T) {
	for _, name := range []string{IconIdle, IconActive, IconPaused, IconBreak} {
		resource, err := Icon(name)
		require.NoError(t, err, name)
		require.Contains(t, string(resource.Content()), "<svg")
		require.Same(t, resource, MustIcon(name))
	}

	_, err := Icon("missing.svg")
	require.Error(t, err)
}
