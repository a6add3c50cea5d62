package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatsCommandListsDecoders(t *testing.T) {
	stdout, err := executeCommand("formats")
	require.NoError(t, err)

	for _, format := range []string{"bmp", "gif", "jpeg", "png", "tiff", "webp"} {
		require.Contains(t, stdout, format)
	}
	require.Contains(t, stdout, "static and animated")
}
