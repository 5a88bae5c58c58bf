package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkawano/kanshu/internal/inference"
)

func TestDirectionFlag(t *testing.T) {
	var flag DirectionFlag

	require.NoError(t, flag.Set("japanese"))
	assert.Equal(t, DirectionJapanese, flag)
	assert.Equal(t, inference.DirectionForeignFirst, flag.toInference())

	require.NoError(t, flag.Set("english"))
	assert.Equal(t, DirectionEnglish, flag)
	assert.Equal(t, inference.DirectionNativeFirst, flag.toInference())

	assert.Error(t, flag.Set("sideways"))
	assert.Equal(t, "english", flag.String())
}
