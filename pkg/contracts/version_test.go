package contracts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersionString(t *testing.T) {
	s := GetFullVersionString()
	assert.True(t, strings.HasPrefix(s, "fxcpi v"+Version))
	assert.Contains(t, s, "data "+DataFormatVersion)
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
}
