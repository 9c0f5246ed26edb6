package cachekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNormalizesCase(t *testing.T) {
	a := New("App", []string{"PROD"}, "Main")
	b := New("app", []string{"prod"}, "main")
	assert.Equal(t, a, b)
	assert.Equal(t, a.String(), b.String())
}

func TestStringFormat(t *testing.T) {
	k := New("myapp", []string{"dev", "local"}, "main")
	assert.Equal(t, "myapp:dev,local:main", k.String())
}

func TestNewDropsEmptyProfiles(t *testing.T) {
	k := New("myapp", []string{"dev", "", "  "}, "main")
	assert.Equal(t, "myapp:dev:main", k.String())
}
