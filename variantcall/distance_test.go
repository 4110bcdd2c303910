package variantcall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJukesCantorDistance(t *testing.T) {
	assert.InDelta(t, 0.0, JukesCantorDistance(0), 1e-9)
	assert.Greater(t, JukesCantorDistance(0.1), 0.1)
}

func TestKimuraDistance(t *testing.T) {
	assert.InDelta(t, 0.0, KimuraDistance(0, 0), 1e-9)
}
