package nats

import (
	"testing"

	"lola-discovery-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "lola.events.SESSION_COMPLETED", Subject(events.SessionCompleted))
}
