package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope_CloseReleasesAll(t *testing.T) {
	cars := NewSubject([]int{})
	user := NewSubject("")

	scope := &Scope{}
	scope.Add(cars.Subscribe(func([]int) {}))
	scope.Add(user.Subscribe(func(string) {}))
	assert.Equal(t, 2, scope.Len())

	scope.Close()

	assert.Equal(t, 0, cars.Subscribers())
	assert.Equal(t, 0, user.Subscribers())
	assert.Equal(t, 0, scope.Len())

	scope.Close()
}

func TestScope_AddAfterCloseUnsubscribesImmediately(t *testing.T) {
	s := NewSubject(0)
	scope := &Scope{}
	scope.Close()

	calls := 0
	scope.Add(s.Subscribe(func(int) { calls++ }))
	s.Publish(1)

	assert.Equal(t, 1, calls, "only the replayed value is seen")
	assert.Equal(t, 0, s.Subscribers())
}
