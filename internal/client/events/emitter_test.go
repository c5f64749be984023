package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitter_DeliversInOrder(t *testing.T) {
	var e Emitter[int]
	var got []string

	e.Subscribe(func(v int) { got = append(got, "a") })
	e.Subscribe(func(v int) { got = append(got, "b") })

	e.Fire(1)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestEmitter_NoReplay(t *testing.T) {
	var e Emitter[string]
	e.Fire("early")

	var got []string
	e.Subscribe(func(v string) { got = append(got, v) })
	e.Fire("late")

	assert.Equal(t, []string{"late"}, got)
}

func TestEmitter_Unsubscribe(t *testing.T) {
	var e Emitter[int]
	calls := 0
	unsub := e.Subscribe(func(int) { calls++ })

	e.Fire(1)
	unsub()
	unsub()
	e.Fire(2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.Len())
}

func TestEmitter_UnsubscribeDuringDelivery(t *testing.T) {
	var e Emitter[int]
	var second int

	var unsub func()
	unsub = e.Subscribe(func(int) { unsub() })
	e.Subscribe(func(v int) { second += v })

	e.Fire(1)
	e.Fire(2)

	assert.Equal(t, 3, second)
	assert.Equal(t, 1, e.Len())
}

func TestEmitter_NilPointerPayload(t *testing.T) {
	type user struct{ Email string }
	var e Emitter[*user]

	var got []*user
	e.Subscribe(func(u *user) { got = append(got, u) })

	e.Fire(&user{Email: "a@b.com"})
	e.Fire(nil)

	if assert.Len(t, got, 2) {
		assert.Equal(t, "a@b.com", got[0].Email)
		assert.Nil(t, got[1])
	}
}
