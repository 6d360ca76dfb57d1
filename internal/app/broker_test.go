package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediochat/mediochat/internal/core"
)

// fakeSender records every frame the broker delivers to it.
type fakeSender struct {
	frames []core.Frame
	full   bool
}

func (f *fakeSender) TrySend(fr core.Frame) error {
	if f.full {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSender) Close() {}

func (f *fakeSender) events(t *testing.T) []map[string]string {
	t.Helper()
	out := make([]map[string]string, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]string
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func TestJoinAnnouncedToOthersOnly(t *testing.T) {
	b := NewBroker()
	a, bob := &fakeSender{}, &fakeSender{}

	b.Join("conn-a", a, "482913", "peer-a", "Dr. Ada Holt")
	b.Join("conn-b", bob, "482913", "peer-b", "Sam Reed")

	require.Len(t, a.frames, 1)
	ev := a.events(t)[0]
	assert.Equal(t, EventParticipantJoined, ev["type"])
	assert.Equal(t, "peer-b", ev["participantId"])
	assert.Equal(t, "Sam Reed", ev["displayName"])

	assert.Empty(t, bob.frames, "joiner must not hear its own join")
}

func TestMessageFanoutScopedToRoom(t *testing.T) {
	b := NewBroker()
	a, bb, c, d := &fakeSender{}, &fakeSender{}, &fakeSender{}, &fakeSender{}

	b.Join("conn-a", a, "111111", "peer-a", "A")
	b.Join("conn-b", bb, "111111", "peer-b", "B")
	b.Join("conn-c", c, "111111", "peer-c", "C")
	b.Join("conn-d", d, "222222", "peer-d", "D")

	before := len(bb.frames)
	b.Message("conn-a", "hello")

	require.Len(t, bb.frames, before+1)
	ev := bb.events(t)[len(bb.frames)-1]
	assert.Equal(t, EventMessage, ev["type"])
	assert.Equal(t, "hello", ev["text"])
	assert.Equal(t, "A", ev["senderDisplayName"], "sender name must come from the registry")

	assert.Equal(t, before+1, len(c.frames))
	for _, ev := range a.events(t) {
		assert.NotEqual(t, EventMessage, ev["type"], "sender must not receive its own message")
	}
	for _, ev := range d.events(t) {
		assert.NotEqual(t, EventMessage, ev["type"], "other rooms must not receive the message")
	}
}

func TestMessageBeforeJoinDropped(t *testing.T) {
	b := NewBroker()
	a, bb := &fakeSender{}, &fakeSender{}

	b.Join("conn-a", a, "482913", "peer-a", "A")
	b.Message("conn-ghost", "boo")
	b.Message("conn-a", "")

	assert.Empty(t, a.frames, "nothing may be delivered for unjoined or empty messages")
	assert.Empty(t, bb.frames)
}

func TestDisconnectAnnouncesLeaveOnce(t *testing.T) {
	b := NewBroker()
	a, bb := &fakeSender{}, &fakeSender{}

	b.Join("conn-a", a, "482913", "peer-a", "A")
	b.Join("conn-b", bb, "482913", "peer-b", "B")

	before := len(a.frames)
	b.Disconnect("conn-b")
	b.Disconnect("conn-b")

	require.Len(t, a.frames, before+1, "exactly one leave per join")
	ev := a.events(t)[len(a.frames)-1]
	assert.Equal(t, EventParticipantLeft, ev["type"])
	assert.Equal(t, "peer-b", ev["participantId"])
	assert.Equal(t, "B", ev["displayName"])
	assert.Equal(t, 1, b.RoomSize("482913"))
}

func TestDisconnectBeforeJoinSilent(t *testing.T) {
	b := NewBroker()
	a := &fakeSender{}

	b.Join("conn-a", a, "482913", "peer-a", "A")
	b.Disconnect("conn-never-joined")

	assert.Empty(t, a.frames)
}

func TestDuplicateJoinIgnored(t *testing.T) {
	b := NewBroker()
	a, bb := &fakeSender{}, &fakeSender{}

	b.Join("conn-a", a, "482913", "peer-a", "A")
	b.Join("conn-b", bb, "482913", "peer-b", "B")
	before := len(a.frames)

	b.Join("conn-b", bb, "999999", "peer-x", "X")

	assert.Len(t, a.frames, before, "second join from the same connection is dropped")
	assert.Equal(t, 0, b.RoomSize("999999"))

	b.Message("conn-b", "still here")
	ev := a.events(t)[len(a.frames)-1]
	assert.Equal(t, "B", ev["senderDisplayName"], "identity stays the one recorded at first join")
}

func TestBackpressuredRecipientSkipped(t *testing.T) {
	b := NewBroker()
	a, slow, c := &fakeSender{}, &fakeSender{full: true}, &fakeSender{}

	b.Join("conn-a", a, "482913", "peer-a", "A")
	b.Join("conn-slow", slow, "482913", "peer-s", "S")
	b.Join("conn-c", c, "482913", "peer-c", "C")

	before := len(c.frames)
	b.Message("conn-a", "hello")

	assert.Empty(t, slow.frames)
	assert.Len(t, c.frames, before+1, "a slow recipient must not block the others")
}

func TestPerSenderMessageOrder(t *testing.T) {
	b := NewBroker()
	a, bb := &fakeSender{}, &fakeSender{}

	b.Join("conn-a", a, "482913", "peer-a", "A")
	b.Join("conn-b", bb, "482913", "peer-b", "B")

	b.Message("conn-a", "first")
	b.Message("conn-a", "second")
	b.Message("conn-a", "third")

	var texts []string
	for _, ev := range bb.events(t) {
		if ev["type"] == EventMessage {
			texts = append(texts, ev["text"])
		}
	}
	assert.Equal(t, []string{"first", "second", "third"}, texts)
}
