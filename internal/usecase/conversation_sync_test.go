package usecase

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisanx/internal/domain/entity"
)

type stubWatches struct {
	started []string
	handles map[string]*watchHandle
}

func (s *stubWatches) start(id string) *watchHandle {
	if s.handles == nil {
		s.handles = map[string]*watchHandle{}
	}
	s.started = append(s.started, id)
	h := &watchHandle{domain: DomainMessages, scope: id, active: true, cancel: func() {}}
	s.handles[id] = h
	return h
}

func convs(ids ...string) []entity.Conversation {
	out := make([]entity.Conversation, len(ids))
	for i, id := range ids {
		out[i] = entity.Conversation{ID: id}
	}
	return out
}

func TestReconcileKeys(t *testing.T) {
	current := map[string]*conversationEntry{"a": {}, "b": {}}
	added, removed := reconcileKeys(current, []string{"b", "c", "c"})
	assert.Equal(t, []string{"c"}, added)
	assert.Equal(t, []string{"a"}, removed)
}

func TestConversationSync_KeepsMessagesOfRemainingConversations(t *testing.T) {
	sync := newConversationSync()
	watches := &stubWatches{}

	sync.apply(convs("a", "b"), watches.start)
	require.True(t, sync.setMessages("a", []entity.ChatMessage{{ID: "m1", Text: "hi"}}))

	// reordered and with b gone
	added, removed := sync.apply(convs("c", "a"), watches.start)
	assert.Equal(t, []string{"c"}, added)
	assert.Equal(t, []string{"b"}, removed)

	sort.Strings(watches.started)
	assert.Equal(t, []string{"a", "b", "c"}, watches.started, "a is never restarted")
	assert.False(t, watches.handles["b"].active)
	assert.True(t, watches.handles["a"].active)

	view := sync.view()
	require.Len(t, view, 2)
	assert.Equal(t, "c", view[0].ID)
	assert.Equal(t, "a", view[1].ID)
	require.Len(t, view[1].Messages, 1)
	assert.Equal(t, "hi", view[1].Messages[0].Text)

	assert.False(t, sync.setMessages("b", nil), "late messages for a dropped conversation are ignored")
}

func TestConversationSync_CloseAll(t *testing.T) {
	sync := newConversationSync()
	watches := &stubWatches{}
	sync.apply(convs("a", "b"), watches.start)

	sync.closeAll()
	assert.Empty(t, sync.view())
	for _, h := range watches.handles {
		assert.False(t, h.active)
	}
}
