package usecase

import (
	"artisanx/internal/domain/entity"
)

type conversationEntry struct {
	handle   *watchHandle
	messages []entity.ChatMessage
}

// conversationSync tracks one message watch per conversation in the
// membership result, keyed by conversation id.
type conversationSync struct {
	entries map[string]*conversationEntry
	order   []entity.Conversation
}

func newConversationSync() *conversationSync {
	return &conversationSync{entries: make(map[string]*conversationEntry)}
}

// reconcileKeys returns the ids to start and the ids to stop so that the
// tracked set equals desired.
func reconcileKeys(current map[string]*conversationEntry, desired []string) (added, removed []string) {
	want := make(map[string]bool, len(desired))
	for _, id := range desired {
		if want[id] {
			continue
		}
		want[id] = true
		if _, ok := current[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range current {
		if !want[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// apply installs a new membership snapshot. Conversations that stay keep
// their watch and buffered messages.
func (c *conversationSync) apply(convs []entity.Conversation, start func(id string) *watchHandle) (added, removed []string) {
	ids := make([]string, len(convs))
	for i, conv := range convs {
		ids[i] = conv.ID
	}

	added, removed = reconcileKeys(c.entries, ids)
	for _, id := range removed {
		c.entries[id].handle.close()
		delete(c.entries, id)
	}
	for _, id := range added {
		c.entries[id] = &conversationEntry{handle: start(id)}
	}
	c.order = convs
	return added, removed
}

// setMessages reports false for conversations no longer tracked.
func (c *conversationSync) setMessages(id string, msgs []entity.ChatMessage) bool {
	entry, ok := c.entries[id]
	if !ok {
		return false
	}
	entry.messages = msgs
	return true
}

func (c *conversationSync) view() []entity.Conversation {
	out := make([]entity.Conversation, 0, len(c.order))
	for _, conv := range c.order {
		if entry, ok := c.entries[conv.ID]; ok {
			conv.Messages = append([]entity.ChatMessage(nil), entry.messages...)
		}
		out = append(out, conv)
	}
	return out
}

func (c *conversationSync) closeAll() {
	for id, entry := range c.entries {
		entry.handle.close()
		delete(c.entries, id)
	}
	c.order = nil
}
