package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerlabs/chat-gateway/internal/model"
)

func userMsg(id, text string) model.Message {
	return model.Message{ID: id, Sender: model.SenderUser, Text: text, Timestamp: time.Now()}
}

func modelMsg(id, text string) model.Message {
	return model.Message{ID: id, Sender: model.SenderModel, Text: text, Timestamp: time.Now()}
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := New()
	s.Append(userMsg("a", "first"))
	s.Append(modelMsg("b", ""))
	s.Append(userMsg("c", "second"))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "a", msgs[0].ID)
	assert.Equal(t, "b", msgs[1].ID)
	assert.Equal(t, "c", msgs[2].ID)
}

func TestStore_UpdateTextReplacesWholesale(t *testing.T) {
	s := New()
	s.Append(modelMsg("m1", ""))

	require.NoError(t, s.UpdateText("m1", "Hel", false))
	require.NoError(t, s.UpdateText("m1", "Hello", false))

	msgs := s.Messages()
	assert.Equal(t, "Hello", msgs[0].Text)
	assert.False(t, msgs[0].IsError)
}

func TestStore_UpdateTextMarkError(t *testing.T) {
	s := New()
	s.Append(modelMsg("m1", "partial"))

	require.NoError(t, s.UpdateText("m1", "failed", true))

	msgs := s.Messages()
	assert.Equal(t, "failed", msgs[0].Text)
	assert.True(t, msgs[0].IsError)
}

func TestStore_UserMessagesAreImmutable(t *testing.T) {
	s := New()
	s.Append(userMsg("u1", "hello"))

	err := s.UpdateText("u1", "tampered", false)
	require.ErrorIs(t, err, ErrImmutableMessage)

	msgs := s.Messages()
	assert.Equal(t, "hello", msgs[0].Text)
}

func TestStore_UpdateTextUnknownID(t *testing.T) {
	s := New()
	err := s.UpdateText("missing", "x", false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ClearRequiresConfirmation(t *testing.T) {
	s := New()
	s.Append(userMsg("u1", "keep me"))

	err := s.Clear(false)
	require.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Clear(true))
	assert.Equal(t, 0, s.Len())
}

func TestStore_MessagesReturnsSnapshot(t *testing.T) {
	s := New()
	s.Append(modelMsg("m1", "original"))

	snapshot := s.Messages()
	snapshot[0].Text = "mutated copy"

	assert.Equal(t, "original", s.Messages()[0].Text)
}
