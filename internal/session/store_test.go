package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
)

func userMsg(content string) conversation.ChatMessage {
	return conversation.ChatMessage{Role: "user", Content: content}
}

func TestCreate_GeneratesID(t *testing.T) {
	store := NewStore(t.TempDir(), 50)

	sess := store.Create("")
	assert.NotEmpty(t, sess.SessionID)
	assert.False(t, sess.CreatedAt.IsZero())

	named := store.Create("my-session")
	assert.Equal(t, "my-session", named.SessionID)
}

func TestAppend_PersistsEveryTurn(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 50)
	sess := store.Create("s1")

	require.NoError(t, store.Append(userMsg("hello")))
	require.NoError(t, store.Append(conversation.ChatMessage{Role: "assistant", Content: "hi there"}))

	data, err := os.ReadFile(filepath.Join(dir, "s1.json"))
	require.NoError(t, err)

	var onDisk conversation.ChatSession
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, sess.SessionID, onDisk.SessionID)
	require.Len(t, onDisk.Messages, 2)
	assert.Equal(t, "hello", onDisk.Messages[0].Content)
	assert.False(t, onDisk.Messages[0].Timestamp.IsZero())
}

func TestAppend_TrimsToMaxHistory(t *testing.T) {
	store := NewStore(t.TempDir(), 3)
	store.Create("s1")

	for _, content := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, store.Append(userMsg(content)))
	}

	msgs := store.History(0)
	require.Len(t, msgs, 3)
	assert.Equal(t, "three", msgs[0].Content)
	assert.Equal(t, "five", msgs[2].Content)
}

func TestHistory_Limit(t *testing.T) {
	store := NewStore(t.TempDir(), 50)
	store.Create("s1")
	for _, content := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Append(userMsg(content)))
	}

	recent := store.History(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Content)
	assert.Equal(t, "d", recent[1].Content)

	assert.Len(t, store.History(0), 4)
	assert.Len(t, store.History(100), 4)
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 50)
	store.Create("s1")
	require.NoError(t, store.Append(userMsg("remember me")))

	fresh := NewStore(dir, 50)
	sess, err := fresh.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.SessionID)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "remember me", sess.Messages[0].Content)

	_, err = fresh.Load("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestList_SortedByRecency(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 50)

	store.Create("older")
	require.NoError(t, store.Append(userMsg("first session")))

	time.Sleep(10 * time.Millisecond)

	store.Create("newer")
	require.NoError(t, store.Append(userMsg(strings.Repeat("long preview text ", 10))))

	infos, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "newer", infos[0].SessionID)
	assert.Equal(t, "older", infos[1].SessionID)
	assert.Equal(t, 1, infos[0].Messages)
	assert.True(t, strings.HasSuffix(infos[0].Preview, "..."), "long previews are truncated")
	assert.Equal(t, "first session", infos[1].Preview)

	limited, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "newer", limited[0].SessionID)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 50)
	store.Create("s1")
	require.NoError(t, store.Save())

	require.NoError(t, store.Delete("s1"))
	_, err := os.Stat(filepath.Join(dir, "s1.json"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, store.Delete("s1"), ErrSessionNotFound)
}

func TestCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 50)

	stale := conversation.ChatSession{
		SessionID: "stale",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -40),
		UpdatedAt: time.Now().UTC().AddDate(0, 0, -40),
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.json"), data, 0o644))

	store.Create("active")
	require.NoError(t, store.Append(userMsg("still here")))

	removed, err := store.CleanupOlderThan(30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	infos, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "active", infos[0].SessionID)
}

func TestReset_StartsFreshSession(t *testing.T) {
	store := NewStore(t.TempDir(), 50)
	first := store.Create("s1")
	require.NoError(t, store.Append(userMsg("hello")))

	fresh := store.Reset()
	assert.NotEqual(t, first.SessionID, fresh.SessionID)
	assert.Empty(t, store.History(0))
}
