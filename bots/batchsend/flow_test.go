package batchsend

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "relaybot/core/config"
	"relaybot/store"

	tele "gopkg.in/telebot.v4"
)

func TestExtractFileDocument(t *testing.T) {
	msg := &tele.Message{
		Document: &tele.Document{
			File:     tele.File{FileID: "doc-1", FileSize: 2048},
			FileName: "report.pdf",
		},
	}
	f, ok := extractFile(msg)
	require.True(t, ok)
	assert.Equal(t, "document", f.Kind)
	assert.Equal(t, "report.pdf", f.Name)
	assert.Equal(t, int64(2048), f.Size)
}

func TestExtractFilePhotoGetsDefaultName(t *testing.T) {
	msg := &tele.Message{
		Photo: &tele.Photo{File: tele.File{FileID: "ph-1", FileSize: 512}},
	}
	f, ok := extractFile(msg)
	require.True(t, ok)
	assert.Equal(t, "photo", f.Kind)
	assert.Equal(t, "photo.jpg", f.Name)
}

func TestExtractFileVideoKeepsDuration(t *testing.T) {
	msg := &tele.Message{
		Video: &tele.Video{
			File:     tele.File{FileID: "vid-1", FileSize: 4096},
			Duration: 75,
		},
	}
	f, ok := extractFile(msg)
	require.True(t, ok)
	assert.Equal(t, "video", f.Kind)
	assert.Equal(t, "video.mp4", f.Name, "missing name falls back to default")
	assert.Equal(t, 75, f.Duration)
}

func TestExtractFileRejectsTextOnly(t *testing.T) {
	_, ok := extractFile(&tele.Message{Text: "hello"})
	assert.False(t, ok)
	_, ok = extractFile(nil)
	assert.False(t, ok)
}

func TestLinkTextIncludesDurationForVideosOnly(t *testing.T) {
	doc := collectedFile{Kind: "document", Label: "specs", Size: 2048}
	assert.Equal(t, "specs (Size: 2.00 KB)", linkText(doc))

	vid := collectedFile{Kind: "video", Label: "talk", Size: 1024 * 1024, Duration: 3661}
	assert.Equal(t, "talk (Size: 1.00 MB, Duration: 01:01:01)", linkText(vid))

	unknown := collectedFile{Kind: "document", Label: "blob"}
	assert.Equal(t, "blob (Size: Unknown)", linkText(unknown))
}

func TestCommandStripsBotMention(t *testing.T) {
	assert.Equal(t, "/done", command("/done"))
	assert.Equal(t, "/done", command("/done@relay_bot"))
	assert.Equal(t, "", command("not a command"))
}

// fakeAPI answers Send calls in-process. Media whose file id matches
// failFileID is rejected, everything else succeeds with increasing
// message ids addressed to the requested chat.
type fakeAPI struct {
	tele.API
	failFileID string
	nextID     int
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	var fileID string
	switch m := what.(type) {
	case *tele.Document:
		fileID = m.FileID
	case *tele.Photo:
		fileID = m.FileID
	case *tele.Video:
		fileID = m.FileID
	}
	if fileID != "" && fileID == f.failFileID {
		return nil, errors.New("telegram: wrong file identifier (400)")
	}
	chatID, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	f.nextID++
	return &tele.Message{ID: f.nextID, Chat: &tele.Chat{ID: chatID}}, nil
}

// fakeContext carries one inbound update and records outbound text.
type fakeContext struct {
	tele.Context
	api    tele.API
	sender *tele.User
	chat   *tele.Chat
	msg    *tele.Message
	cb     *tele.Callback
	kv     map[string]interface{}
	sent   *[]string
}

func (f *fakeContext) Bot() tele.API            { return f.api }
func (f *fakeContext) Sender() *tele.User       { return f.sender }
func (f *fakeContext) Chat() *tele.Chat         { return f.chat }
func (f *fakeContext) Message() *tele.Message   { return f.msg }
func (f *fakeContext) Callback() *tele.Callback { return f.cb }
func (f *fakeContext) Update() tele.Update      { return tele.Update{Message: f.msg} }

func (f *fakeContext) Text() string {
	if f.msg == nil {
		return ""
	}
	return f.msg.Text
}

func (f *fakeContext) Get(key string) interface{}    { return f.kv[key] }
func (f *fakeContext) Set(key string, v interface{}) { f.kv[key] = v }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if text, ok := what.(string); ok {
		*f.sent = append(*f.sent, text)
	}
	return nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	st, err := store.OpenJSON(filepath.Join(dir, "groups.json"), filepath.Join(dir, "password.json"))
	require.NoError(t, err)
	return New(&coreconfig.Config{}, st)
}

func labelPrompts(sent []string) []string {
	var prompts []string
	for _, m := range sent {
		if strings.Contains(m, "enter a prefix") {
			prompts = append(prompts, m)
		}
	}
	return prompts
}

func TestBatchFlowPromptsEachFileAndReportsEveryOutcome(t *testing.T) {
	const userID = 77
	app := newTestApp(t)
	require.NoError(t, app.store.AddGroup(-100500, "Archive"))

	ok, err := app.auth.Login(userID, store.DefaultPassword)
	require.NoError(t, err)
	require.True(t, ok)

	var sent []string
	api := &fakeAPI{failFileID: "doc-2"}
	user := &tele.User{ID: userID}
	chat := &tele.Chat{ID: userID, Type: tele.ChatPrivate}
	newCtx := func(msg *tele.Message, cb *tele.Callback) tele.Context {
		return &fakeContext{
			api: api, sender: user, chat: chat, msg: msg, cb: cb,
			kv: map[string]interface{}{}, sent: &sent,
		}
	}

	app.sessions.Begin(userID, stateCollecting)
	docs := []*tele.Message{
		{Document: &tele.Document{File: tele.File{FileID: "doc-1", FileSize: 10}, FileName: "a.pdf"}},
		{Document: &tele.Document{File: tele.File{FileID: "doc-2", FileSize: 20}, FileName: "b.pdf"}},
		{Document: &tele.Document{File: tele.File{FileID: "doc-3", FileSize: 30}, FileName: "c.pdf"}},
	}
	for _, msg := range docs {
		require.NoError(t, app.sessions.Dispatch(newCtx(msg, nil)))
	}

	require.NoError(t, app.sessions.Dispatch(newCtx(&tele.Message{Text: "/done"}, nil)))
	for _, label := range []string{"first", "-", "third"} {
		require.NoError(t, app.sessions.Dispatch(newCtx(&tele.Message{Text: label}, nil)))
	}

	prompts := labelPrompts(sent)
	require.Len(t, prompts, len(docs), "one label prompt per collected file")
	assert.Contains(t, prompts[0], "For file 1 (a.pdf)")
	assert.Contains(t, prompts[1], "For file 2 (b.pdf)")
	assert.Contains(t, prompts[2], "For file 3 (c.pdf)")

	s, active := app.sessions.Get(userID)
	require.True(t, active)
	require.Equal(t, stateSelectingTarget, s.State)
	assert.Equal(t, "first", s.Data.Files[0].Label)
	assert.Equal(t, "b.pdf", s.Data.Files[1].Label, "dash keeps the original name")

	cb := &tele.Callback{Data: "\fbs_target|-100500"}
	require.NoError(t, app.selectTarget(newCtx(&tele.Message{}, cb)))

	summary := sent[len(sent)-1]
	lines := strings.Split(summary, "\n")
	require.Len(t, lines, len(docs)+1, "header plus one outcome line per file")
	assert.Equal(t, "Batch Send Completed:", lines[0])
	assert.Equal(t, "File 1 sent successfully.", lines[1])
	assert.Contains(t, lines[2], "File 2 error:")
	assert.Equal(t, "File 3 sent successfully.", lines[3])

	assert.False(t, app.sessions.InProgress(userID), "session ends after dispatch")
}

func TestBatchFlowCancelButtonEndsSession(t *testing.T) {
	const userID = 42
	app := newTestApp(t)

	var sent []string
	newCtx := func(cb *tele.Callback) tele.Context {
		return &fakeContext{
			api: &fakeAPI{}, sender: &tele.User{ID: userID},
			chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			msg:  &tele.Message{}, cb: cb,
			kv: map[string]interface{}{}, sent: &sent,
		}
	}

	app.sessions.Begin(userID, stateCollecting)
	require.NoError(t, app.cancelFromButton(newCtx(&tele.Callback{Data: "\fbs_cancel|cancel"})))
	assert.False(t, app.sessions.InProgress(userID))
	require.NotEmpty(t, sent)
	assert.Equal(t, "Operation cancelled.", sent[len(sent)-1])
}

func TestSendableRebuildsMediaKinds(t *testing.T) {
	doc, ok := sendable(collectedFile{Kind: "document", FileID: "d", Name: "a.txt"}).(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "Forwarded file: a.txt", doc.Caption)

	photo, ok := sendable(collectedFile{Kind: "photo", FileID: "p"}).(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "Forwarded photo", photo.Caption)

	video, ok := sendable(collectedFile{Kind: "video", FileID: "v"}).(*tele.Video)
	require.True(t, ok)
	assert.Equal(t, "Forwarded video", video.Caption)
}
