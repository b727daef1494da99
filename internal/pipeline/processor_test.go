package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microlearning-go/internal/extractor"
	"microlearning-go/internal/generator"
	"microlearning-go/internal/mock"
	"microlearning-go/internal/model"
	"microlearning-go/pkg/tasks"
)

const scriptResponse = "```json\n{\"summary\":\"Photosynthesis in brief.\",\"slides\":[{\"title\":\"Light\",\"content\":\"Plants capture light.\"},{\"title\":\"Sugar\",\"content\":\"They make glucose.\"}]}\n```"

type fixture struct {
	store *mock.MockFileStore
	repo  *mock.MockFileRepository
	llm   *mock.MockLLM
	proc  *Processor
}

func newFixture() *fixture {
	f := &fixture{
		store: mock.NewMockFileStore(),
		repo:  mock.NewMockFileRepository(),
		llm:   &mock.MockLLM{Response: scriptResponse},
	}
	f.proc = NewProcessor(f.store, extractor.New(nil), generator.New(f.llm), f.repo)
	return f
}

func (f *fixture) seed(name string, data []byte) tasks.ScriptTask {
	f.store.Files[name] = data
	id := f.repo.Seed(model.File{StoredName: name, OriginalName: name, Status: model.FileStatusProcessing})
	return tasks.ScriptTask{FileID: id, StoredName: name}
}

func TestProcess_ScriptReady(t *testing.T) {
	f := newFixture()
	task := f.seed("abc.txt", []byte("Plants turn light into sugar."))

	require.NoError(t, f.proc.Process(context.Background(), task))

	updates := f.repo.UpdatesFor(task.FileID)
	require.Len(t, updates, 1)
	assert.Equal(t, model.FileStatusScriptReady, updates[0].Status)
	require.NotNil(t, updates[0].ScriptJSON)

	var script model.Script
	require.NoError(t, json.Unmarshal([]byte(*updates[0].ScriptJSON), &script))
	assert.Equal(t, "Photosynthesis in brief.", script.Summary)
	assert.Len(t, script.Slides, 2)

	require.Equal(t, 1, f.llm.Calls())
	assert.Contains(t, f.llm.Prompts[0], "Plants turn light into sugar.")
}

func TestProcess_BlankTextSkipsGenerator(t *testing.T) {
	f := newFixture()
	task := f.seed("blank.txt", []byte("   \n\t  "))

	require.NoError(t, f.proc.Process(context.Background(), task))

	updates := f.repo.UpdatesFor(task.FileID)
	require.Len(t, updates, 1)
	assert.Equal(t, model.FileStatusScriptFailed, updates[0].Status)
	assert.Nil(t, updates[0].ScriptJSON)
	assert.Equal(t, 0, f.llm.Calls())
}

func TestProcess_GeneratorFailures(t *testing.T) {
	tests := []struct {
		name string
		llm  *mock.MockLLM
	}{
		{name: "llm error", llm: &mock.MockLLM{Err: errors.New("401 unauthorized")}},
		{name: "malformed json", llm: &mock.MockLLM{Response: "not json"}},
		{name: "missing keys", llm: &mock.MockLLM{Response: `{"summary":"x"}`}},
		{name: "empty slides", llm: &mock.MockLLM{Response: `{"summary":"x","slides":[]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.proc = NewProcessor(f.store, extractor.New(nil), generator.New(tt.llm), f.repo)
			task := f.seed("a.txt", []byte("some content"))

			require.NoError(t, f.proc.Process(context.Background(), task))

			updates := f.repo.UpdatesFor(task.FileID)
			require.Len(t, updates, 1)
			assert.Equal(t, model.FileStatusScriptFailed, updates[0].Status)
			assert.Nil(t, updates[0].ScriptJSON)
		})
	}
}

func TestProcess_UnsupportedExtension(t *testing.T) {
	f := newFixture()
	task := f.seed("weird.docx", []byte("hello"))

	require.NoError(t, f.proc.Process(context.Background(), task))

	updates := f.repo.UpdatesFor(task.FileID)
	require.Len(t, updates, 1)
	assert.Equal(t, model.FileStatusScriptFailed, updates[0].Status)
	assert.Equal(t, 0, f.llm.Calls())
}

func TestProcess_StorageFault(t *testing.T) {
	f := newFixture()
	task := f.seed("a.txt", []byte("hello"))
	f.store.ReadErr = errors.New("disk on fire")

	err := f.proc.Process(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	updates := f.repo.UpdatesFor(task.FileID)
	require.Len(t, updates, 1)
	assert.Equal(t, model.FileStatusScriptFailed, updates[0].Status)
}

func TestProcess_PanicEndsInFailed(t *testing.T) {
	f := newFixture()
	f.llm.Panic = "boom"
	task := f.seed("a.txt", []byte("hello"))

	err := f.proc.Process(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	updates := f.repo.UpdatesFor(task.FileID)
	require.Len(t, updates, 1)
	assert.Equal(t, model.FileStatusScriptFailed, updates[0].Status)
	assert.Nil(t, updates[0].ScriptJSON)
}

func TestProcess_UpdateErrorIsReturned(t *testing.T) {
	f := newFixture()
	task := f.seed("a.txt", []byte("hello"))
	f.repo.UpdateErr = errors.New("database is locked")

	err := f.proc.Process(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestProcess_IgnoresCancelledContextForFinalWrite(t *testing.T) {
	f := newFixture()
	task := f.seed("blank.txt", []byte(""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.proc.Process(ctx, task))
	require.Len(t, f.repo.UpdatesFor(task.FileID), 1)
}
