package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microlearning-go/internal/config"
	"microlearning-go/internal/extractor"
	"microlearning-go/internal/generator"
	"microlearning-go/internal/mock"
	"microlearning-go/internal/model"
	"microlearning-go/internal/pipeline"
	"microlearning-go/internal/repository"
	"microlearning-go/internal/service"
	"microlearning-go/pkg/database"
	"microlearning-go/pkg/storage"
)

const goodScript = `{"summary":"Cells make energy.","slides":[{"title":"Mitochondria","content":"The powerhouse."},{"title":"ATP","content":"Energy currency."}]}`

type testServer struct {
	router     *gin.Engine
	llm        *mock.MockLLM
	fs         afero.Fs
	fileRepo   repository.FileRepository
	videoRepo  repository.VideoRepository
	dispatcher *pipeline.AsyncDispatcher
}

func newTestServer(t *testing.T, llmResponse string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DatabaseDriverSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "handler.db")},
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	fs := afero.NewMemMapFs()
	store, err := storage.NewLocalStore(fs, "uploads")
	require.NoError(t, err)

	s := &testServer{
		llm:       &mock.MockLLM{Response: llmResponse},
		fs:        fs,
		fileRepo:  repository.NewFileRepository(db),
		videoRepo: repository.NewVideoRepository(db),
	}
	proc := pipeline.NewProcessor(store, extractor.New(nil), generator.New(s.llm), s.fileRepo)
	s.dispatcher = pipeline.NewAsyncDispatcher(proc)

	uploadSvc := service.NewUploadService(store, s.fileRepo, s.dispatcher)
	fileSvc := service.NewFileService(s.fileRepo, s.videoRepo)
	s.router = NewRouter(NewUploadHandler(uploadSvc), NewFileHandler(fileSvc), []string{"*"})

	t.Cleanup(func() {
		s.dispatcher.Wait()
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return s
}

func (s *testServer) upload(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

type statusBody struct {
	FileID    uint            `json:"file_id"`
	Filename  string          `json:"filename"`
	Status    string          `json:"status"`
	Script    *model.Script   `json:"script"`
	CreatedAt string          `json:"created_at"`
	Videos    []model.Video   `json:"videos"`
	Raw       json.RawMessage `json:"-"`
}

func (s *testServer) status(t *testing.T, id uint) statusBody {
	t.Helper()
	w := s.get(fmt.Sprintf("/status/%d", id))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body statusBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	body.Raw = w.Body.Bytes()
	return body
}

func (s *testServer) waitTerminal(t *testing.T, id uint) statusBody {
	t.Helper()
	var body statusBody
	require.Eventually(t, func() bool {
		body = s.status(t, id)
		return model.IsTerminal(body.Status)
	}, 5*time.Second, 10*time.Millisecond)
	return body
}

func decodeUpload(t *testing.T, w *httptest.ResponseRecorder) service.UploadResult {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res service.UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestUpload_TXTBecomesScriptReady(t *testing.T) {
	s := newTestServer(t, "```json\n"+goodScript+"\n```")

	res := decodeUpload(t, s.upload(t, "biology.txt", []byte("Mitochondria produce ATP.")))
	assert.NotZero(t, res.FileID)
	assert.Equal(t, "biology.txt", res.Filename)
	assert.Equal(t, model.FileStatusProcessing, res.Status)

	body := s.waitTerminal(t, res.FileID)
	assert.Equal(t, model.FileStatusScriptReady, body.Status)
	assert.Equal(t, "biology.txt", body.Filename)
	require.NotNil(t, body.Script)
	assert.Equal(t, "Cells make energy.", body.Script.Summary)
	assert.Len(t, body.Script.Slides, 2)
	assert.NotNil(t, body.Videos)
	assert.Empty(t, body.Videos)
	assert.NotEmpty(t, body.CreatedAt)

	require.Equal(t, 1, s.llm.Calls())
	assert.Contains(t, s.llm.Prompts[0], "Mitochondria produce ATP.")

	// 没有写入时重复查询结果一致
	again := s.status(t, res.FileID)
	assert.JSONEq(t, string(body.Raw), string(again.Raw))
}

func TestUpload_BlankFileFailsWithoutAI(t *testing.T) {
	s := newTestServer(t, goodScript)

	res := decodeUpload(t, s.upload(t, "empty.txt", []byte("  \n\n\t ")))
	body := s.waitTerminal(t, res.FileID)

	assert.Equal(t, model.FileStatusScriptFailed, body.Status)
	assert.Nil(t, body.Script)
	assert.Contains(t, string(body.Raw), `"script":null`)
	assert.Equal(t, 0, s.llm.Calls())
}

func TestUpload_BadAIResponsesFail(t *testing.T) {
	for name, resp := range map[string]string{
		"malformed":    `{"summary": "oops"`,
		"missing keys": `{"title":"x"}`,
		"empty slides": `{"summary":"x","slides":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t, resp)
			res := decodeUpload(t, s.upload(t, "a.txt", []byte("real content")))

			body := s.waitTerminal(t, res.FileID)
			assert.Equal(t, model.FileStatusScriptFailed, body.Status)
			assert.Nil(t, body.Script)
		})
	}
}

func TestUpload_UnreadablePDFFails(t *testing.T) {
	s := newTestServer(t, goodScript)

	res := decodeUpload(t, s.upload(t, "Slides.PDF", []byte("this is not a pdf")))
	body := s.waitTerminal(t, res.FileID)
	assert.Equal(t, model.FileStatusScriptFailed, body.Status)
	assert.Equal(t, 0, s.llm.Calls())
}

func TestUpload_RejectsUnsupportedExtension(t *testing.T) {
	s := newTestServer(t, goodScript)

	w := s.upload(t, "image.png", []byte("\x89PNG"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid file type '.png'. Only .txt and .pdf files are allowed."}`, w.Body.String())

	list := s.get("/files")
	require.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, `{"files":[]}`, list.Body.String())

	entries, err := afero.ReadDir(s.fs, "uploads")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_MissingFileField(t *testing.T) {
	s := newTestServer(t, goodScript)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListFiles_NewestFirst(t *testing.T) {
	s := newTestServer(t, goodScript)

	first := decodeUpload(t, s.upload(t, "first.txt", []byte("one")))
	second := decodeUpload(t, s.upload(t, "second.pdf", []byte("%PDF")))
	s.waitTerminal(t, first.FileID)
	s.waitTerminal(t, second.FileID)

	w := s.get("/files")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Files []map[string]any `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Files, 2)
	assert.EqualValues(t, second.FileID, body.Files[0]["id"])
	assert.EqualValues(t, first.FileID, body.Files[1]["id"])
	assert.Equal(t, "first.txt", body.Files[1]["original_filename"])
	assert.Regexp(t, `^[0-9a-f]{32}\.txt$`, body.Files[1]["filename"])
	for _, key := range []string{"id", "filename", "original_filename", "status", "script_json", "created_at"} {
		assert.Contains(t, body.Files[0], key)
	}
}

func TestGetStatus_NotFoundAndBadID(t *testing.T) {
	s := newTestServer(t, goodScript)

	w := s.get("/status/12345")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"File with id 12345 not found."}`, w.Body.String())

	w = s.get("/status/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.get("/status/-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatus_IncludesVideos(t *testing.T) {
	s := newTestServer(t, goodScript)

	res := decodeUpload(t, s.upload(t, "a.txt", []byte("content")))
	s.waitTerminal(t, res.FileID)
	require.NoError(t, s.videoRepo.CreateVideo(context.Background(), &model.Video{FileID: res.FileID, Path: "videos/a.mp4"}))

	body := s.status(t, res.FileID)
	require.Len(t, body.Videos, 1)
	assert.Equal(t, "videos/a.mp4", body.Videos[0].Path)
	assert.Equal(t, model.VideoStatusPending, body.Videos[0].Status)
	assert.Equal(t, res.FileID, body.Videos[0].FileID)
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	s := newTestServer(t, goodScript)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
