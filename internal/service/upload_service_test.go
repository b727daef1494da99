package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microlearning-go/internal/mock"
	"microlearning-go/internal/model"
)

var storedNameRe = regexp.MustCompile(`^[0-9a-f]{32}\.(txt|pdf)$`)

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr string
	}{
		{name: "notes.txt", want: ".txt"},
		{name: "Report.PDF", want: ".pdf"},
		{name: "archive.tar.TXT", want: ".txt"},
		{name: "photo.png", wantErr: "Invalid file type '.png'. Only .txt and .pdf files are allowed."},
		{name: "README", wantErr: "Invalid file type ''. Only .txt and .pdf files are allowed."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := ValidateExtension(tt.name)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedFileType))
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ext)
		})
	}
}

func TestUpload_Success(t *testing.T) {
	store := mock.NewMockFileStore()
	repo := mock.NewMockFileRepository()
	dispatcher := &mock.MockDispatcher{}
	svc := NewUploadService(store, repo, dispatcher)

	res, err := svc.Upload(context.Background(), "Lecture.PDF", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "Lecture.PDF", res.Filename)
	assert.Equal(t, model.FileStatusProcessing, res.Status)

	names := store.Names()
	require.Len(t, names, 1)
	assert.Regexp(t, storedNameRe, names[0])
	assert.True(t, strings.HasSuffix(names[0], ".pdf"))
	assert.Equal(t, []byte("%PDF-1.4"), store.Files[names[0]])

	rec, err := repo.GetFile(context.Background(), res.FileID)
	require.NoError(t, err)
	assert.Equal(t, names[0], rec.StoredName)
	assert.Equal(t, "Lecture.PDF", rec.OriginalName)
	assert.Equal(t, model.FileStatusProcessing, rec.Status)

	require.Len(t, dispatcher.Tasks, 1)
	assert.Equal(t, res.FileID, dispatcher.Tasks[0].FileID)
	assert.Equal(t, names[0], dispatcher.Tasks[0].StoredName)
}

func TestUpload_UniqueNames(t *testing.T) {
	store := mock.NewMockFileStore()
	svc := NewUploadService(store, mock.NewMockFileRepository(), &mock.MockDispatcher{})

	for i := 0; i < 20; i++ {
		_, err := svc.Upload(context.Background(), "same.txt", strings.NewReader("x"))
		require.NoError(t, err)
	}
	assert.Len(t, store.Names(), 20)
}

func TestUpload_RejectedLeavesNoTrace(t *testing.T) {
	store := mock.NewMockFileStore()
	repo := mock.NewMockFileRepository()
	dispatcher := &mock.MockDispatcher{}
	svc := NewUploadService(store, repo, dispatcher)

	_, err := svc.Upload(context.Background(), "virus.exe", strings.NewReader("MZ"))
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))

	files, err := repo.GetAllFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, store.Names())
	assert.Empty(t, dispatcher.Tasks)
}

func TestUpload_StorageFault(t *testing.T) {
	store := mock.NewMockFileStore()
	store.SaveErr = errors.New("no space left on device")
	repo := mock.NewMockFileRepository()
	svc := NewUploadService(store, repo, &mock.MockDispatcher{})

	_, err := svc.Upload(context.Background(), "a.txt", strings.NewReader("x"))
	require.Error(t, err)

	files, _ := repo.GetAllFiles(context.Background())
	assert.Empty(t, files)
}

func TestUpload_InsertFault(t *testing.T) {
	repo := mock.NewMockFileRepository()
	repo.InsertErr = errors.New("database is locked")
	dispatcher := &mock.MockDispatcher{}
	svc := NewUploadService(mock.NewMockFileStore(), repo, dispatcher)

	_, err := svc.Upload(context.Background(), "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.Empty(t, dispatcher.Tasks)
}

func TestUpload_DispatchFailureMarksFailed(t *testing.T) {
	repo := mock.NewMockFileRepository()
	dispatcher := &mock.MockDispatcher{Err: errors.New("kafka unavailable")}
	svc := NewUploadService(mock.NewMockFileStore(), repo, dispatcher)

	_, err := svc.Upload(context.Background(), "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka unavailable")

	files, err := repo.GetAllFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, model.FileStatusScriptFailed, files[0].Status)

	updates := repo.UpdatesFor(files[0].ID)
	require.Len(t, updates, 2)
	assert.Equal(t, model.FileStatusProcessing, updates[0].Status)
	assert.Equal(t, model.FileStatusScriptFailed, updates[1].Status)
}
