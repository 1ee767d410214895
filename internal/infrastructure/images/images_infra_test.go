package images

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memImageRepo struct {
	mu        sync.Mutex
	files     map[string][]byte
	deleteErr error
	deletes   int
}

func newMemImageRepo() *memImageRepo {
	return &memImageRepo{files: make(map[string][]byte)}
}

func (m *memImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[image.Name] = image.Data
	return image.Name, nil
}

func (m *memImageRepo) Open(_ context.Context, name string) (*domain.ImageObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, e.ErrImageNotFound
	}
	return &domain.ImageObject{ReadSeekCloser: nopCloser{strings.NewReader(string(data))}, Name: name, Size: int64(len(data))}, nil
}

func (m *memImageRepo) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.files[name]; !ok {
		return e.ErrImageNotFound
	}
	delete(m.files, name)
	return nil
}

func (m *memImageRepo) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *memImageRepo) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

type nopCloser struct{ io.ReadSeeker }

func (nopCloser) Close() error { return nil }

func newInfra(repo usecase.ImageRepository) *ImagesInfrastructure {
	infra := NewImagesInfrastructure(repo, "http://localhost:3001/", logger.Nop{}, context.Background())
	infra.now = func() time.Time { return time.UnixMilli(1700000000000) }
	infra.backoff = time.Millisecond
	return infra
}

func TestSaveImage(t *testing.T) {
	repo := newMemImageRepo()
	infra := newInfra(repo)

	url, err := infra.SaveImage(context.Background(), usecase.NewProductImage([]byte("x"), "image/png", 1, "my phone.png"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001/uploads/1700000000000-my-phone.png", url)
	assert.True(t, repo.has("1700000000000-my-phone.png"))

	obj, err := infra.OpenImage(context.Background(), "1700000000000-my-phone.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1), obj.Size)
}

func TestSaveImage_UnsupportedType(t *testing.T) {
	infra := newInfra(newMemImageRepo())

	_, err := infra.SaveImage(context.Background(), usecase.NewProductImage([]byte("x"), "application/pdf", 1, "doc.pdf"))

	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(42)

	assert.Equal(t, "42-photo.jpg", StoredName(now, "photo.jpg", "jpg"))
	assert.Equal(t, "42-photo.png", StoredName(now, "photo", "png"))
	assert.Equal(t, "42-passwd.webp", StoredName(now, "../../etc/passwd", "webp"))
	assert.Equal(t, "42-image.png", StoredName(now, "", "png"))
	assert.Equal(t, "42-evil.png", StoredName(now, `C:\tmp\evil.png`, "png"))
}

func TestNameFromURL(t *testing.T) {
	name, ok := NameFromURL("http://localhost:3001/uploads/1700000000000-a.png")
	assert.True(t, ok)
	assert.Equal(t, "1700000000000-a.png", name)

	name, ok = NameFromURL("https://cdn.example.com/uploads/1-my%20file.png")
	assert.True(t, ok)
	assert.Equal(t, "1-my file.png", name)

	_, ok = NameFromURL("")
	assert.False(t, ok)
}

func TestRemoveImage(t *testing.T) {
	repo := newMemImageRepo()
	infra := newInfra(repo)
	url, err := infra.SaveImage(context.Background(), usecase.NewProductImage([]byte("x"), "image/png", 1, "a.png"))
	require.NoError(t, err)

	infra.RemoveImage(url)
	require.NoError(t, infra.WaitForCleanup(context.Background()))

	assert.False(t, repo.has("1700000000000-a.png"))
}

func TestRemoveImage_MissingFileIsNotRetried(t *testing.T) {
	repo := newMemImageRepo()
	infra := newInfra(repo)

	infra.RemoveImage("http://localhost:3001/uploads/missing.png")
	require.NoError(t, infra.WaitForCleanup(context.Background()))

	assert.Equal(t, 1, repo.deletes)
}

func TestRemoveImage_RetriesThenGivesUp(t *testing.T) {
	repo := newMemImageRepo()
	repo.deleteErr = errors.New("disk busy")
	infra := newInfra(repo)

	infra.RemoveImage("http://localhost:3001/uploads/a.png")
	require.NoError(t, infra.WaitForCleanup(context.Background()))

	assert.Equal(t, deleteAttempts, repo.deletes)
}

type staticURLs []string

func (s staticURLs) ImageURLs(context.Context) ([]string, error) { return s, nil }

func TestJanitor_Sweep(t *testing.T) {
	repo := newMemImageRepo()
	now := time.UnixMilli(1700000000000)
	old := now.Add(-2 * time.Hour).UnixMilli()
	fresh := now.Add(-time.Minute).UnixMilli()

	for _, name := range []string{
		StoredName(time.UnixMilli(old), "used.png", ""),
		StoredName(time.UnixMilli(old), "orphan.png", ""),
		StoredName(time.UnixMilli(fresh), "uploading.png", ""),
		"legacy.png",
	} {
		_, err := repo.Upload(context.Background(), domain.NewImage(name, []byte("x"), "image/png"))
		require.NoError(t, err)
	}

	infra := newInfra(repo)
	used := infra.URL(StoredName(time.UnixMilli(old), "used.png", ""))
	j := NewJanitor(repo, staticURLs{used}, logger.Nop{})
	j.now = func() time.Time { return now }

	n, err := j.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	names, _ := repo.List(context.Background())
	assert.NotContains(t, names, StoredName(time.UnixMilli(old), "orphan.png", ""))
	assert.Len(t, names, 3)
}
