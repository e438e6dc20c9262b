package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldir/internal/app/models"
	"github.com/yigit/schooldir/internal/app/models/dto"
	"github.com/yigit/schooldir/internal/pkg/apperrors"
	"github.com/yigit/schooldir/internal/pkg/filestorage"
	"github.com/yigit/schooldir/internal/pkg/imageproc"
	"github.com/yigit/schooldir/internal/pkg/validation"
)

// memoryStore is an in-memory SchoolStore enforcing unique emails.
type memoryStore struct {
	mu         sync.Mutex
	schools    []models.School
	lastFilter models.SchoolFilter

	existsErr error
	createErr error
	// hideExisting makes ExistsByEmail miss, simulating a concurrent insert.
	hideExisting bool
}

func (m *memoryStore) List(_ context.Context, f models.SchoolFilter) ([]models.School, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	out := make([]models.School, len(m.schools))
	copy(out, m.schools)
	return out, int64(len(out)), nil
}

func (m *memoryStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.hideExisting {
		return false, nil
	}
	for _, s := range m.schools {
		if s.EmailID == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) Create(_ context.Context, school *models.School) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, s := range m.schools {
		if s.EmailID == school.EmailID {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	school.ID = int64(len(m.schools) + 1)
	m.schools = append(m.schools, *school)
	return nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.schools)
}

type fixture struct {
	svc      SchoolService
	store    *memoryStore
	imageDir string
	tempDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	imageDir := filepath.Join(root, "public", "schoolImages")
	tempDir := filepath.Join(root, "public", "temp")

	storage, err := filestorage.NewLocalStorage(imageDir, "/schoolImages", tempDir)
	require.NoError(t, err)

	store := &memoryStore{}
	return &fixture{
		svc:      NewSchoolService(store, storage, imageproc.NewJPEGTranscoder()),
		store:    store,
		imageDir: imageDir,
		tempDir:  tempDir,
	}
}

func (f *fixture) files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func validRequest() *dto.CreateSchoolRequest {
	return &dto.CreateSchoolRequest{
		Name:    "Green Valley School",
		Address: "12 Park Road",
		City:    "Pune",
		State:   "Maharashtra",
		Contact: "9876543210",
		EmailID: "office@greenvalley.edu",
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 40, G: 120, B: 200, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func upload(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func requireKind(t *testing.T, err, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	assert.Equal(t, message, apperrors.Message(err, ""))
}

func TestCreateSchool_ValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(r *dto.CreateSchoolRequest)
		message string
	}{
		{"missing name", func(r *dto.CreateSchoolRequest) { r.Name = "" }, validation.MsgAllFieldsRequired},
		{"blank city", func(r *dto.CreateSchoolRequest) { r.City = "   " }, validation.MsgAllFieldsRequired},
		{"missing email and bad contact", func(r *dto.CreateSchoolRequest) { r.EmailID = ""; r.Contact = "12" }, validation.MsgAllFieldsRequired},
		{"email without at", func(r *dto.CreateSchoolRequest) { r.EmailID = "office.greenvalley.edu" }, validation.MsgInvalidEmail},
		{"email without tld", func(r *dto.CreateSchoolRequest) { r.EmailID = "office@greenvalley" }, validation.MsgInvalidEmail},
		{"email with space", func(r *dto.CreateSchoolRequest) { r.EmailID = "of fice@green.edu" }, validation.MsgInvalidEmail},
		{"bad email wins over bad contact", func(r *dto.CreateSchoolRequest) { r.EmailID = "nope"; r.Contact = "12" }, validation.MsgInvalidEmail},
		{"contact too short", func(r *dto.CreateSchoolRequest) { r.Contact = "123456" }, validation.MsgInvalidContact},
		{"contact too long", func(r *dto.CreateSchoolRequest) { r.Contact = "1234567890123456" }, validation.MsgInvalidContact},
		{"contact with letters", func(r *dto.CreateSchoolRequest) { r.Contact = "98765abc10" }, validation.MsgInvalidContact},
		{"contact with plus", func(r *dto.CreateSchoolRequest) { r.Contact = "+919876543210" }, validation.MsgInvalidContact},
		{"short name", func(r *dto.CreateSchoolRequest) { r.Name = "A" }, validation.MsgNameTooShort},
		{"short address", func(r *dto.CreateSchoolRequest) { r.Address = "Rd 1" }, validation.MsgAddressTooShort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			tc.mutate(req)

			school, err := f.svc.CreateSchool(context.Background(), req, upload(t, "photo.png", pngBytes(t, 10, 10)))
			assert.Nil(t, school)
			requireKind(t, err, apperrors.ErrValidationFailed, tc.message)

			assert.Zero(t, f.store.count())
			assert.Empty(t, f.files(t, f.imageDir))
			assert.Empty(t, f.files(t, f.tempDir))
		})
	}
}

func TestCreateSchool_ContactBounds(t *testing.T) {
	for _, contact := range []string{"1234567", "123456789012345", "0123456789"} {
		t.Run(contact, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			req.Contact = contact

			_, err := f.svc.CreateSchool(context.Background(), req, upload(t, "photo.png", pngBytes(t, 10, 10)))
			require.NoError(t, err)
		})
	}
}

func TestCreateSchool_ImageRequired(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSchool(context.Background(), validRequest(), nil)
	requireKind(t, err, apperrors.ErrValidationFailed, MsgImageRequired)
	assert.Zero(t, f.store.count())
}

func TestCreateSchool_NonImageUpload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSchool(context.Background(), validRequest(), upload(t, "notes.png", []byte("definitely not a picture")))
	requireKind(t, err, apperrors.ErrProcessingFailed, "failed to process image")

	assert.Zero(t, f.store.count())
	assert.Empty(t, f.files(t, f.imageDir))
	assert.Empty(t, f.files(t, f.tempDir))
}

func TestCreateSchool_Success(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Name = "  Green Valley School  "

	school, err := f.svc.CreateSchool(context.Background(), req, upload(t, "Photo.PNG", pngBytes(t, 2560, 1000)))
	require.NoError(t, err)

	assert.Equal(t, int64(1), school.ID)
	assert.Equal(t, "Green Valley School", school.Name)
	assert.Equal(t, int64(9876543210), school.Contact)
	assert.Regexp(t, `^/schoolImages/\d+-[0-9a-f]{12}\.jpg$`, school.Image)

	files := f.files(t, f.imageDir)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Base(school.Image), files[0])
	assert.Empty(t, f.files(t, f.tempDir))

	stored, err := imaging.Open(filepath.Join(f.imageDir, files[0]))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1280, 500), stored.Bounds())
}

func TestCreateSchool_SmallImageNotUpscaled(t *testing.T) {
	f := newFixture(t)

	school, err := f.svc.CreateSchool(context.Background(), validRequest(), upload(t, "small.png", pngBytes(t, 300, 200)))
	require.NoError(t, err)

	stored, err := imaging.Open(filepath.Join(f.imageDir, filepath.Base(school.Image)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 200), stored.Bounds())
}

func TestCreateSchool_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSchool(ctx, validRequest(), upload(t, "a.png", pngBytes(t, 20, 20)))
	require.NoError(t, err)

	second := validRequest()
	second.Name = "Another School"
	_, err = f.svc.CreateSchool(ctx, second, upload(t, "b.png", pngBytes(t, 20, 20)))
	requireKind(t, err, apperrors.ErrConflict, apperrors.ErrEmailAlreadyExists.Error())

	assert.Equal(t, 1, f.store.count())
	assert.Len(t, f.files(t, f.imageDir), 1)
	assert.Empty(t, f.files(t, f.tempDir))
}

func TestCreateSchool_ConcurrentDuplicateRemovesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSchool(ctx, validRequest(), upload(t, "a.png", pngBytes(t, 20, 20)))
	require.NoError(t, err)

	f.store.hideExisting = true
	_, err = f.svc.CreateSchool(ctx, validRequest(), upload(t, "b.png", pngBytes(t, 20, 20)))
	requireKind(t, err, apperrors.ErrConflict, apperrors.ErrEmailAlreadyExists.Error())

	assert.Equal(t, 1, f.store.count())
	assert.Len(t, f.files(t, f.imageDir), 1)
}

func TestCreateSchool_StorageFailures(t *testing.T) {
	t.Run("insert fails", func(t *testing.T) {
		f := newFixture(t)
		f.store.createErr = errors.New("connection reset")

		_, err := f.svc.CreateSchool(context.Background(), validRequest(), upload(t, "a.png", pngBytes(t, 20, 20)))
		requireKind(t, err, apperrors.ErrStorage, "database error")
		assert.Empty(t, f.files(t, f.imageDir))
		assert.Empty(t, f.files(t, f.tempDir))
	})

	t.Run("lookup fails", func(t *testing.T) {
		f := newFixture(t)
		f.store.existsErr = errors.New("connection reset")

		_, err := f.svc.CreateSchool(context.Background(), validRequest(), upload(t, "a.png", pngBytes(t, 20, 20)))
		requireKind(t, err, apperrors.ErrStorage, "database error")
		assert.Empty(t, f.files(t, f.imageDir))
	})
}

func TestListSchools_NormalizesQuery(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.ListSchools(context.Background(), dto.SchoolListQuery{
		Page:  "abc",
		Limit: "500",
		Q:     "  delhi ",
		City:  " Pune ",
		Sort:  "cheapest",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.Limit)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, models.SchoolFilter{
		Search: "delhi",
		City:   "Pune",
		Sort:   models.SortRelevance,
		Page:   1,
		Limit:  50,
	}, f.store.lastFilter)

	resp := page.ToResponse()
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
}

func TestListSchools_Defaults(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.ListSchools(context.Background(), dto.SchoolListQuery{Page: "-3", Limit: "0", Sort: "fees-high"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Limit)
	assert.Equal(t, models.SortFeesHigh, f.store.lastFilter.Sort)

	page, err = f.svc.ListSchools(context.Background(), dto.SchoolListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 9, page.Limit)
}
