package handlers

import "mime/multipart"

type mockStorage struct {
	UploadOfferImageFn func(file multipart.File, filename, contentType string) (string, error)
	DeleteFileFn       func(objectPath string) error
	DeleteFileCalls    []string
	UploadCallCount    int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) UploadOfferImage(file multipart.File, filename, contentType string) (string, error) {
	m.UploadCallCount++
	if m.UploadOfferImageFn != nil {
		return m.UploadOfferImageFn(file, filename, contentType)
	}
	return "https://storage.googleapis.com/test-bucket/offers/test_image.jpg", nil
}

func (m *mockStorage) DeleteFile(objectPath string) error {
	m.DeleteFileCalls = append(m.DeleteFileCalls, objectPath)
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(objectPath)
	}
	return nil
}
