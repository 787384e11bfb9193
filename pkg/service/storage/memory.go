package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
)

type memoryObject struct {
	contentType string
	data        []byte
}

// Memory keeps objects in process memory for development and tests
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject
}

var _ interfaces.ObjectStore = &Memory{}

// NewMemory creates an in-memory object store that reports refs as mem://bucket/object
func NewMemory(bucket string) *Memory {
	return &Memory{
		bucket:  bucket,
		objects: make(map[string]memoryObject),
	}
}

func (m *Memory) Put(ctx context.Context, objectName, contentType string, r io.Reader) (model.StorageRef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(model.ErrUpstream, "failed to read object body", goerr.V(model.DetailKey, err.Error()))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = memoryObject{contentType: contentType, data: data}

	return model.StorageRef("mem://" + m.bucket + "/" + objectName), nil
}

func (m *Memory) SignedURL(ctx context.Context, objectName string) (string, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.objects[objectName]; !ok {
		return "", time.Time{}, goerr.Wrap(model.ErrUpstream, "object does not exist", goerr.V("object", objectName))
	}

	expires := time.Now().Add(SignedURLTTL)
	u := url.URL{
		Scheme:   "mem",
		Host:     m.bucket,
		Path:     "/" + objectName,
		RawQuery: url.Values{"expires": {expires.UTC().Format(time.RFC3339)}}.Encode(),
	}
	return u.String(), expires, nil
}

// Get returns the stored bytes of objectName
func (m *Memory) Get(objectName string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[objectName]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(obj.data), obj.contentType, true
}
